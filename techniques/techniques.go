// Package techniques loads the static therapeutic-technique library and
// selects techniques relevant to a user message. The catalog is read once at
// startup and shared read-only; a missing or malformed file degrades to an
// empty catalog.
package techniques

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Example pairs a scenario with a model response.
type Example struct {
	Scenario string `json:"scenario"`
	Response string `json:"response"`
}

// Technique describes one therapeutic technique.
type Technique struct {
	Description string    `json:"description"`
	Steps       []string  `json:"steps"`
	Examples    []Example `json:"examples"`
}

// Catalog is a read-only keyed lookup of techniques. Construct once at
// process start and inject by reference.
type Catalog struct {
	techniques map[string]Technique
}

// Load reads the catalog from path. A missing file or malformed JSON yields
// an empty catalog, logged once, never an error to the caller.
func Load(path string) *Catalog {
	c := &Catalog{techniques: map[string]Technique{}}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[TECHNIQUES] Catalog not available (%v), continuing without techniques", err)
		return c
	}
	if err := json.Unmarshal(data, &c.techniques); err != nil {
		log.Printf("[TECHNIQUES] Malformed catalog %s: %v", path, err)
		c.techniques = map[string]Technique{}
		return c
	}

	log.Printf("[TECHNIQUES] Loaded %d techniques from %s", len(c.techniques), path)
	return c
}

// Len reports the number of loaded techniques.
func (c *Catalog) Len() int {
	return len(c.techniques)
}

// Get returns a technique by exact name.
func (c *Catalog) Get(name string) (Technique, bool) {
	t, ok := c.techniques[name]
	return t, ok
}

// Relevant returns up to limit techniques whose name, description or step
// text contains the message (case-insensitive), sorted by name for
// deterministic output.
func (c *Catalog) Relevant(message string, limit int) []NamedTechnique {
	needle := strings.ToLower(message)

	var matched []NamedTechnique
	for name, t := range c.techniques {
		if matches(name, t, needle) {
			matched = append(matched, NamedTechnique{Name: name, Technique: t})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// NamedTechnique carries a technique together with its catalog key.
type NamedTechnique struct {
	Name string
	Technique
}

func matches(name string, t Technique, needle string) bool {
	if strings.Contains(strings.ToLower(name), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, step := range t.Steps {
		if strings.Contains(strings.ToLower(step), needle) {
			return true
		}
	}
	return false
}

// FormatForPrompt renders a technique as a system-prompt fragment.
func (t NamedTechnique) FormatForPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "治疗技术: %s\n", t.Name)
	fmt.Fprintf(&b, "描述: %s\n", t.Description)
	b.WriteString("步骤:\n")
	for i, step := range t.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	b.WriteString("应用示例:\n")
	examples := t.Examples
	if len(examples) > 2 {
		examples = examples[:2]
	}
	for _, ex := range examples {
		fmt.Fprintf(&b, "  场景: %s\n", ex.Scenario)
		fmt.Fprintf(&b, "  回应: %s\n", ex.Response)
	}
	return b.String()
}
