package memory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/sage/core"
	"github.com/mindwell/sage/insight"
)

// WorkingItem is one entry in the transient working-memory buffer.
type WorkingItem struct {
	ID        string       `json:"id"`
	Timestamp float64      `json:"timestamp"`
	Message   core.Message `json:"message"`
}

// Interaction is the authoritative structured data of one conversation turn.
type Interaction struct {
	UserMessage       string           `json:"user_message"`
	AIResponse        string           `json:"ai_response"`
	EmotionalInsights insight.Insights `json:"emotional_insights"`
}

// EpisodicRecord is a persisted, timestamped record of an interaction or
// event. Timestamp is a Unix epoch in seconds; Datetime is its ISO-8601
// rendering and is always rewritten together with Timestamp. TimeReference
// holds the literal temporal expression a record was created or merged
// under, never the resolved timestamp.
type EpisodicRecord struct {
	ID            string      `json:"id"`
	Timestamp     float64     `json:"timestamp"`
	Datetime      string      `json:"datetime"`
	Interaction   Interaction `json:"interaction"`
	Activity      string      `json:"activity,omitempty"`
	Summary       string      `json:"summary"`
	TimeReference string      `json:"time_reference,omitempty"`
}

// NewEpisodicRecord assigns a fresh id and stamps the record at t.
func NewEpisodicRecord(t time.Time) EpisodicRecord {
	r := EpisodicRecord{ID: uuid.New().String()}
	r.SetTime(t)
	return r
}

// SetTime rewrites Timestamp and Datetime together so the two never drift.
func (r *EpisodicRecord) SetTime(t time.Time) {
	r.Timestamp = float64(t.UnixNano()) / float64(time.Second)
	r.Datetime = t.Format(time.RFC3339)
}

// Time converts the epoch timestamp back to a time.Time.
func (r *EpisodicRecord) Time() time.Time {
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// ProfileKey is the well-known semantic-memory key for the user profile.
const ProfileKey = "user_profile"

// maxPsychHistory caps the psychological history; oldest entries are trimmed.
const maxPsychHistory = 50

// Concern is one psychological-history entry.
type Concern struct {
	Concern   string  `json:"concern"`
	Timestamp float64 `json:"timestamp"`
	Context   string  `json:"context"`
}

// Profile is the semantic-memory user profile.
type Profile struct {
	Preferences          map[string]any `json:"preferences"`
	PsychologicalHistory []Concern      `json:"psychological_history"`
	PersonalityInsights  map[string]int `json:"personality_insights"`
}

// NewProfile returns the empty profile skeleton.
func NewProfile() Profile {
	return Profile{
		Preferences:          map[string]any{},
		PsychologicalHistory: []Concern{},
		PersonalityInsights:  map[string]int{},
	}
}

// IsEmpty reports whether the profile carries no data at all.
func (p Profile) IsEmpty() bool {
	return len(p.Preferences) == 0 &&
		len(p.PsychologicalHistory) == 0 &&
		len(p.PersonalityInsights) == 0
}

// AddConcern appends a history entry, trimming to the most recent
// maxPsychHistory in sequence order.
func (p *Profile) AddConcern(c Concern) {
	p.PsychologicalHistory = append(p.PsychologicalHistory, c)
	if n := len(p.PsychologicalHistory); n > maxPsychHistory {
		p.PsychologicalHistory = p.PsychologicalHistory[n-maxPsychHistory:]
	}
}

// CountEmotion increments the personality-insight counter for an emotion.
func (p *Profile) CountEmotion(emotion string) {
	if p.PersonalityInsights == nil {
		p.PersonalityInsights = map[string]int{}
	}
	p.PersonalityInsights[emotion]++
}

// decodeProfile converts an arbitrary semantic-memory value into a Profile
// via a JSON round-trip. Anything undecodable yields the empty skeleton.
func decodeProfile(v any) Profile {
	if v == nil {
		return NewProfile()
	}
	if p, ok := v.(Profile); ok {
		return p
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return NewProfile()
	}
	p := NewProfile()
	if err := json.Unmarshal(raw, &p); err != nil {
		return NewProfile()
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}
	if p.PersonalityInsights == nil {
		p.PersonalityInsights = map[string]int{}
	}
	if p.PsychologicalHistory == nil {
		p.PsychologicalHistory = []Concern{}
	}
	return p
}
