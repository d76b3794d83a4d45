package agent

import (
	"strings"
	"time"

	"github.com/mindwell/sage/memory"
)

// Preference keyword classes. Matched by substring against the lowercased
// message; the first matching class of a pair wins.
var (
	textStyleWords  = []string{"文字", "打字", "聊天"}
	voiceStyleWords = []string{"语音", "说话", "讲话"}
	eveningWords    = []string{"晚上", "夜间", "深夜"}
	morningWords    = []string{"早上", "上午", "早晨"}
)

// Concern triggers for the psychological history.
var concernTriggers = []struct {
	concern  string
	keywords []string
}{
	{"stress_and_anxiety", []string{"压力", "焦虑"}},
	{"sleep_issues", []string{"睡眠", "失眠"}},
}

// maxContextRunes caps the stored context snippet of a concern entry.
const maxContextRunes = 100

// applyPreferences updates the profile's preference fields from one message:
// communication style, preferred time of day and per-topic interest counters.
func applyPreferences(p *memory.Profile, message string, topics []string) {
	lower := strings.ToLower(message)

	if containsAny(lower, textStyleWords) {
		p.Preferences["communication_style"] = "text"
	} else if containsAny(lower, voiceStyleWords) {
		p.Preferences["communication_style"] = "voice"
	}

	if containsAny(lower, eveningWords) {
		p.Preferences["preferred_time"] = "evening"
	} else if containsAny(lower, morningWords) {
		p.Preferences["preferred_time"] = "morning"
	}

	for _, topic := range topics {
		bumpCounter(p.Preferences, "interest_"+topic)
	}
}

// applyConcerns appends psychological-history entries for the concern classes
// the message triggers, with a capped context snippet.
func applyConcerns(p *memory.Profile, message string, now time.Time) {
	ts := float64(now.UnixNano()) / float64(time.Second)
	for _, trigger := range concernTriggers {
		if containsAny(message, trigger.keywords) {
			p.AddConcern(memory.Concern{
				Concern:   trigger.concern,
				Timestamp: ts,
				Context:   snippet(message),
			})
		}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// bumpCounter increments a numeric preference value, tolerating the float64
// shape such values take after a JSON round trip.
func bumpCounter(prefs map[string]any, key string) {
	switch v := prefs[key].(type) {
	case int:
		prefs[key] = v + 1
	case float64:
		prefs[key] = int(v) + 1
	default:
		prefs[key] = 1
	}
}

func snippet(message string) string {
	runes := []rune(message)
	if len(runes) > maxContextRunes {
		return string(runes[:maxContextRunes]) + "..."
	}
	return message
}
