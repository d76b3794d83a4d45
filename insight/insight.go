// Package insight derives emotional and topical signal from raw utterance
// text. It is purely lexical: bilingual keyword tables matched by substring
// containment, case-insensitive. No state, no external calls.
package insight

import (
	"strings"
	"unicode/utf8"
)

// Insights is the signal extracted from a single utterance.
type Insights struct {
	// Emotions holds every matched emotion category, in table order.
	Emotions []string `json:"emotions"`

	// Topics holds every matched topic category, in table order.
	Topics []string `json:"topics"`

	// Intensity is the rune length of the longest matched emotion keyword.
	// A crude proxy, kept as-is for compatibility with persisted records.
	Intensity int `json:"intensity"`
}

// Emotion categories.
const (
	Sadness    = "sadness"
	Anxiety    = "anxiety"
	Anger      = "anger"
	Happiness  = "happiness"
	Loneliness = "loneliness"
)

// Topic categories.
const (
	Career        = "career"
	Relationships = "relationships"
	Health        = "health"
	Learning      = "learning"
)

// keywordClass pairs a category with its keyword list. Slices (not maps)
// keep match reporting deterministic.
type keywordClass struct {
	category string
	keywords []string
}

var emotionTable = []keywordClass{
	{Sadness, []string{"sad", "depressed", "unhappy", "down", "blue", "depression", "难过", "沮丧"}},
	{Anxiety, []string{"anxious", "worried", "nervous", "stressed", "concerned", "panic", "焦虑", "担心"}},
	{Anger, []string{"angry", "mad", "frustrated", "irritated", "annoyed", "rage", "愤怒", "生气"}},
	{Happiness, []string{"happy", "joy", "pleased", "delighted", "excited", "glad", "高兴", "快乐"}},
	{Loneliness, []string{"lonely", "alone", "isolated", "by myself", "solitude", "孤独"}},
}

var topicTable = []keywordClass{
	{Career, []string{"work", "job", "career", "interview", "internship", "工作", "职业", "面试", "升职", "实习"}},
	{Relationships, []string{"friend", "family", "partner", "relationship", "朋友", "家人", "恋人", "关系", "社交"}},
	{Health, []string{"health", "exercise", "sleep", "健康", "锻炼", "运动", "身体", "睡眠"}},
	{Learning, []string{"study", "learning", "reading", "school", "学习", "知识", "读书", "教育", "技能"}},
}

var activityTable = []keywordClass{
	{"实习", []string{"实习", "工作", "上班"}},
	{"学习", []string{"学习", "复习", "上课", "考试"}},
	{"旅行", []string{"旅行", "旅游", "游玩"}},
	{"休息", []string{"休息", "放松", "睡觉"}},
	{"运动", []string{"运动", "跑步", "健身"}},
	{"社交", []string{"聚会", "朋友", "聊天"}},
}

// DefaultActivity is reported when no activity keyword matches.
const DefaultActivity = "其他活动"

// Extract reports every emotion and topic category whose keywords appear in
// text. All matches are reported, not just the first.
func Extract(text string) Insights {
	lower := strings.ToLower(text)
	out := Insights{
		Emotions: []string{},
		Topics:   []string{},
	}

	for _, class := range emotionTable {
		matched := false
		for _, kw := range class.keywords {
			if strings.Contains(lower, kw) {
				matched = true
				if n := utf8.RuneCountInString(kw); n > out.Intensity {
					out.Intensity = n
				}
			}
		}
		if matched {
			out.Emotions = append(out.Emotions, class.category)
		}
	}

	for _, class := range topicTable {
		for _, kw := range class.keywords {
			if strings.Contains(lower, kw) {
				out.Topics = append(out.Topics, class.category)
				break
			}
		}
	}

	return out
}

// Activity classifies what the user was doing, for episodic records created
// from time-referenced messages. First matching class wins.
func Activity(text string) string {
	lower := strings.ToLower(text)
	for _, class := range activityTable {
		for _, kw := range class.keywords {
			if strings.Contains(lower, kw) {
				return class.category
			}
		}
	}
	return DefaultActivity
}
