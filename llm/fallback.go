package llm

import (
	"strings"

	"github.com/mindwell/sage/core"
)

// cannedResponse pairs a trigger keyword with an empathetic reply. Scanned
// in order; first keyword found in the last user message wins.
type cannedResponse struct {
	keyword  string
	response string
}

var cannedResponses = []cannedResponse{
	{"sad", "我感觉到你有些难过。有这种感觉很正常，我会陪伴你一起面对。"},
	{"depress", "我听到你正在经历困难时期。抑郁确实很有挑战性，但你并不孤单。"},
	{"anxious", "焦虑会让人感到不堪重负。让我们一起深呼吸，探索一下是什么引起了这些感受。"},
	{"happy", "很高兴听到你感到积极！是什么让你感到快乐呢？"},
	{"stress", "压力确实会对我们产生影响。让我们找出压力的来源，并找到应对的方法。"},
	{"angry", "愤怒是一种自然的情绪。让我们探索一下是什么触发了这些感受，并找到健康的方式来表达它们。"},
	{"lonely", "感到孤独确实很难受。你并不孤单，我会陪伴你并提供支持。"},
}

const defaultResponse = "我听到了你的话，我会陪伴你一起面对。你能告诉我更多关于你的感受吗？"

// Fallback returns the deterministic canned reply for a context, chosen by
// keyword match against the last user message.
func Fallback(messages []core.Message) string {
	user := strings.ToLower(core.LastUser(messages))
	for _, c := range cannedResponses {
		if strings.Contains(user, c.keyword) {
			return c.response
		}
	}
	return defaultResponse
}
