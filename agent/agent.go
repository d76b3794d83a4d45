// Package agent is the per-turn conversation pipeline: it assembles the
// model context from the memory layers, obtains a reply and commits the turn
// back into memory. One chat turn runs fully (context build, completion,
// memory update, persistence) before the next is accepted; sessions are not
// safe for concurrent turns.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mindwell/sage/core"
	"github.com/mindwell/sage/insight"
	"github.com/mindwell/sage/llm"
	"github.com/mindwell/sage/memory"
	"github.com/mindwell/sage/techniques"
)

// Per-turn caps on optional context entries.
const (
	maxTechniques = 3
	maxMemories   = 3
)

// Agent drives one user's conversation session.
type Agent struct {
	llm        *llm.Client
	memory     *memory.System
	techniques *techniques.Catalog
	now        func() time.Time
}

// New builds an Agent over an existing memory system. catalog may be empty
// but not nil.
func New(client *llm.Client, mem *memory.System, catalog *techniques.Catalog) *Agent {
	return &Agent{llm: client, memory: mem, techniques: catalog, now: time.Now}
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock(client *llm.Client, mem *memory.System, catalog *techniques.Catalog, now func() time.Time) *Agent {
	return &Agent{llm: client, memory: mem, techniques: catalog, now: now}
}

// Memory exposes the underlying memory system.
func (a *Agent) Memory() *memory.System {
	return a.memory
}

// Chat runs one full turn and returns the assistant reply. Completion
// failure is absorbed by the llm client's fallback; memory-persistence
// failure is logged inside the memory system. The caller always gets a reply.
func (a *Agent) Chat(ctx context.Context, userMessage string) string {
	messages := a.buildContext(ctx, userMessage)
	reply := a.llm.Complete(ctx, messages)
	a.updateMemory(ctx, userMessage, reply)
	return reply
}

// Reset wipes the session's memory across all layers.
func (a *Agent) Reset(ctx context.Context) {
	a.memory.Reset(ctx)
}

// buildContext assembles the ordered model context for one turn: the persona
// system prompt, then the optional time recall, technique, memory-recall and
// profile entries in that order, then the working-memory transcript, then
// the user message last.
func (a *Agent) buildContext(ctx context.Context, userMessage string) []core.Message {
	currentTime := a.now().Format("2006-01-02 15:04:05")
	messages := []core.Message{core.System(
		"你是一位AI心理学家，运用你的专业知识解决用户的心理问题，必须遵守安全原则，现在的时间是" +
			currentTime + "，你是具有长期记忆的（系统会给你）。",
	)}

	if recall, ok := a.timeRecall(userMessage); ok {
		messages = append(messages, core.System("历史背景: "+recall))
	}

	if relevant := a.techniques.Relevant(userMessage, maxTechniques); len(relevant) > 0 {
		var b strings.Builder
		b.WriteString("治疗技术参考:\n可用的治疗技术:\n")
		for _, t := range relevant {
			b.WriteString(t.FormatForPrompt())
			b.WriteString("\n")
		}
		messages = append(messages, core.System(b.String()))
	}

	if memories := a.memory.QueryRelevant(ctx, userMessage, maxMemories); len(memories) > 0 {
		var b strings.Builder
		b.WriteString("相关的过往对话:\n")
		for _, rec := range memories {
			summary := rec.Summary
			if summary == "" {
				summary = "对话"
			}
			fmt.Fprintf(&b, "- %s\n", summary)
		}
		messages = append(messages, core.System("历史背景: "+b.String()))
	}

	if profile := a.memory.Profile(); !profile.IsEmpty() {
		if raw, err := json.Marshal(profile); err == nil {
			messages = append(messages, core.System("用户档案: "+string(raw)))
		}
	}

	messages = append(messages, a.memory.WorkingContext()...)
	messages = append(messages, core.User(userMessage))
	return messages
}

// timeRecall answers "do we remember that time" questions: when the incoming
// message carries a temporal expression that maps to a stored episodic
// record, it renders the recall line for the context.
func (a *Agent) timeRecall(userMessage string) (string, bool) {
	expr, ok := a.memory.Resolver().Extract(userMessage)
	if !ok {
		return "", false
	}
	rec, ok := a.memory.EpisodicByTime(expr)
	if !ok {
		return "", false
	}
	summary := rec.Summary
	if summary == "" {
		summary = "发生了某些事件"
	}
	return fmt.Sprintf("根据我们之前在%s的对话记录：%s", expr, summary), true
}

// updateMemory commits one finished turn: working-memory entries for both
// sides, an episodic record (time-merged when the message carries a
// resolvable temporal expression) and the derived profile updates.
func (a *Agent) updateMemory(ctx context.Context, userMessage, reply string) {
	a.memory.AddWorking(core.User(userMessage))
	a.memory.AddWorking(core.Assistant(reply))

	ins := insight.Extract(userMessage)
	inter := memory.Interaction{
		UserMessage:       userMessage,
		AIResponse:        reply,
		EmotionalInsights: ins,
	}

	stored := false
	if expr, ok := a.memory.Resolver().Extract(userMessage); ok {
		stored = a.memory.AddTimeReferenced(ctx, expr, inter, insight.Activity(userMessage))
	}
	if !stored {
		a.memory.AddEpisodic(ctx, inter, memory.SummarizeInteraction(ins))
	}

	profile := a.memory.Profile()
	for _, emotion := range ins.Emotions {
		profile.CountEmotion(emotion)
	}
	applyPreferences(&profile, userMessage, ins.Topics)
	applyConcerns(&profile, userMessage, a.now())
	a.memory.UpdateSemantic(memory.ProfileKey, profile)
}
