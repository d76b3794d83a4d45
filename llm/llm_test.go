package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mindwell/sage/core"
	"github.com/mindwell/sage/llm"
)

type fakeProvider struct {
	reply string
	err   error
}

func (f *fakeProvider) Complete(ctx context.Context, messages []core.Message) (string, error) {
	return f.reply, f.err
}

func TestFallback_KeywordMatch(t *testing.T) {
	msgs := []core.Message{core.User("I feel so sad today")}
	got := llm.Fallback(msgs)
	if !strings.Contains(got, "难过") {
		t.Errorf("expected the sadness canned reply, got %q", got)
	}
}

func TestFallback_FirstKeywordWins(t *testing.T) {
	// "sad" precedes "lonely" in the canned table.
	msgs := []core.Message{core.User("sad and lonely")}
	got := llm.Fallback(msgs)
	if !strings.Contains(got, "难过") {
		t.Errorf("expected the sadness canned reply, got %q", got)
	}
}

func TestFallback_Default(t *testing.T) {
	msgs := []core.Message{core.User("今天天气不错")}
	got := llm.Fallback(msgs)
	if !strings.Contains(got, "我听到了你的话") {
		t.Errorf("expected default canned reply, got %q", got)
	}
}

func TestFallback_UsesLastUserMessage(t *testing.T) {
	msgs := []core.Message{
		core.User("I am happy"),
		core.Assistant("很高兴听到！"),
		core.User("actually I feel anxious now"),
	}
	got := llm.Fallback(msgs)
	if !strings.Contains(got, "焦虑") {
		t.Errorf("expected the anxiety canned reply, got %q", got)
	}
}

func TestClient_ProviderReply(t *testing.T) {
	c := llm.NewWithProvider("fake", &fakeProvider{reply: "你好"})
	got := c.Complete(context.Background(), []core.Message{core.User("hi")})
	if got != "你好" {
		t.Errorf("expected provider reply, got %q", got)
	}
}

func TestClient_ProviderFailureFallsBack(t *testing.T) {
	c := llm.NewWithProvider("fake", &fakeProvider{err: errors.New("boom")})
	got := c.Complete(context.Background(), []core.Message{core.User("I feel sad")})
	if !strings.Contains(got, "难过") {
		t.Errorf("expected canned reply on provider failure, got %q", got)
	}
}

func TestClient_NilProviderFallsBack(t *testing.T) {
	c := llm.NewWithProvider("none", nil)
	got := c.Complete(context.Background(), []core.Message{core.User("anything")})
	if got == "" {
		t.Error("expected a reply even with no provider")
	}
}
