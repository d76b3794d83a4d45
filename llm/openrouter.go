package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/mindwell/sage/config"
	"github.com/mindwell/sage/core"
)

const openRouterTimeout = 120 * time.Second

// openRouterClient talks to OpenRouter through its OpenAI-compatible chat
// completions endpoint.
type openRouterClient struct {
	client openaigo.Client
	model  string
}

// newOpenRouter returns nil when no API key is configured.
func newOpenRouter(cfg *config.Config) Completer {
	key := strings.TrimSpace(cfg.OpenRouterAPIKey)
	if key == "" {
		return nil
	}

	client := openaigo.NewClient(
		option.WithBaseURL(strings.TrimRight(cfg.OpenRouterBaseURL, "/")),
		option.WithAPIKey(key),
		option.WithRequestTimeout(openRouterTimeout),
	)
	return &openRouterClient{client: client, model: cfg.DefaultModel}
}

func (c *openRouterClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	params := openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(c.model),
		Messages: toOpenAIMessages(messages),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []core.Message) []openaigo.ChatCompletionMessageParamUnion {
	out := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openaigo.SystemMessage(m.Content))
		case core.RoleAssistant:
			out = append(out, openaigo.AssistantMessage(m.Content))
		default:
			out = append(out, openaigo.UserMessage(m.Content))
		}
	}
	return out
}
