package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mindwell/sage/config"
	"github.com/mindwell/sage/core"
)

const anthropicMaxTokens = 1024

// anthropicClient talks to the Anthropic Messages API. System entries are
// folded into the system prompt block, which is how that API wants them.
type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropic(cfg *config.Config) Completer {
	key := strings.TrimSpace(cfg.AnthropicAPIKey)
	if key == "" {
		return nil
	}
	return &anthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		model:  cfg.AnthropicModel,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	var systemParts []string
	var turns []anthropic.MessageParam

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			systemParts = append(systemParts, m.Content)
		case core.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  turns,
	}
	if len(systemParts) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(systemParts, "\n\n")},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
