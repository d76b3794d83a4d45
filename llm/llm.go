// Package llm provides the completion capability: provider clients for
// OpenRouter, Ollama and Anthropic, unified behind a Client that degrades to
// a canned keyword-matched response whenever the provider is unavailable or
// a call fails. Callers always get a reply, never an error.
package llm

import (
	"context"
	"log"

	"github.com/mindwell/sage/config"
	"github.com/mindwell/sage/core"
)

// Completer is a single model provider. Implementations return the raw
// assistant text or an error; degradation is handled one level up.
type Completer interface {
	Complete(ctx context.Context, messages []core.Message) (string, error)
}

// Client wraps a provider with the fallback policy. Availability is resolved
// once at construction: an unconfigured provider leaves provider nil and
// every call answers from the canned table.
type Client struct {
	provider Completer
	name     string
}

// New selects and constructs the provider named by cfg.ModelProvider.
// Unknown providers fall back to OpenRouter, matching the original
// behavior of the configuration surface.
func New(cfg *config.Config) *Client {
	name := cfg.ModelProvider

	var provider Completer
	switch name {
	case config.ProviderOllama:
		provider = newOllama(cfg)
	case config.ProviderAnthropic:
		provider = newAnthropic(cfg)
	case config.ProviderOpenRouter:
		provider = newOpenRouter(cfg)
	default:
		name = config.ProviderOpenRouter
		provider = newOpenRouter(cfg)
	}

	if provider == nil {
		log.Printf("[LLM] Provider %s not configured, canned responses only", name)
	}
	return &Client{provider: provider, name: name}
}

// NewWithProvider wraps an explicit provider, for tests and embedding.
func NewWithProvider(name string, provider Completer) *Client {
	return &Client{provider: provider, name: name}
}

// Complete returns the assistant reply for the given context. Provider
// failure degrades to the canned fallback for this call only.
func (c *Client) Complete(ctx context.Context, messages []core.Message) string {
	if c.provider == nil {
		return Fallback(messages)
	}

	reply, err := c.provider.Complete(ctx, messages)
	if err != nil {
		log.Printf("[LLM] %s call failed, using fallback response: %v", c.name, err)
		return Fallback(messages)
	}
	if reply == "" {
		return Fallback(messages)
	}
	return reply
}
