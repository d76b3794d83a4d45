// Package openai embeds text through an OpenAI-compatible embeddings
// endpoint (OpenAI itself, or any gateway exposing the same API).
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const requestTimeout = 30 * time.Second

// Config configures the embedder.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL overrides the default OpenAI endpoint. Optional.
	BaseURL string

	// Model defaults to text-embedding-3-small.
	Model string

	// Dimensions defaults to 1536, matching text-embedding-3-small.
	Dimensions int
}

// Embedder calls the embeddings API per text.
type Embedder struct {
	client     openaigo.Client
	model      string
	dimensions int
}

// New creates an API-backed embedder.
func New(cfg Config) (*Embedder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("APIKey is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(requestTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	return &Embedder{
		client:     openaigo.NewClient(opts...),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts a single text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaigo.EmbeddingNewParams{
		Model: openaigo.EmbeddingModel(e.model),
		Input: openaigo.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings api: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings api returned no data")
	}

	raw := resp.Data[0].Embedding
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
