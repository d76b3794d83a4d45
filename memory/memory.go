package memory

import "context"

// VectorIndex is the optional similarity-search capability over episodic
// summaries. Implementations: chromem (local embedded index).
//
// Every operation is best-effort. Failures degrade to a no-op or empty
// result at the call site and must never reach past the System boundary.
type VectorIndex interface {
	// Available reports whether the index can serve calls at all. Resolved
	// at construction time, not re-checked per call.
	Available() bool

	// Add indexes a document under id. Metadata must be flat string fields;
	// structured values are serialized to text before they get here.
	Add(ctx context.Context, id string, document string, metadata map[string]string) error

	// Query returns at most k results ranked by similarity to text.
	Query(ctx context.Context, text string, k int) ([]VectorResult, error)

	// Clear removes the given ids, best-effort.
	Clear(ctx context.Context, ids []string) error
}

// VectorResult is one ranked entry returned by a VectorIndex query.
type VectorResult struct {
	ID       string
	Metadata map[string]string
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), openai (API-based), onnx (local model).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
