// Package chromem adapts chromem-go, a pure Go embedded vector database, as
// the memory.VectorIndex capability.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mindwell/sage/memory"
)

// Index is a per-user vector index over episodic summaries. Each user gets
// their own collection for namespace isolation.
type Index struct {
	col *chromem.Collection
}

// New opens (or creates) the persistent index for userID under path,
// embedding documents and queries with embedder. Construction failure means
// the capability is absent: callers keep a nil index and degrade.
func New(path string, userID string, embedder memory.Embedder) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	embed := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	name := fmt.Sprintf("user_%s_memories", userID)
	col, err := db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}

	log.Printf("[CHROMEM] Collection %s ready (%d documents)", name, col.Count())
	return &Index{col: col}, nil
}

// Available reports whether the index can serve calls.
func (ix *Index) Available() bool {
	return ix != nil && ix.col != nil
}

// Add indexes a document under id. Re-adding an existing id replaces the
// stored document, which is how merged episodic records stay in lockstep.
func (ix *Index) Add(ctx context.Context, id string, document string, metadata map[string]string) error {
	err := ix.col.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  document,
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns at most k results ranked by similarity to text.
// chromem-go requires nResults <= collection size, so the limit shrinks
// until the query succeeds; an empty collection yields no results.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]memory.VectorResult, error) {
	var results []chromem.Result
	for limit := k; limit >= 1; limit-- {
		var err error
		results, err = ix.col.Query(ctx, text, limit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]memory.VectorResult, 0, len(results))
	for _, res := range results {
		out = append(out, memory.VectorResult{
			ID:       res.ID,
			Metadata: res.Metadata,
		})
	}
	return out, nil
}

// Clear removes the given ids, best-effort.
func (ix *Index) Clear(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ix.col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// isInsufficientDocsError checks if the error is due to asking for more
// results than the collection holds.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
