// Package mock provides a deterministic embedder for tests and for running
// without any real embedding backend. It gives no semantic similarity, only
// stable vectors per input text.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

const defaultDimensions = 384 // all-MiniLM-L6-v2 size

// Embedder derives a unit vector from a PCG stream seeded by the text hash.
// Equal texts always embed identically; distinct texts almost never do.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the default dimensions.
func New() *Embedder {
	return NewWithDimensions(defaultDimensions)
}

// NewWithDimensions creates a mock embedder producing vectors of size n.
func NewWithDimensions(n int) *Embedder {
	if n <= 0 {
		n = defaultDimensions
	}
	return &Embedder{dimensions: n}
}

// Embed creates a deterministic unit-length embedding from text.
func (m *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	vec := make([]float32, m.dimensions)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}
