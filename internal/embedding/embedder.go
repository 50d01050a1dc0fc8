// Package embedding provides text-to-vector embedding providers and caching.
package embedding

import "context"

// Embedder maps text to fixed-dimension vectors. Implementations are
// stateless across calls and deterministic for a given model version, so any
// implementation is substitutable without changing callers. All returned
// vectors are unit-normalized for cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
