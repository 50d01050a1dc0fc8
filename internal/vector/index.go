// Package vector provides chunk storage with nearest-neighbor retrieval.
package vector

import (
	"context"

	"github.com/torii-sec/mamori/internal/models"
)

// Index stores chunks with their embeddings and supports similarity search.
// Mutations (Upsert, RemoveDocument, Clear) are atomic: a concurrent Search
// observes either none or all of a mutation's effect.
type Index interface {
	// Upsert inserts chunks keyed by chunk ID; re-insertion with an existing
	// ID overwrites the stored record in place.
	Upsert(ctx context.Context, chunks []*models.Chunk) error
	// Search returns up to k chunks ranked by descending cosine similarity
	// to the query embedding, ties broken by insertion order. An empty index
	// yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]*models.Chunk, error)
	// RemoveDocument removes every chunk belonging to the document.
	RemoveDocument(ctx context.Context, documentID string) error
	// Clear removes all chunks.
	Clear(ctx context.Context) error
	Size() int
	Close() error
}
