package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/torii-sec/mamori/internal/models"
)

// MemoryIndex is an in-memory brute-force index over unit-normalized vectors,
// where inner product equals cosine similarity. Suitable for session corpora
// up to roughly 10k chunks.
type MemoryIndex struct {
	dimensions int
	chunks     []*models.Chunk
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Upsert stores chunks keyed by ID. An existing ID is overwritten in place so
// insertion order (and therefore tie-breaking) is stable across re-upserts.
func (m *MemoryIndex) Upsert(ctx context.Context, chunks []*models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range chunks {
		if ch.ID == "" {
			return fmt.Errorf("chunk has empty ID")
		}
		if len(ch.Embedding) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch for chunk %s: got %d, expected %d", ch.ID, len(ch.Embedding), m.dimensions)
		}
		if pos, ok := m.byID[ch.ID]; ok {
			m.chunks[pos] = ch
			continue
		}
		m.byID[ch.ID] = len(m.chunks)
		m.chunks = append(m.chunks, ch)
	}
	return nil
}

// Search returns up to k chunks by descending inner product with query.
// Ties keep insertion order. Empty index or k <= 0 yields an empty result.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*models.Chunk, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.chunks) == 0 {
		return []*models.Chunk{}, nil
	}
	type scored struct {
		chunk *models.Chunk
		score float64
	}
	scores := make([]scored, len(m.chunks))
	for i, ch := range m.chunks {
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(query[j] * ch.Embedding[j])
		}
		scores[i] = scored{chunk: ch, score: dot}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	out := make([]*models.Chunk, k)
	for i := 0; i < k; i++ {
		c := *scores[i].chunk
		c.Score = scores[i].score
		out[i] = &c
	}
	return out, nil
}

// RemoveDocument removes all chunks belonging to documentID in one atomic step.
func (m *MemoryIndex) RemoveDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, ch := range m.chunks {
		if ch.DocumentID == documentID {
			delete(m.byID, ch.ID)
			continue
		}
		m.byID[ch.ID] = len(kept)
		kept = append(kept, ch)
	}
	// Release references past the new length.
	for i := len(kept); i < len(m.chunks); i++ {
		m.chunks[i] = nil
	}
	m.chunks = kept
	return nil
}

// Clear removes all chunks.
func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.byID = make(map[string]int)
	return nil
}

// Size returns the number of stored chunks.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error { return nil }
