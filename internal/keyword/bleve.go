// Package keyword provides a Bleve-backed keyword index over corpus chunks.
//
// The keyword index backs the operator search endpoint. It is not part of
// the answer pipeline, which retrieves by embedding similarity only.
package keyword

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/torii-sec/mamori/internal/models"
)

// Result is a keyword search hit.
type Result struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Score        float64 `json:"score"`
}

// chunkDoc is the shape Bleve indexes per chunk.
type chunkDoc struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Content      string `json:"content"`
}

// BleveIndex indexes chunk text for keyword lookup. It tracks which chunk
// IDs belong to which document so deletions stay aligned with the vector
// index.
type BleveIndex struct {
	index bleve.Index

	mu         sync.Mutex
	docChunks  map[string][]string // document ID -> chunk IDs
	chunkNames map[string]string   // chunk ID -> document name
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path yields
// a memory-only index that vanishes with the process, matching the in-memory
// corpus lifecycle.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact words
	// in queries match exact words in chunks.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("document_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("document_name", keywordFieldMapping)
	im.DefaultMapping = docMapping

	var index bleve.Index
	var err error
	switch {
	case path == "":
		index, err = bleve.NewMemOnly(im)
	default:
		if _, statErr := os.Stat(path); statErr == nil {
			index, err = bleve.Open(path)
		} else {
			index, err = bleve.New(path, im)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open Bleve index: %w", err)
	}

	return &BleveIndex{
		index:      index,
		docChunks:  make(map[string][]string),
		chunkNames: make(map[string]string),
	}, nil
}

// IndexBatch indexes a set of chunks in one Bleve batch.
func (b *BleveIndex) IndexBatch(ctx context.Context, chunks []*models.Chunk) error {
	batch := b.index.NewBatch()
	for _, ch := range chunks {
		doc := chunkDoc{
			DocumentID:   ch.DocumentID,
			DocumentName: ch.DocumentName,
			Content:      ch.Text,
		}
		if err := batch.Index(ch.ID, doc); err != nil {
			return fmt.Errorf("failed to batch chunk %s: %w", ch.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}

	b.mu.Lock()
	for _, ch := range chunks {
		b.docChunks[ch.DocumentID] = append(b.docChunks[ch.DocumentID], ch.ID)
		b.chunkNames[ch.ID] = ch.DocumentName
	}
	b.mu.Unlock()
	return nil
}

// Search runs a match query over chunk content and returns up to limit hits
// by descending score.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"document_id", "document_name"}

	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		r := &Result{ChunkID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["document_id"].(string); ok {
			r.DocumentID = v
		}
		if v, ok := hit.Fields["document_name"].(string); ok {
			r.DocumentName = v
		}
		out = append(out, r)
	}
	return out, nil
}

// DeleteDocument removes every chunk indexed for the document.
func (b *BleveIndex) DeleteDocument(ctx context.Context, documentID string) error {
	b.mu.Lock()
	ids := b.docChunks[documentID]
	delete(b.docChunks, documentID)
	for _, id := range ids {
		delete(b.chunkNames, id)
	}
	b.mu.Unlock()

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve delete batch failed: %w", err)
	}
	return nil
}

// Reset removes every indexed chunk.
func (b *BleveIndex) Reset(ctx context.Context) error {
	b.mu.Lock()
	batch := b.index.NewBatch()
	for id := range b.chunkNames {
		batch.Delete(id)
	}
	b.docChunks = make(map[string][]string)
	b.chunkNames = make(map[string]string)
	b.mu.Unlock()

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve reset failed: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (b *BleveIndex) Count() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
