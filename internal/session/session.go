// Package session owns a corpus: the documents, vector index, keyword index,
// and audit trail that live and die with one server process.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/audit"
	"github.com/torii-sec/mamori/internal/docstore"
	"github.com/torii-sec/mamori/internal/keyword"
	"github.com/torii-sec/mamori/internal/models"
	"github.com/torii-sec/mamori/internal/vector"
)

// Session bundles the per-process corpus state. Mutations that span the
// document store, vector index, and keyword index go through Session so a
// concurrent reader never observes a half-applied change.
type Session struct {
	mu       sync.RWMutex
	docs     *docstore.Store
	vectors  vector.Index
	keywords *keyword.BleveIndex
	auditLog *audit.Log
	logger   *zap.Logger
}

// New creates a session over the given stores. keywords may be nil when the
// keyword index is disabled.
func New(docs *docstore.Store, vectors vector.Index, keywords *keyword.BleveIndex, auditLog *audit.Log, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		docs:     docs,
		vectors:  vectors,
		keywords: keywords,
		auditLog: auditLog,
		logger:   logger,
	}
}

// HasDocumentName reports whether a document with the name is already loaded.
func (s *Session) HasDocumentName(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.HasName(name)
}

// GetDocumentByName returns the loaded document with the given name.
func (s *Session) GetDocumentByName(name string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.GetByName(name)
}

// FindBySourcePath returns the document ingested from path, if any.
func (s *Session) FindBySourcePath(path string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.FindBySourcePath(path)
}

// AddDocument registers a document and its embedded chunks across all stores.
// On a vector index failure nothing is registered; on a keyword index failure
// the document stays retrievable and the failure is logged, since keyword
// search is an operator aid rather than part of the answer path.
func (s *Session) AddDocument(ctx context.Context, doc *models.Document, chunks []*models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.docs.Add(doc) {
		return fmt.Errorf("document %q already loaded", doc.Name)
	}
	if err := s.vectors.Upsert(ctx, chunks); err != nil {
		s.docs.Remove(doc.ID)
		return fmt.Errorf("indexing chunks: %w", err)
	}
	if s.keywords != nil {
		if err := s.keywords.IndexBatch(ctx, chunks); err != nil {
			s.logger.Warn("keyword indexing failed",
				zap.String("document", doc.Name),
				zap.Error(err))
		}
	}
	s.auditLog.Record(models.SeveritySuccess,
		fmt.Sprintf("Loaded %q (%s, %d chunks)", doc.Name, doc.Type.Label(), doc.ChunkCount))
	return nil
}

// RemoveDocument deletes a document and all of its chunks from every store.
func (s *Session) RemoveDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs.Get(id)
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	if err := s.vectors.RemoveDocument(ctx, id); err != nil {
		return fmt.Errorf("removing chunks: %w", err)
	}
	if s.keywords != nil {
		if err := s.keywords.DeleteDocument(ctx, id); err != nil {
			s.logger.Warn("keyword delete failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	s.docs.Remove(id)
	s.auditLog.Record(models.SeverityInfo, fmt.Sprintf("Removed %q", doc.Name))
	return nil
}

// ClearCorpus drops every document, chunk, and in-memory audit entry.
func (s *Session) ClearCorpus(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vectors.Clear(ctx); err != nil {
		return fmt.Errorf("clearing vector index: %w", err)
	}
	if s.keywords != nil {
		if err := s.keywords.Reset(ctx); err != nil {
			s.logger.Warn("keyword reset failed", zap.Error(err))
		}
	}
	s.docs.Clear()
	s.auditLog.Clear()
	s.auditLog.Record(models.SeverityInfo, "Corpus cleared")
	return nil
}

// SearchChunks returns the top k chunks by similarity to the query embedding.
func (s *Session) SearchChunks(ctx context.Context, queryVec []float32, k int) ([]*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectors.Search(ctx, queryVec, k)
}

// KeywordSearch runs the operator keyword query. Returns an error when the
// keyword index is disabled.
func (s *Session) KeywordSearch(ctx context.Context, query string, limit int) ([]*keyword.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keywords == nil {
		return nil, fmt.Errorf("keyword index disabled")
	}
	return s.keywords.Search(ctx, query, limit)
}

// ListDocuments returns loaded documents in upload order.
func (s *Session) ListDocuments() []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.List()
}

// GetDocument returns a loaded document by ID.
func (s *Session) GetDocument(id string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Get(id)
}

// DocumentCount returns the number of loaded documents.
func (s *Session) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Count()
}

// ChunkCount returns the number of indexed chunks.
func (s *Session) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectors.Size()
}

// Audit exposes the audit log for recording pipeline events.
func (s *Session) Audit() *audit.Log {
	return s.auditLog
}

// RecentLogs returns the n most recent audit entries, newest first.
func (s *Session) RecentLogs(n int) []models.AuditEntry {
	return s.auditLog.Recent(n)
}

// Close releases the session's stores.
func (s *Session) Close() error {
	var firstErr error
	if err := s.vectors.Close(); err != nil {
		firstErr = err
	}
	if s.keywords != nil {
		if err := s.keywords.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.auditLog.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
