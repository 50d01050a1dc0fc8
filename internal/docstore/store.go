// Package docstore tracks per-document metadata for a corpus session.
package docstore

import (
	"sync"

	"github.com/torii-sec/mamori/internal/models"
)

// Store is an in-memory keyed collection of documents preserving insertion
// order. Document names are unique among currently loaded documents;
// ingestion uses HasName to make re-uploads a no-op rather than an overwrite.
type Store struct {
	mu    sync.RWMutex
	docs  []*models.Document
	byID  map[string]int
	names map[string]string // name -> document ID
}

// New returns an empty document store.
func New() *Store {
	return &Store{
		byID:  make(map[string]int),
		names: make(map[string]string),
	}
}

// Add stores doc. It is a no-op returning false when the ID or name is
// already present.
func (s *Store) Add(doc *models.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[doc.ID]; ok {
		return false
	}
	if _, ok := s.names[doc.Name]; ok {
		return false
	}
	s.byID[doc.ID] = len(s.docs)
	s.names[doc.Name] = doc.ID
	s.docs = append(s.docs, doc)
	return true
}

// Get returns the document with the given ID.
func (s *Store) Get(id string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.docs[pos], true
}

// HasName reports whether a document with the given name is loaded.
func (s *Store) HasName(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// GetByName returns the loaded document with the given name.
func (s *Store) GetByName(name string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.docs[s.byID[id]], true
}

// FindBySourcePath returns the document ingested from the given file path.
func (s *Store) FindBySourcePath(path string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.SourcePath != "" && d.SourcePath == path {
			return d, true
		}
	}
	return nil, false
}

// List returns all documents in insertion order.
func (s *Store) List() []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Remove deletes the document with the given ID and returns it.
func (s *Store) Remove(id string) (*models.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	doc := s.docs[pos]
	s.docs = append(s.docs[:pos], s.docs[pos+1:]...)
	delete(s.byID, id)
	delete(s.names, doc.Name)
	for i := pos; i < len(s.docs); i++ {
		s.byID[s.docs[i].ID] = i
	}
	return doc, true
}

// Clear removes all documents.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.byID = make(map[string]int)
	s.names = make(map[string]string)
}

// Count returns the number of loaded documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
