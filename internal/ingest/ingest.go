// Package ingest turns raw documents into classified, chunked, embedded
// corpus entries.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/chunker"
	"github.com/torii-sec/mamori/internal/detect"
	"github.com/torii-sec/mamori/internal/embedding"
	"github.com/torii-sec/mamori/internal/extract"
	"github.com/torii-sec/mamori/internal/models"
	"github.com/torii-sec/mamori/internal/session"
)

// Ingestor runs the upload pipeline: classify, chunk, embed, register.
type Ingestor struct {
	session   *session.Session
	embedder  embedding.Embedder
	extractor *extract.Extractor
	maxWords  int
	logger    *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Ingestor) { i.logger = logger }
}

// WithChunkSize overrides the chunk size in words.
func WithChunkSize(words int) Option {
	return func(i *Ingestor) {
		if words > 0 {
			i.maxWords = words
		}
	}
}

// New creates an Ingestor over the session and embedder.
func New(sess *session.Session, embedder embedding.Embedder, opts ...Option) *Ingestor {
	ing := &Ingestor{
		session:   sess,
		embedder:  embedder,
		extractor: extract.NewExtractor(),
		maxWords:  chunker.DefaultMaxWords,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Result reports the outcome of an ingestion.
type Result struct {
	Document *models.Document
	// Skipped is true when a document with the same name was already
	// loaded; re-uploads are a no-op.
	Skipped bool
}

// IngestText ingests a named text body. sourcePath is recorded when the text
// came from a file on disk, otherwise empty.
func (i *Ingestor) IngestText(ctx context.Context, name, text, sourcePath string) (*Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("document name is empty")
	}
	if i.session.HasDocumentName(name) {
		i.logger.Debug("document already loaded, skipping", zap.String("name", name))
		doc, _ := i.session.GetDocumentByName(name)
		return &Result{Document: doc, Skipped: true}, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document %q has no extractable text", name)
	}

	docType := detect.ClassifyDocument(text)
	pieces := chunker.Chunk(text, i.maxWords)

	vectors, err := i.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		i.session.Audit().Record(models.SeverityError,
			fmt.Sprintf("Failed to embed %q", name))
		return nil, fmt.Errorf("embedding %q: %w", name, err)
	}

	doc := &models.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       docType,
		ChunkCount: len(pieces),
		SourcePath: sourcePath,
		CreatedAt:  time.Now(),
	}
	chunks := make([]*models.Chunk, len(pieces))
	for idx, piece := range pieces {
		chunks[idx] = &models.Chunk{
			ID:           fmt.Sprintf("%s_%d", doc.ID, idx),
			DocumentID:   doc.ID,
			DocumentName: name,
			DocumentType: docType,
			Text:         piece,
			Embedding:    vectors[idx],
		}
	}

	if err := i.session.AddDocument(ctx, doc, chunks); err != nil {
		// A concurrent upload with the same name can win the race between
		// the HasDocumentName check and registration.
		if existing, ok := i.session.GetDocumentByName(name); ok {
			return &Result{Document: existing, Skipped: true}, nil
		}
		return nil, err
	}

	if doc.Type != models.DocTypeUnknown {
		i.session.Audit().Record(models.SeverityWarning,
			fmt.Sprintf("%q contains %s data", name, doc.Type.Label()))
	}
	i.logger.Info("document ingested",
		zap.String("name", name),
		zap.String("type", string(doc.Type)),
		zap.Int("chunks", doc.ChunkCount))
	return &Result{Document: doc}, nil
}

// IngestFile extracts text from the file at path and ingests it under its
// base name. Extraction failures are recorded in the audit log and returned
// without registering anything.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (*Result, error) {
	name := filepath.Base(path)
	if i.session.HasDocumentName(name) {
		doc, _ := i.session.GetDocumentByName(name)
		return &Result{Document: doc, Skipped: true}, nil
	}
	text, err := i.extractor.Extract(path)
	if err != nil {
		i.session.Audit().Record(models.SeverityError,
			fmt.Sprintf("Failed to extract text from %q", name))
		return nil, fmt.Errorf("extracting %q: %w", name, err)
	}
	return i.IngestText(ctx, name, text, path)
}

// IngestDirectory ingests every supported file directly under dir. Per-file
// failures are logged and skipped; the first error is returned after the
// walk completes.
func (i *Ingestor) IngestDirectory(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading directory: %w", err)
	}
	var ingested int
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !extract.Supported(filepath.Ext(entry.Name())) {
			continue
		}
		res, err := i.IngestFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			i.logger.Warn("skipping file", zap.String("file", entry.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !res.Skipped {
			ingested++
		}
	}
	return ingested, firstErr
}
