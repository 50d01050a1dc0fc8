// Package models defines core data structures for documents, chunks, answers, and audit entries.
package models

import "time"

// DocType classifies a document by the kind of sensitive material it carries.
type DocType string

const (
	DocTypeAadhaar  DocType = "aadhaar"
	DocTypeBanking  DocType = "banking"
	DocTypeMedical  DocType = "medical"
	DocTypeEmployee DocType = "employee"
	DocTypeUnknown  DocType = "unknown"
)

// Label returns a human-readable name for the document type.
func (t DocType) Label() string {
	switch t {
	case DocTypeAadhaar:
		return "Aadhaar"
	case DocTypeBanking:
		return "Banking"
	case DocTypeMedical:
		return "Medical"
	case DocTypeEmployee:
		return "Employee"
	default:
		return "Document"
	}
}

// Document represents an ingested document. Immutable after creation except deletion.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       DocType   `json:"type"`
	ChunkCount int       `json:"chunk_count"`
	SourcePath string    `json:"source_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a bounded contiguous segment of a document's text, the unit of
// embedding and retrieval. The chunk ID is derived from the document ID and
// the chunk's sequence index, so IDs are unique within the index and a
// document's chunk IDs are enumerable from its chunk count.
// Text and Embedding are never serialized to API responses.
type Chunk struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Text         string    `json:"-"`
	Embedding    []float32 `json:"-"`
	DocumentName string    `json:"document_name"`
	DocumentType DocType   `json:"document_type"`
	Score        float64   `json:"score,omitempty"`
}
