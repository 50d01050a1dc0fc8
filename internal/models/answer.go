package models

// Verdict is the result of sensitive-pattern detection on a text fragment.
// Computed per fragment at query time and context time; never persisted.
type Verdict struct {
	Sensitive  bool     `json:"sensitive"`
	Categories []string `json:"categories,omitempty"`
}

// AskRequest is a question posed against the loaded corpus.
type AskRequest struct {
	Query string `json:"query"`
}

// AnswerResult is the outcome of one answered query.
type AnswerResult struct {
	Query string `json:"query"`
	// Chunks are the retrieved context chunks in rank order. Chunk text is
	// not serialized; callers see IDs, document names, and scores only.
	Chunks []*Chunk `json:"retrieved_chunks"`
	// SensitivityFlagged is true when the query, the retrieved context, or
	// the raw oracle output matched a protected-data category.
	SensitivityFlagged bool `json:"sensitivity_flagged"`
	// FlaggedCategories is the union of matched category names across all
	// detection passes, in registry order.
	FlaggedCategories []string `json:"flagged_categories,omitempty"`
	// RawAnswer is the unfiltered oracle output. Kept for auditing; not serialized.
	RawAnswer string `json:"-"`
	// FilteredAnswer is the answer after the post-generation redaction pass.
	FilteredAnswer string `json:"filtered_answer"`
	// NoContext is true when retrieval returned nothing and the fixed
	// "no relevant information" answer was used without calling the oracle.
	NoContext bool `json:"no_context,omitempty"`
	// Degraded is true when the oracle failed and FilteredAnswer carries an
	// explanatory message instead of a generated answer.
	Degraded  bool  `json:"degraded,omitempty"`
	QueryTime int64 `json:"query_time_ms"`
}
