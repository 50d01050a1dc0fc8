package engine

import "errors"

// Sentinel errors for the stages of the answer pipeline. Callers match with
// errors.Is to map failures to transport-level responses without inspecting
// message text.
var (
	// ErrEmbedding indicates the query could not be embedded.
	ErrEmbedding = errors.New("query embedding failed")
	// ErrIndex indicates the vector index could not be searched.
	ErrIndex = errors.New("index search failed")
)
