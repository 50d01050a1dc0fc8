// Package chunker splits extracted text into bounded word windows for embedding.
package chunker

import "strings"

// DefaultMaxWords is the default chunk size in words.
const DefaultMaxWords = 500

// Chunk splits text on whitespace into contiguous, non-overlapping windows of
// at most maxWords words each; the final window may be shorter. Word order is
// preserved and the concatenation of all chunks equals the original word
// sequence. Empty or whitespace-only input yields nil. Chunking is
// word-granular; an arbitrarily long single word is emitted whole.
func Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
