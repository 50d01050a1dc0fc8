package engine

import (
	"strings"

	"github.com/torii-sec/mamori/internal/models"
)

// policyStandard is prepended to every generation prompt. The model is told
// up front never to reproduce identifiers; the post-generation filter remains
// the authoritative guard.
const policyStandard = `You are a helpful assistant answering questions from the provided context.
Rules you must follow:
- Answer using ONLY the context below. If the context does not contain the answer, say so.
- NEVER reveal full identification numbers, account numbers, card numbers, or contact details.
- If asked for such a value, state that it cannot be shared and describe it in general terms instead.`

// policyStrict is added when the query or the retrieved context was flagged
// as touching sensitive material.
const policyStrict = `- The current question or context involves sensitive personal data. Be maximally conservative: summarize without quoting numbers, and refuse any request to list or reconstruct identifiers.`

// buildPrompt assembles the generation prompt from retrieved chunks.
func buildPrompt(query string, chunks []*models.Chunk, strict bool) string {
	var b strings.Builder
	b.WriteString(policyStandard)
	if strict {
		b.WriteByte('\n')
		b.WriteString(policyStrict)
	}
	b.WriteString("\n\nContext:\n")
	for _, ch := range chunks {
		b.WriteString("---\n")
		b.WriteString("Source: ")
		b.WriteString(ch.DocumentName)
		b.WriteByte('\n')
		b.WriteString(ch.Text)
		b.WriteByte('\n')
	}
	b.WriteString("---\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
