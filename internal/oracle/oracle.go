// Package oracle abstracts the language model used for answer generation.
package oracle

import "context"

// Oracle produces a completion for a fully assembled prompt.
type Oracle interface {
	// Complete returns the model's answer text. Implementations must honor
	// ctx cancellation and bound their own request timeouts.
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Static is a canned oracle for tests and offline operation. It returns the
// configured response for every prompt.
type Static struct {
	Response string
	Err      error
	// Prompts records every prompt passed to Complete.
	Prompts []string
}

// Complete returns the canned response or error.
func (s *Static) Complete(ctx context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// Close is a no-op.
func (s *Static) Close() error { return nil }
