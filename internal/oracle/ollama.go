package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
	defaultTimeout     = 120 * time.Second
	retryBackoff       = 2 * time.Second
)

// Ollama generates completions via a local Ollama server's /api/generate
// endpoint. A request that fails transiently (connection error or 5xx) is
// retried once after a short backoff; other failures are returned as-is.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	backoff time.Duration
}

// NewOllama creates an Ollama-backed oracle. Empty arguments fall back to
// localhost and the default model.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		backoff: retryBackoff,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends the prompt and returns the model's full answer.
func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	answer, err := o.complete(ctx, prompt)
	if err == nil || !isTransient(err) {
		return answer, err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(o.backoff):
	}
	return o.complete(ctx, prompt)
}

func (o *Ollama) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &statusError{code: resp.StatusCode}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return genResp.Response, nil
}

// Close is a no-op; the HTTP client holds no resources needing release.
func (o *Ollama) Close() error { return nil }

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("Ollama returned status %d", e.code)
}

// isTransient reports whether the failure is worth one retry: network-level
// errors and 5xx responses. Context cancellation and 4xx are not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
