package embedding

import "fmt"

// Options selects and configures an embedding provider.
type Options struct {
	// Provider is one of "onnx", "ollama", "mock", or "auto" (empty).
	// Auto tries ONNX first and falls back to the mock embedder.
	Provider    string
	ModelPath   string
	OllamaURL   string
	OllamaModel string
	Dimensions  int
	MaxTokens   int
	CacheSize   int
}

// New creates the configured embedding provider.
func New(opts Options) (Embedder, error) {
	switch opts.Provider {
	case "mock":
		return NewMockEmbedder(opts.Dimensions), nil
	case "ollama":
		return NewOllamaEmbedder(opts.OllamaURL, opts.OllamaModel, opts.Dimensions, opts.CacheSize), nil
	case "onnx":
		return NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens, opts.CacheSize)
	case "", "auto":
		if e, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens, opts.CacheSize); err == nil {
			return e, nil
		}
		return NewMockEmbedder(opts.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, ollama, mock, auto)", opts.Provider)
	}
}
