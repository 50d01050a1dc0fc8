package config

// ApplyDefaults fills unset fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.ChunkWords == 0 {
		cfg.Corpus.ChunkWords = 500
	}
	if cfg.Corpus.TopK == 0 {
		cfg.Corpus.TopK = 5
	}
	if cfg.Corpus.RecentLogs == 0 {
		cfg.Corpus.RecentLogs = 10
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "auto"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.OllamaModel == "" {
		cfg.Embedding.OllamaModel = "nomic-embed-text"
	}
	if cfg.Oracle.URL == "" {
		cfg.Oracle.URL = "http://localhost:11434"
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "llama3.2"
	}
	if cfg.Oracle.TimeoutSeconds == 0 {
		cfg.Oracle.TimeoutSeconds = 120
	}
}
