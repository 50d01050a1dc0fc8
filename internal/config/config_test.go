package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "localhost" {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Corpus.ChunkWords != 500 || cfg.Corpus.TopK != 5 || cfg.Corpus.RecentLogs != 10 {
		t.Errorf("corpus defaults = %+v", cfg.Corpus)
	}
	if cfg.Embedding.Provider != "auto" {
		t.Errorf("Provider = %s", cfg.Embedding.Provider)
	}
	if cfg.Oracle.Model != "llama3.2" || cfg.Oracle.TimeoutSeconds != 120 {
		t.Errorf("oracle defaults = %+v", cfg.Oracle)
	}
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  port: 9999
corpus:
  chunk_words: 250
  top_k: 3
embedding:
  provider: mock
  dimensions: 64
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 || cfg.Corpus.ChunkWords != 250 || cfg.Corpus.TopK != 3 {
		t.Errorf("explicit values not honored: %+v", cfg)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 64 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
}

func TestLoad_ExpandsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  audit_database_path: ./data/audit.db\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "data/audit.db")
	if cfg.Storage.AuditDatabasePath != want {
		t.Errorf("AuditDatabasePath = %s, want %s", cfg.Storage.AuditDatabasePath, want)
	}
	if cfg.Storage.BleveIndexPath != "" {
		t.Errorf("empty path should stay empty, got %s", cfg.Storage.BleveIndexPath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.Port = 7777
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Server.Port != 7777 {
		t.Errorf("Port = %d after round trip", got.Server.Port)
	}
}
