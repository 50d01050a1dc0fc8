// Package main is the mamori CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/audit"
	"github.com/torii-sec/mamori/internal/config"
	"github.com/torii-sec/mamori/internal/docstore"
	"github.com/torii-sec/mamori/internal/embedding"
	"github.com/torii-sec/mamori/internal/engine"
	"github.com/torii-sec/mamori/internal/ingest"
	"github.com/torii-sec/mamori/internal/keyword"
	"github.com/torii-sec/mamori/internal/oracle"
	"github.com/torii-sec/mamori/internal/server"
	"github.com/torii-sec/mamori/internal/session"
	"github.com/torii-sec/mamori/internal/vector"
	"github.com/torii-sec/mamori/internal/watcher"
	"github.com/torii-sec/mamori/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/mamori/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence if it exists, so running from the
// project directory picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		// No config file anywhere: run on defaults.
		if os.IsNotExist(err) || path == defaultConfigPath {
			cfg = &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "docs":
		runDocs()
	case "logs":
		runLogs()
	case "clear":
		runClear()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("mamori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Directory != "" {
		ing := components.Ingestor
		watchSvc := watcher.New(cfg.Watch.Directory, func(path string) {
			res, err := ing.IngestFile(context.Background(), path)
			if err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			if !res.Skipped {
				logger.Info("ingested dropped file", zap.String("path", path))
			}
		}, watcher.WithLogger(logger), watcher.WithRemoveHandler(func(path string) {
			doc, ok := components.Session.FindBySourcePath(path)
			if !ok {
				return
			}
			if err := components.Session.RemoveDocument(context.Background(), doc.ID); err != nil {
				logger.Warn("watch removal failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("removed document for deleted file", zap.String("path", path))
		}))
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Session,
		components.Engine,
		components.Ingestor,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// Components holds the wired corpus stack for server mode.
type Components struct {
	Session  *session.Session
	Embedder embedding.Embedder
	Oracle   oracle.Oracle
	Engine   *engine.Engine
	Ingestor *ingest.Ingestor
}

// Close releases components in dependency order.
func (c *Components) Close() {
	if c.Oracle != nil {
		_ = c.Oracle.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Session != nil {
		_ = c.Session.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.New(embedding.Options{
		Provider:    cfg.Embedding.Provider,
		ModelPath:   cfg.Embedding.ModelPath,
		OllamaURL:   cfg.Embedding.OllamaURL,
		OllamaModel: cfg.Embedding.OllamaModel,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxTokens:   cfg.Embedding.MaxTokens,
		CacheSize:   cfg.Embedding.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vectorIndex, err := vector.NewMemoryIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	auditOpts := []audit.Option{}
	if cfg.Storage.AuditDatabasePath != "" {
		sink, err := audit.NewSQLiteSink(cfg.Storage.AuditDatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audit archive: %w", err)
		}
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	auditLog := audit.NewLog(auditOpts...)

	sess := session.New(docstore.New(), vectorIndex, keywordIndex, auditLog, logger)

	orc := oracle.NewOllama(
		cfg.Oracle.URL,
		cfg.Oracle.Model,
		time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second,
	)

	eng := engine.New(sess, embedder, orc,
		engine.WithLogger(logger),
		engine.WithTopK(cfg.Corpus.TopK),
	)
	ing := ingest.New(sess, embedder,
		ingest.WithLogger(logger),
		ingest.WithChunkSize(cfg.Corpus.ChunkWords),
	)

	return &Components{
		Session:  sess,
		Embedder: embedder,
		Oracle:   orc,
		Engine:   eng,
		Ingestor: ing,
	}, nil
}

func printUsage() {
	fmt.Println(`mamori - sensitive-data-aware document question answering

Usage:
  mamori server [flags]            Start the HTTP server
  mamori ingest [flags] <file>...  Upload documents to a running server
  mamori ask [flags] <question>    Ask a question against the loaded corpus
  mamori docs [flags]              List loaded documents
  mamori logs [flags]              Show recent audit entries
  mamori clear [flags]             Remove all loaded documents
  mamori status [flags]            Show corpus status
  mamori version                   Show version
  mamori help                      Show this help

Common flags:
  -server <url>    server URL (default http://localhost:8080)
  -config <path>   config file path (server command)

Examples:
  mamori server -debug
  mamori ingest report.pdf statement.xlsx
  mamori ask "what is the leave policy?"
  mamori logs -n 20`)
}
