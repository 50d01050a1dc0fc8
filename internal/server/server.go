// Package server provides the HTTP API for mamori.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/config"
	"github.com/torii-sec/mamori/internal/engine"
	"github.com/torii-sec/mamori/internal/ingest"
	"github.com/torii-sec/mamori/internal/session"
)

// Server is the HTTP server for the mamori API.
type Server struct {
	session  *session.Session
	engine   *engine.Engine
	ingestor *ingest.Ingestor
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sess *session.Session,
	eng *engine.Engine,
	ing *ingest.Ingestor,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		session:  sess,
		engine:   eng,
		ingestor: ing,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the HTTP routes. Exposed for handler tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents", s.handleIngest)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Delete("/api/v1/documents", s.handleClearCorpus)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/api/v1/search", s.handleKeywordSearch)
	r.Get("/api/v1/logs", s.handleLogs)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
