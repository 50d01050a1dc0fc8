package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/engine"
	"github.com/torii-sec/mamori/internal/extract"
	"github.com/torii-sec/mamori/internal/models"
)

const maxUploadBytes = 32 << 20

// IngestRequest uploads a named text document.
type IngestRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// handleIngest accepts either a JSON body with name and text, or a
// multipart form with a "file" part whose content is extracted server-side.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		name, text, err := s.readUpload(r)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req = IngestRequest{Name: name, Text: text}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ingest request", zap.String("name", req.Name))
	res, err := s.ingestor.IngestText(r.Context(), req.Name, req.Text, "")
	if err != nil {
		s.logger.Error("ingestion failed", zap.String("name", req.Name), zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	status := http.StatusCreated
	if res.Skipped {
		status = http.StatusOK
	}
	s.respondJSON(w, status, map[string]interface{}{
		"document": res.Document,
		"skipped":  res.Skipped,
	})
}

func (s *Server) readUpload(r *http.Request) (name, text string, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", errors.New("missing file part")
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", "", errors.New("reading upload failed")
	}
	name = filepath.Base(header.Filename)
	text, err = extract.NewExtractor().ExtractBytes(content, strings.ToLower(filepath.Ext(name)))
	if err != nil {
		s.logger.Warn("upload extraction failed", zap.String("name", name), zap.Error(err))
		return "", "", errors.New("could not extract text from upload")
	}
	return name, text, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": s.session.ListDocuments(),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.session.GetDocument(id); !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err := s.session.RemoveDocument(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleClearCorpus(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearCorpus(r.Context()); err != nil {
		s.logger.Error("clear failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.engine.Ask(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		switch {
		case errors.Is(err, engine.ErrEmbedding), errors.Is(err, engine.ErrIndex):
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	results, err := s.session.KeywordSearch(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := s.config.Corpus.RecentLogs
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": s.session.RecentLogs(n),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": s.session.DocumentCount(),
		"chunks":    s.session.ChunkCount(),
		"config": map[string]interface{}{
			"chunk_words":        s.config.Corpus.ChunkWords,
			"top_k":              s.config.Corpus.TopK,
			"embedding_provider": s.config.Embedding.Provider,
			"oracle_model":       s.config.Oracle.Model,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
