package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func generateHandler(t *testing.T, respond func(w http.ResponseWriter, prompt string)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respond(w, req.Prompt)
	}
}

func TestOllama_Complete(t *testing.T) {
	srv := httptest.NewServer(generateHandler(t, func(w http.ResponseWriter, prompt string) {
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "the answer", Done: true})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model", time.Second)
	got, err := o.Complete(context.Background(), "what is the policy?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "the answer" {
		t.Errorf("got %q", got)
	}
}

func TestOllama_RetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(generateHandler(t, func(w http.ResponseWriter, prompt string) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "recovered", Done: true})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model", 5*time.Second)
	o.backoff = 10 * time.Millisecond
	got, err := o.Complete(context.Background(), "q")
	if err != nil {
		t.Fatalf("Complete after retry: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("server called %d times, want 2", n)
	}
}

func TestOllama_NoRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(generateHandler(t, func(w http.ResponseWriter, prompt string) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model", time.Second)
	if _, err := o.Complete(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", n)
	}
}

func TestStatic_RecordsPrompts(t *testing.T) {
	s := &Static{Response: "canned"}
	got, err := s.Complete(context.Background(), "first prompt")
	if err != nil || got != "canned" {
		t.Fatalf("Complete = %q, %v", got, err)
	}
	if len(s.Prompts) != 1 || s.Prompts[0] != "first prompt" {
		t.Errorf("Prompts = %v", s.Prompts)
	}
}
