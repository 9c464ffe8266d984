// Package api exposes the pipeline over HTTP: a health route and a
// generate-video endpoint that runs one pipeline per request.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ai-video-factory/internal/ledger"
	"ai-video-factory/internal/pipeline"
)

// Runner executes one pipeline run; satisfied by *pipeline.Driver
type Runner interface {
	RunOnce(ctx context.Context, customPrompt string) (*pipeline.Result, error)
}

// RunHistory lists past runs; satisfied by *ledger.Store. Nil when the
// ledger is unavailable.
type RunHistory interface {
	Recent(ctx context.Context, limit int) ([]ledger.Run, error)
}

// Server wraps the HTTP surface of the factory
type Server struct {
	runner  Runner
	history RunHistory
	http    *http.Server

	// mu serializes generation: the backend holds one model set in memory,
	// so concurrent runs would thrash it.
	mu sync.Mutex
}

// New creates a Server listening on addr
func New(addr string, runner Runner, history RunHistory) *Server {
	s := &Server{runner: runner, history: history}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Post("/generate_video", s.handleGenerate)
	r.Get("/runs", s.handleRuns)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks serving HTTP until Shutdown or a listener error
func (s *Server) ListenAndServe() error {
	log.Printf("[api] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("AI Video Generator Backend is running!"))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// An empty or malformed body means "use a trending topic".
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = GenerateRequest{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.runner.RunOnce(r.Context(), req.Prompt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrNoTrendingTopics) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, GenerateResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:  true,
		VideoID:  result.VideoID,
		VideoURL: result.VideoURL,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, RunsResponse{Error: "run ledger unavailable"})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, RunsResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []ledger.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] write response: %v", err)
	}
}
