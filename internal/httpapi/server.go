// Package httpapi adapts service.Service onto the HTTP routes
// spec.md §6 names, grounded on the teacher's chi-based
// internal/server: a router built once in NewServer, one handler
// method per route, a shared respondJSON/respondError pair, and
// chi's Recoverer/Timeout middleware stack.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/metrics"
	"github.com/standardbeagle/codelens/internal/service"
)

// Config holds the HTTP adapter's own knobs, distinct from analysis config.
type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{Host: "127.0.0.1", Port: 8080, RequestTimeout: 5 * time.Minute}
}

// Server is the HTTP adapter over a service.Service.
type Server struct {
	svc    service.Service
	cfg    Config
	log    *logging.Logger
	server *http.Server
}

func NewServer(svc service.Service, cfg Config, log *logging.Logger) *Server {
	return &Server{svc: svc, cfg: cfg, log: log}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/templates", s.handleListTemplates)
	r.Get("/templates/{id}", s.handleGetTemplate)
	r.Post("/generate", s.handleGenerate)
	r.Post("/analyze/complexity", s.handleAnalyzeComplexity)
	r.Post("/analyze/churn", s.handleAnalyzeChurn)
	r.Post("/analyze/dag", s.handleAnalyzeDAG)
	r.Post("/analyze/dead-code", s.handleAnalyzeDeadCode)
	r.Post("/analyze/satd", s.handleAnalyzeSATD)
	r.Post("/analyze/duplicates", s.handleAnalyzeDuplicates)
	r.Post("/analyze/tdg", s.handleAnalyzeTDG)
	r.Post("/analyze/deep-context", s.handleAnalyzeDeepContext)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

// ListenAndServe blocks until the server stops or ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{Addr: addr, Handler: s.router()}

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics exposes the service metrics registry snapshot as
// JSON; spec.md §6 requires a /metrics route but doesn't mandate
// Prometheus text format, and no metrics client exists anywhere in
// the example pack to format it that way, so the registry's own
// snapshot shape is returned directly.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	cs, ok := s.svc.(*service.CoreService)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]metrics.MethodStats{})
		return
	}
	respondJSON(w, http.StatusOK, cs.Metrics.Snapshot())
}
