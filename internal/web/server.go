package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/damilare-ak/clinicnote/internal/async"
	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/export"
	"github.com/damilare-ak/clinicnote/internal/pipeline"
	"github.com/damilare-ak/clinicnote/internal/repository"
)

// Server is the dashboard front door: manual uploads, status, history, and
// the history export. It never processes inline unless asked to; uploads go
// through the background queue by default.
type Server struct {
	processor *pipeline.Processor
	queue     *async.TaskQueue
	repo      *repository.SessionRepo
	exporter  *export.Service
	logger    *slog.Logger
	httpSrv   *http.Server
}

func NewServer(addr string, processor *pipeline.Processor, queue *async.TaskQueue, repo *repository.SessionRepo, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		processor: processor,
		queue:     queue,
		repo:      repo,
		exporter:  exporter,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/sessions", s.handleUpload)
	mux.HandleFunc("GET /api/export", s.handleExport)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.withLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("web.listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		r = r.WithContext(common.WithRequestID(r.Context(), reqID))
		next.ServeHTTP(w, r)
		s.logger.Debug("web.request",
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("web.encode_response_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
