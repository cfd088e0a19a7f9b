// Package api exposes the nfcond control surface over HTTP: the per-variable
// read/write endpoints (the reachable rendition of the status-file contract),
// namespace management, a websocket event stream, health, and metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/nfcond/internal/events"
	"grimm.is/nfcond/internal/logging"
	"grimm.is/nfcond/internal/metrics"
	"grimm.is/nfcond/internal/namespace"
)

// maxWriteBody bounds condition write payloads. Only the first byte
// matters, but the contract consumes the whole payload.
const maxWriteBody = 4096

// ServerOptions holds dependencies for the API server.
type ServerOptions struct {
	Listen  string
	Manager *namespace.Manager
	Hub     *events.Hub
	Logger  *logging.Logger
}

// Server handles API requests.
type Server struct {
	listen    string
	manager   *namespace.Manager
	hub       *events.Hub
	log       *logging.Logger
	startTime time.Time

	mux *http.ServeMux
}

// NewServer creates a new API server with the provided options.
func NewServer(opts ServerOptions) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	s := &Server{
		listen:    opts.Listen,
		manager:   opts.Manager,
		hub:       opts.Hub,
		log:       log.WithComponent("api"),
		startTime: time.Now(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /v1/namespaces", s.handleListNamespaces)
	s.mux.HandleFunc("POST /v1/namespaces/{ns}", s.handleCreateNamespace)
	s.mux.HandleFunc("DELETE /v1/namespaces/{ns}", s.handleDestroyNamespace)

	s.mux.HandleFunc("GET /v1/namespaces/{ns}/conditions", s.handleListConditions)
	s.mux.HandleFunc("GET /v1/namespaces/{ns}/conditions/{name}", s.handleReadCondition)
	s.mux.HandleFunc("PUT /v1/namespaces/{ns}/conditions/{name}", s.handleWriteCondition)
	s.mux.HandleFunc("POST /v1/namespaces/{ns}/conditions/{name}", s.handleWriteCondition)

	s.mux.HandleFunc("GET /v1/events", s.handleEvents)
}

// Handler returns the instrumented root handler, for serving and tests.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// instrument wraps a handler with request counting.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		class := fmt.Sprintf("%dxx", rec.status/100)
		metrics.Get().APIRequests.WithLabelValues(r.Method, class).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func contentLengthOK(r *http.Request) bool {
	if r.ContentLength < 0 {
		return true
	}
	return r.ContentLength <= maxWriteBody
}
