package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/secwatch/errors"
	"github.com/c360/secwatch/metric"
	"github.com/c360/secwatch/monitor"
)

// Server is the console-facing HTTP server.
type Server struct {
	addr     string
	mon      *monitor.Monitor
	logger   *slog.Logger
	registry *metric.Registry

	httpServer *http.Server
	hub        *hub
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRegistry enables the /metrics exposition endpoint
func WithMetricsRegistry(reg *metric.Registry) ServerOption {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer creates a gateway server for the given monitor.
func NewServer(addr string, mon *monitor.Monitor, opts ...ServerOption) *Server {
	s := &Server{
		addr:   addr,
		mon:    mon,
		logger: slog.Default().With("service", "gateway"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// withMethod restricts a handler to a single HTTP method, matching the
// behavior of Go 1.22+ method-prefixed ServeMux patterns ("GET /path"),
// which the Go 1.21 toolchain does not support. As with those patterns,
// GET also matches HEAD.
func withMethod(method string, h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			w.Header().Set("Allow", method)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", withMethod(http.MethodGet, http.HandlerFunc(s.handleLiveness)))
	mux.HandleFunc("/api/v1/health", withMethod(http.MethodGet, http.HandlerFunc(s.handleHealth)))
	mux.HandleFunc("/api/v1/metrics/history", withMethod(http.MethodGet, http.HandlerFunc(s.handleMetricsHistory)))
	mux.HandleFunc("/api/v1/alerts/history", withMethod(http.MethodGet, http.HandlerFunc(s.handleAlertsHistory)))
	mux.HandleFunc("/api/v1/checks", withMethod(http.MethodGet, http.HandlerFunc(s.handleChecks)))
	mux.HandleFunc("/api/v1/checks/run", withMethod(http.MethodPost, http.HandlerFunc(s.handleRunCheck)))
	mux.HandleFunc("/api/v1/stream", withMethod(http.MethodGet, http.HandlerFunc(s.hub.handleUpgrade)))

	if s.registry != nil {
		mux.Handle("/metrics", withMethod(http.MethodGet, promhttp.HandlerFor(
			s.registry.PrometheusRegistry(),
			promhttp.HandlerOpts{},
		)))
	}

	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	if s.mon == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "Server", "Start", "monitor required")
	}

	go func() {
		s.logger.Info("gateway listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("gateway server failed", "error", err)
		}
	}()
	return nil
}

// Broadcast pushes a check result to every connected console. Wire this
// as the monitor's listener.
func (s *Server) Broadcast(res monitor.Result) {
	s.hub.broadcast(res)
}

// Shutdown stops the HTTP server and closes all WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.WrapTransient(err, "Server", "Shutdown", "http shutdown")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
