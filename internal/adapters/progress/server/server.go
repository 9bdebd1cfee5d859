package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultAddr = ":3000"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

type Config struct {
	Addr string
	// Quota is the daily transfer quota drawn as 100% on the dashboard.
	Quota int
}

type Server struct {
	cfg      Config
	store    ports.ProgressStore
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logger   *slog.Logger
}

func New(cfg Config, store ports.ProgressStore) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Quota <= 0 {
		cfg.Quota = 100
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ptx_progress_http_requests_total", Help: "Progress API requests."},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ptx_progress_http_request_duration_seconds",
				Help:    "Progress API request duration.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		logger: logger.Named("progress-server"),
	}
	s.registry.MustRegister(s.requests, s.duration, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return s
}

// Handler returns the routed and instrumented API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+progress.PathAccounts, s.handleSetAccounts)
	mux.HandleFunc("POST "+progress.PathCount, s.handleSetCount)
	mux.HandleFunc("GET "+progress.PathData, s.handleData)
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s.instrument(mux)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("progress server listening", slog.String("addr", listener.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown progress server: %w", err)
		}
		s.logger.Info("progress server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSetAccounts(w http.ResponseWriter, r *http.Request) {
	var req progress.AccountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Users == nil {
		writeError(w, http.StatusBadRequest, "users is required")
		return
	}
	for _, user := range req.Users {
		if strings.TrimSpace(user) == "" {
			writeError(w, http.StatusBadRequest, "users must not contain empty names")
			return
		}
	}

	if err := s.store.SetAccounts(r.Context(), req.Users); err != nil {
		s.logger.Error("reset accounts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	s.logger.Info("accounts reset", slog.Int("accounts", len(req.Users)))
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleSetCount(w http.ResponseWriter, r *http.Request) {
	var req progress.CountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.User) == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	if req.TxCount < 0 {
		writeError(w, http.StatusBadRequest, "txCount must not be negative")
		return
	}

	if err := s.store.SetCount(r.Context(), req.User, req.TxCount); err != nil {
		s.logger.Error("set count failed", slog.String("user", req.User), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	s.logger.Debug("count updated", slog.String("user", req.User), slog.Int("count", req.TxCount))
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, progress.NewDataResponse(snapshot))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		path := routeLabel(r.URL.Path)
		s.requests.WithLabelValues(r.Method, path, statusClass(recorder.status)).Inc()
		s.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// routeLabel keeps label cardinality bounded when clients probe random paths.
func routeLabel(path string) string {
	switch path {
	case "/", progress.PathAccounts, progress.PathCount, progress.PathData, "/metrics":
		return path
	default:
		return "other"
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
