// Package http exposes the service's operational endpoints plus a small
// read API over the stored indicator values.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ValueLister serves stored indicator values. The SQLite store implements it.
type ValueLister interface {
	ListValues(ctx context.Context, opts store.QueryOptions) ([]domain.IndicatorValue, error)
}

// Server exposes health, readiness, metrics, and indicator query endpoints.
type Server struct {
	httpServer *http.Server
	values     ValueLister
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/indicators routes. values may be nil, in which case the indicator
// endpoint responds 503.
func NewServer(addr string, ready ReadinessChecker, values ValueLister, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		values: values,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/indicators", s.handleIndicators)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleIndicators serves stored indicator values filtered by query
// parameters: station, indicator, from, to (RFC 3339 dates), limit.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	if s.values == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "value store not configured"})
		return
	}

	opts, err := queryOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	values, err := s.values.ListValues(r.Context(), opts)
	if err != nil {
		s.logger.Error("indicator query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	if values == nil {
		values = []domain.IndicatorValue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(values),
		"values": values,
	})
}

func queryOptions(r *http.Request) (store.QueryOptions, error) {
	q := r.URL.Query()
	opts := store.QueryOptions{
		Station:   q.Get("station"),
		Indicator: q.Get("indicator"),
		Limit:     100,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, badParam("limit", v)
		}
		opts.Limit = n
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, badParam("from", v)
		}
		opts.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, badParam("to", v)
		}
		opts.To = t
	}
	return opts, nil
}

type paramError struct {
	name, value string
}

func (e paramError) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}

func badParam(name, value string) error {
	return paramError{name: name, value: value}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
