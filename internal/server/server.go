// Package server exposes the ops HTTP API: health probes, Prometheus
// metrics and a small read-only JSON API over the game state. All writes
// go through Discord; this surface never mutates.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutien/tutienbot/internal/cultivation"
	"github.com/tutien/tutienbot/internal/database"
	"github.com/tutien/tutienbot/internal/logger"
	"github.com/tutien/tutienbot/internal/metrics"
	"github.com/tutien/tutienbot/internal/user"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	httpServer  *http.Server
	dbPool      database.Pool
	users       user.Service
	cultivation cultivation.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, dbPool database.Pool, users user.Service, cultivationService cultivation.Service) *Server {
	srv := &Server{
		dbPool:      dbPool,
		users:       users,
		cultivation: cultivationService,
	}

	r := chi.NewRouter()
	r.Use(AuthMiddleware(apiKey))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", srv.handleHealthz)
	r.Get("/readyz", srv.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userID}/status", srv.handleGetStatus)
		r.Get("/users/{userID}/inventory", srv.handleGetInventory)
		r.Get("/leaderboard", srv.handleGetLeaderboard)
	})

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return srv
}

// Start begins serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware tags each request with an id and logs its outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.FromContext(ctx).Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
