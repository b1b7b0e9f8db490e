// Package server exposes goal networks over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness and build version
//	GET  /network                  the caller's network, task goals excluded
//	PUT  /network/{id}/position    store one goal position (rate limited)
//	POST /network/layout           lay out, persist and return the network
//	POST /network/place            position for one new node
//
// The caller is identified by the X-User-ID header, falling back to the
// configured default user. Authentication happens in front of this server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/goalnet/internal/config"
	"github.com/matzehuels/goalnet/pkg/pipeline"
)

// UserHeader carries the id of the requesting user.
const UserHeader = "X-User-ID"

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.ServerConfig
	logger   *log.Logger
	limiters *limiterSet
	router   chi.Router
}

// New creates a server that reads and writes through runner.Store.
func New(runner *pipeline.Runner, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		logger:   logger,
		limiters: newLimiterSet(cfg.RateLimit, cfg.Burst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/network", func(r chi.Router) {
		r.Get("/", s.handleGetNetwork)
		r.With(s.rateLimit).Put("/{id}/position", s.handleUpdatePosition)
		r.Post("/layout", s.handleLayout)
		r.Post("/place", s.handlePlace)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// Handler returns the fully-wrapped http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
