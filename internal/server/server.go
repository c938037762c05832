// Package server exposes the table pipeline over HTTP for previews and API
// consumers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tablegen "github.com/goliatone/go-tablegen"
	"github.com/goliatone/go-tablegen/internal/app"
	"github.com/goliatone/go-tablegen/internal/logging"
)

// Server is the tablegen HTTP server.
type Server struct {
	app    *app.App
	router *chi.Mux
	server *http.Server
	logger func(context.Context) *slog.Logger
}

// New builds the router over a wired app.
func New(a *app.App) *Server {
	s := &Server{
		app:    a,
		router: chi.NewRouter(),
		logger: logging.WithBase(a.Logger),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	if timeout := s.app.Config.Server.RequestTimeout.Duration; timeout > 0 {
		s.router.Use(middleware.Timeout(timeout))
	}
}

func (s *Server) setupRoutes() {
	runtime := http.StripPrefix("/runtime/", http.FileServerFS(tablegen.RuntimeAssetsFS()))
	s.router.Handle("/runtime/*", runtime)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/tables", s.handleListTables)
	s.router.Get("/tables/{tableType}", s.handleSampleTable)
	s.router.Post("/tables/{tableType}", s.handlePostedTable)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Get("/classify", s.handleClassify)
	})

	if s.app.Metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.app.Metrics, promhttp.HandlerOpts{}))
	}
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	cfg := s.app.Config.Server
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  60 * time.Second,
	}
	s.app.Logger.Info("starting server", "addr", cfg.Addr())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
