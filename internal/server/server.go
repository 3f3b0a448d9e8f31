package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware = func(http.Handler) http.Handler

// Server serves one editor and an optional catalog.
type Server struct {
	editor  *editor.Editor
	catalog services.Catalog
	logger  *log.Logger
}

// NewServer creates a Server. A nil catalog disables /catalog/search.
func NewServer(e *editor.Editor, catalog services.Catalog, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Server{editor: e, catalog: catalog, logger: shared.WithLogger(logger, "component", "server")}
}

// Router builds the chi router with the given middlewares applied in order.
func (s *Server) Router(middlewares ...Middleware) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/playlist", func(r chi.Router) {
		r.Get("/", s.handleGetPlaylist)
		r.Post("/tracks", s.handleAddTrack)
		r.Post("/tracks/random", s.handleAddRandomTrack)
		r.Delete("/tracks/{index}", s.handleDeleteTrack)
		r.Post("/clear", s.handleClear)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
	})

	r.Get("/catalog/search", s.handleSearch)

	return r
}

// RequestLogger logs method, path, status and duration of each request.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// ListenAndServe serves handler on addr until ctx is canceled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
