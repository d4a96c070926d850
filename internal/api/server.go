// Package api exposes the curated content over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// ContentService is the selection behaviour the handlers need.
type ContentService interface {
	SelectDaily(ctx context.Context, articleCount, videoCount int) (domain.Bundle, error)
	SelectByTags(ctx context.Context, tags []string, articleCount, videoCount int) (domain.TagBundle, error)
}

// NewsletterService sends the tag newsletter.
type NewsletterService interface {
	Send(ctx context.Context, email string, tags []string) error
}

// Deps wires the services behind the routes.
type Deps struct {
	Content    ContentService
	Newsletter NewsletterService
	// DailyArticles and DailyVideos size GET /api/content when no query is given.
	DailyArticles int
	DailyVideos   int
}

// Server owns the HTTP listener and routes.
type Server struct {
	cfg     config.ServerConfig
	deps    Deps
	logger  *slog.Logger
	handler http.Handler
}

// NewServer registers the routes behind the shared request handling.
func NewServer(cfg config.ServerConfig, deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if deps.DailyArticles <= 0 {
		deps.DailyArticles = 2
	}
	if deps.DailyVideos <= 0 {
		deps.DailyVideos = 2
	}

	s := &Server{cfg: cfg, deps: deps, logger: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/content", s.handleDaily)
	mux.HandleFunc("POST /api/content", s.handleTags)
	mux.HandleFunc("POST /api/send-newsletter", s.handleNewsletter)

	s.handler = s.wrap(mux)
	return s
}

// Handler returns the root handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
