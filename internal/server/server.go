// Package server exposes the translation gateway and cache maintenance over
// HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZaguanLabs/gophrase"
	"github.com/ZaguanLabs/gophrase/internal/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Translator is the gateway the server delegates to.
type Translator interface {
	Translate(ctx context.Context, phrase string, direction gophrase.Direction) (*gophrase.Result, error)
	TranslateBatch(ctx context.Context, phrases []string, direction gophrase.Direction, concurrency int) ([]*gophrase.Result, error)
}

// Cache is the maintenance surface of the phrase cache.
type Cache interface {
	Size() int
	Expiration() time.Duration
	Trim(ctx context.Context) (int, error)
	Remove(ctx context.Context, phrase string) (bool, error)
}

// Server wraps an echo instance with the gophrase routes.
type Server struct {
	echo       *echo.Echo
	translator Translator
	cache      Cache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables request instrumentation and the /metrics route.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New builds the server and registers all routes.
func New(translator Translator, cache Cache, opts ...Option) *Server {
	s := &Server{
		translator: translator,
		cache:      cache,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.requestLogger())
	if s.metrics != nil {
		e.Use(s.instrument())
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.GET("/healthz", s.health)

	api := e.Group("/api")
	api.POST("/translate", s.translate)
	api.POST("/translate/batch", s.translateBatch)
	api.GET("/cache/stats", s.stats)
	api.POST("/cache/trim", s.trim)
	api.DELETE("/cache/entries", s.remove)

	s.echo = e
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and blocks until the server stops. A graceful
// Shutdown makes Start return nil.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "module", "http", "action", "listen", "result", "ok", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) updateCacheGauge() {
	if s.metrics != nil {
		s.metrics.SetCacheEntries(s.cache.Size())
	}
}
