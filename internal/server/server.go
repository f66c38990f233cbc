// Package server exposes the query pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/pipeline"
)

// Config holds listener settings.
type Config struct {
	Addr            string
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Answerer answers one query.
type Answerer interface {
	Answer(ctx context.Context, query string) (*pipeline.Answer, error)
}

// Server is the HTTP front end with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
	cfg    Config
}

// New builds the router and the underlying http.Server.
func New(cfg Config, answerer Answerer, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":5001"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	h := &handlers{answerer: answerer}
	router.POST("/query", h.query)
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
		cfg:    cfg,
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server",
			"address", s.server.Addr,
			"read_timeout", s.server.ReadTimeout,
			"write_timeout", s.server.WriteTimeout,
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server", "timeout", s.cfg.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("http server stopped gracefully")
	return nil
}
