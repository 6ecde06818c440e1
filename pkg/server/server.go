// Package server exposes the parser and analytics engine over an HTTP JSON
// API for dashboard front ends.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Service is the HTTP API.
type Service struct {
	cfg      *config.Config
	parser   *parser.Parser
	detector *detector.Detector

	router *gin.Engine
	server *http.Server
}

// New creates the service and registers its routes.
func New(cfg *config.Config) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
	)

	s := &Service{
		cfg:      cfg,
		parser:   parser.New(parser.WithFilter(cfg.SystemFilter())),
		detector: detector.New(),
		router:   router,
	}

	s.initRouter()
	return s
}

func (s *Service) initRouter() {
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	api := s.router.Group("/api/v1", s.uploadLimitMiddleware())
	{
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/participants", s.handleParticipants)
		api.POST("/detect", s.handleDetect)
	}
}

// Router returns the HTTP handler.
func (s *Service) Router() *gin.Engine {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Service) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Server.Addr).Msg("Starting HTTP server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Service) uploadLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)
		c.Next()
	}
}
