// Package server exposes the search service over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dshills/codesearch/internal/searcher"
)

// Server serves search queries over HTTP.
type Server struct {
	echo     *echo.Echo
	searcher *searcher.Searcher
	logger   *zap.Logger
	endpoint string
}

// New creates an HTTP server bound to the given searcher.
func New(s *searcher.Searcher, endpoint string, logger *zap.Logger) (*Server, error) {
	if s == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	srv := &Server{
		echo:     e,
		searcher: s,
		logger:   logger,
		endpoint: endpoint,
	}
	srv.registerRoutes()

	return srv, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/search", s.handleSearch)
	s.echo.GET("/healthz", s.handleHealth)
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleSearch answers GET /search?text=... with the matching snippets. A
// missing or empty text parameter is an empty search, not an error.
func (s *Server) handleSearch(c echo.Context) error {
	text := c.QueryParam("text")
	resp := s.searcher.Search(c.Request().Context(), text)
	return c.JSON(http.StatusOK, resp)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.endpoint))
	return s.echo.Start(s.endpoint)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
