// Package server provides the HTTP API for docsmith.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docsmith/internal/engine"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/task"
	"github.com/fyrsmithlabs/docsmith/internal/webhook"
)

// Server exposes documentation tasks over HTTP.
type Server struct {
	echo    *echo.Echo
	runner  webhook.TaskRunner
	logger  *logging.Logger
	config  *Config
	spaceID string
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the HTTP server. The webhook handler and Prometheus
// gatherer are optional; pass nil to leave those routes unregistered.
func NewServer(runner webhook.TaskRunner, hook *webhook.Handler, gatherer prometheus.Gatherer, spaceID string, logger *logging.Logger, cfg *Config) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("task runner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8900,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		runner:  runner,
		logger:  logger.Named("server"),
		config:  cfg,
		spaceID: spaceID,
	}

	s.registerRoutes(hook, gatherer)

	return s, nil
}

func (s *Server) registerRoutes(hook *webhook.Handler, gatherer prometheus.Gatherer) {
	s.echo.GET("/health", s.handleHealth)

	if gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	if hook != nil {
		s.echo.POST("/webhook", hook.Handle)
	}

	v1 := s.echo.Group("/api/v1")
	v1.POST("/docs/generate", s.handleGenerate)
	v1.POST("/docs/update", s.handleUpdate)
}

// GenerateRequest is the request body for POST /api/v1/docs/generate.
type GenerateRequest struct {
	FilePath     string `json:"file_path"`
	SpaceID      string `json:"space_id"`
	ParentPageID string `json:"parent_page_id"`
}

// UpdateRequest is the request body for POST /api/v1/docs/update.
type UpdateRequest struct {
	CommitID string `json:"commit_id"`
	SpaceID  string `json:"space_id"`
	PageID   string `json:"page_id"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleGenerate runs a Generate task synchronously and returns its outcome.
func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SpaceID == "" {
		req.SpaceID = s.spaceID
	}

	t := task.NewGenerate(req.SpaceID, req.FilePath, req.ParentPageID)
	return s.runTask(c, t)
}

// handleUpdate runs an Update task synchronously and returns its outcome.
func (s *Server) handleUpdate(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SpaceID == "" {
		req.SpaceID = s.spaceID
	}

	t := task.NewUpdate(req.SpaceID, req.CommitID, req.PageID)
	return s.runTask(c, t)
}

func (s *Server) runTask(c echo.Context, t task.DocumentationTask) error {
	ctx := c.Request().Context()

	outcome, err := s.runner.Run(ctx, t)
	if err != nil {
		s.logger.Warn(ctx, "task rejected or failed",
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, task.ErrInvalidTask), errors.Is(err, task.ErrInvalidReference):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrUnavailable):
			return echo.NewHTTPError(http.StatusBadGateway, "reasoning engine unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "task failed")
		}
	}

	return c.JSON(http.StatusOK, outcome)
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(ctx, "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
