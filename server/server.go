// Package server wires the chat pipeline behind an HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/ai/llm"
	"github.com/hrygo/shopchat/ai/metrics"
	"github.com/hrygo/shopchat/ai/narrator"
	"github.com/hrygo/shopchat/internal/profile"
	"github.com/hrygo/shopchat/server/ops"
	"github.com/hrygo/shopchat/store"
)

// Server hosts the chat API over the three backing stores.
type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	registry   *ops.Registry
	dispatcher *ops.Dispatcher
	parser     *intent.Parser
	narrator   *narrator.Narrator
	exporter   *metrics.PrometheusExporter
}

// NewServer assembles the pipeline and registers the HTTP routes. The
// model service is optional: without an API key every query degrades to
// the default read intent.
func NewServer(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	var llmService llm.Service
	if instanceProfile.IsAIEnabled() {
		svc, err := llm.NewService(&llm.Config{
			Provider: instanceProfile.LLMProvider,
			Model:    instanceProfile.LLMModel,
			APIKey:   instanceProfile.LLMAPIKey,
			BaseURL:  instanceProfile.LLMBaseURL,
			Timeout:  instanceProfile.LLMTimeout,
		})
		if err != nil {
			slog.Warn("LLM service unavailable, queries fall back to the default read operation", "error", err)
		} else {
			slog.Info("LLM service initialized",
				"provider", instanceProfile.LLMProvider,
				"model", instanceProfile.LLMModel,
			)
			llmService = svc
		}
	}

	// An empty registry is not fatal: the server starts degraded, chat
	// answers 503, and an explicit refresh re-registers stores that have
	// come back.
	registry := ops.NewRegistry(storeInstance)
	if n := registry.Refresh(ctx); n == 0 {
		slog.Warn("no operations available, all backing stores are unreachable; serving degraded until a refresh succeeds")
	}

	s := &Server{
		e:          e,
		Profile:    instanceProfile,
		Store:      storeInstance,
		registry:   registry,
		dispatcher: ops.NewDispatcher(storeInstance),
		parser:     intent.NewParser(llmService, registry),
		narrator:   narrator.NewNarrator(llmService),
		exporter:   metrics.NewPrometheusExporter(metrics.DefaultConfig()),
	}

	apiV1 := e.Group("/api/v1")
	apiV1.POST("/chat", s.handleChat)
	apiV1.GET("/operations", s.handleListOperations)
	apiV1.POST("/operations/refresh", s.handleRefreshOperations)

	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(s.exporter))

	return s, nil
}

// Start begins serving in a background goroutine and returns immediately.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.e.Server.ReadTimeout = 30 * time.Second
	s.e.Server.WriteTimeout = 2 * time.Minute

	go func() {
		if err := s.e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests and closes the stores.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close stores", "error", err)
	}
	slog.Info("server shutdown complete")
}

func (s *Server) handleListOperations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"operations": s.registry.List(),
		"default":    s.registry.DefaultOperation(),
	})
}

func (s *Server) handleRefreshOperations(c echo.Context) error {
	n := s.registry.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"registered": n,
		"operations": s.registry.Names(),
	})
}

func (s *Server) handleHealthz(c echo.Context) error {
	ctx := c.Request().Context()
	stores := map[string]func(context.Context) error{
		"customers": s.Store.PingCustomers,
		"products":  s.Store.PingProducts,
		"sales":     s.Store.PingSales,
	}

	status := http.StatusOK
	healthy := 0
	report := make(map[string]string, len(stores))
	for name, ping := range stores {
		if err := ping(ctx); err != nil {
			report[name] = err.Error()
			continue
		}
		report[name] = "ok"
		healthy++
	}
	if healthy == 0 {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"version": s.Profile.Version,
		"stores":  report,
	})
}
