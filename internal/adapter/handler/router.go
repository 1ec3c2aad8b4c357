package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/consult-review/pkg/config"
	"github.com/johnquangdev/consult-review/pkg/metrics"
)

// Router holds all handlers
type Router struct {
	cfg     *config.Config
	webhook *WebhookHandler
	metrics *metrics.Metrics
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, webhook *WebhookHandler, m *metrics.Metrics) *Router {
	return &Router{
		cfg:     cfg,
		webhook: webhook,
		metrics: m,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.POST("/webhook", rt.webhook.HandleZoomWebhook)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics.Handler()))
	}
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
