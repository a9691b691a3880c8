package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"harbor/internal/infra/gateway"
	"harbor/internal/infra/metrics"
	"harbor/internal/session"
)

// SystemHandler serves health, metrics and, with the in-memory gateway, blob downloads.
type SystemHandler struct {
	sessions *session.Manager
	metrics  *metrics.Metrics
	gateway  *gateway.Gateway
}

// NewSystemHandler is the constructor for SystemHandler, injected by Fx.
func NewSystemHandler(sessions *session.Manager, m *metrics.Metrics, gw *gateway.Gateway) *SystemHandler {
	return &SystemHandler{sessions: sessions, metrics: m, gateway: gw}
}

// HealthCheck reports liveness and the number of live sessions.
func (h *SystemHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// Metrics exposes the Prometheus registry.
func (h *SystemHandler) Metrics(c echo.Context) error {
	h.metrics.Handler().ServeHTTP(c.Response(), c.Request())

	return nil
}

// Blob serves an object stored by the in-memory gateway.
func (h *SystemHandler) Blob(c echo.Context) error {
	if h.gateway.Memory == nil {
		return echo.ErrNotFound
	}

	path, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.ErrNotFound
	}

	contentType, data, ok := h.gateway.Memory.Blob(path)
	if !ok {
		return echo.ErrNotFound
	}

	return c.Blob(http.StatusOK, contentType, data)
}
