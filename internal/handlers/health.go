package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/bus"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	bus bus.Bus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(b bus.Bus) *HealthHandler {
	return &HealthHandler{bus: b}
}

// Register registers health routes
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

// Health returns basic health status
func (h *HealthHandler) Health(c echo.Context) error {
	log := log.WithField("prefix", "HealthHandler")
	log.Debug("health check request received")

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready returns readiness status including event bus connectivity
func (h *HealthHandler) Ready(c echo.Context) error {
	log := log.WithField("prefix", "ReadyHandler")
	log.Debug("readiness check request received")

	if err := h.bus.HealthCheck(); err != nil {
		log.Errorf("event bus connection error: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "not ready",
			"error":  "event bus not accessible",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}
