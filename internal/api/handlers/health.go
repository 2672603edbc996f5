// Package handlers implements the HTTP handlers of meli-lister: the HTML
// pages, the JSON API and the operational endpoints.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/meli-lister/internal/store"
)

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	store store.SessionStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s store.SessionStore) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the session backend is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}

// RegisterHealthRoutes registers the probe endpoints.
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}
