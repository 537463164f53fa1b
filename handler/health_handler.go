// ABOUTME: This file implements the health endpoint
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports liveness of a backing store. A nil Pinger means the
// service runs without that store and it is excluded from the report.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /api/v1/health.
type HealthHandler struct {
	db       Pinger
	adapters []string
}

func NewHealthHandler(db Pinger, adapters []string) *HealthHandler {
	return &HealthHandler{db: db, adapters: adapters}
}

// HealthResponse is the JSON health report.
type HealthResponse struct {
	Status   string   `json:"status"`
	Adapters []string `json:"adapters"`
	Database string   `json:"database,omitempty"`
}

// HandleHealth reports service health. Archive unavailability degrades the
// status but does not fail the check; the fetch path works without it.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Adapters: h.adapters,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		} else {
			resp.Database = "ok"
		}
	}

	return c.JSON(http.StatusOK, resp)
}
