package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose reachability can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler creates a health handler; cache may be nil
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Root godoc
// @Summary Service banner
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "voltflow-crm",
		"status":  "ok",
	})
}

// Health godoc
// @Summary Health check
// @Description Checks the database and, when configured, redis
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	out := map[string]string{"status": "healthy", "database": "ok"}
	code := http.StatusOK

	if h.db == nil || h.db.Ping(ctx) != nil {
		out["database"] = "unreachable"
		out["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		out["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			out["cache"] = "unreachable"
			out["status"] = "degraded"
		}
	}

	return c.JSON(code, out)
}
