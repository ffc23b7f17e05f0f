package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/loaders"
)

// DashboardHandler serves the dashboard figures and deadlines
type DashboardHandler struct {
	loaders *loaders.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(ld *loaders.Service) *DashboardHandler {
	return &DashboardHandler{loaders: ld}
}

// Stats godoc
// @Summary Dashboard counters
// @Description Active jobs, pending quotes, unpaid invoices, client count and the month's revenue.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} loaders.DashboardStats
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.loaders.Dashboard(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Deadlines godoc
// @Summary Upcoming deadlines
// @Description Invoices falling due and jobs ending in the next 30 days.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} loaders.Deadline
// @Router /deadlines [get]
func (h *DashboardHandler) Deadlines(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	deadlines, err := h.loaders.UpcomingDeadlines(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, deadlines)
}
