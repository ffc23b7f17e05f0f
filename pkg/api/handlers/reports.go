package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/reports"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles marketing report endpoints
type ReportHandler struct {
	reports *reports.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(r *reports.Service) *ReportHandler {
	return &ReportHandler{reports: r}
}

// Channels godoc
// @Summary Channel report rows
// @Description Rows of a month ordered by channel; every row when month is absent.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "YYYY-MM"
// @Success 200 {array} models.ChannelReport
// @Failure 400 {object} models.ErrorResponse "Bad month"
// @Router /reports/channels [get]
func (h *ReportHandler) Channels(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.reports.Channels(ctx, c.QueryParam("month"))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Summary godoc
// @Summary Channel report summary
// @Description A month's rows with totals.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "YYYY-MM"
// @Success 200 {object} reports.ChannelSummary
// @Failure 400 {object} models.ErrorResponse "Bad month"
// @Router /reports/channels/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.reports.Summary(ctx, c.QueryParam("month"))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// GetChannel godoc
// @Summary Get channel report row
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Row ID"
// @Success 200 {object} models.ChannelReport
// @Failure 404 {object} models.ErrorResponse "Row not found"
// @Router /reports/channels/{id} [get]
func (h *ReportHandler) GetChannel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	row, err := h.reports.Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

// SaveChannel godoc
// @Summary Save channel report row
// @Description Creates or replaces the row of a month and channel.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChannelReportRequest true "Row"
// @Success 200 {object} models.ChannelReport
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /reports/channels [post]
func (h *ReportHandler) SaveChannel(c echo.Context) error {
	var req models.ChannelReportRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	row, err := h.reports.Save(ctx, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

// UpdateChannel godoc
// @Summary Update channel report row
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Row ID"
// @Param request body models.ChannelReportRequest true "Row"
// @Success 200 {object} models.ChannelReport
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Row not found"
// @Failure 409 {object} models.ErrorResponse "Month and channel already taken"
// @Router /reports/channels/{id} [put]
func (h *ReportHandler) UpdateChannel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.ChannelReportRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	row, err := h.reports.Update(ctx, id, req)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DeleteChannel godoc
// @Summary Delete channel report row
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Row ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Row not found"
// @Router /reports/channels/{id} [delete]
func (h *ReportHandler) DeleteChannel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reports.Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Channel report")
}

// Export godoc
// @Summary Export channel reports
// @Description Downloads the month as an xlsx workbook.
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "YYYY-MM"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse "Bad month"
// @Router /reports/channels/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	month := c.QueryParam("month")

	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.reports.Export(ctx, month)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", reports.ExportFilename(month)))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}

// LeadSources godoc
// @Summary Leads per source
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} reports.LeadSource
// @Router /reports/lead-sources [get]
func (h *ReportHandler) LeadSources(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	sources, err := h.reports.LeadSources(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, sources)
}
