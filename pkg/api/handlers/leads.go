package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/conversion"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	store      *store.Store
	loaders    *loaders.Service
	lifecycle  *lifecycle.Service
	conversion *conversion.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(st *store.Store, ld *loaders.Service, lc *lifecycle.Service, conv *conversion.Service) *LeadHandler {
	return &LeadHandler{store: st, loaders: ld, lifecycle: lc, conversion: conv}
}

func leadFromRequest(req models.LeadRequest) *models.Lead {
	return &models.Lead{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Source:         req.Source,
		Status:         models.LeadStatus(req.Status),
		EstimatedValue: req.EstimatedValue,
		Notes:          req.Notes,
		AssignedTo:     req.AssignedTo,
	}
}

// List godoc
// @Summary List leads
// @Description Leads page with per-status counts. Filters: search, status.
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} loaders.LeadsPage
// @Router /leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.loaders.Leads(ctx, pageQuery(c))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LeadRequest true "Lead"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Router /leads [post]
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.LeadRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	lead, err := h.store.Leads().Create(ctx, leadFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// Get godoc
// @Summary Get lead by ID
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	lead, err := h.store.Leads().Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Update godoc
// @Summary Update a lead
// @Description Omitting status keeps the stored one; a new status goes through the transition policy.
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Lead ID"
// @Param request body models.LeadRequest true "Lead"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.LeadRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	l := leadFromRequest(req)
	l.Status = ""
	return updateEntity(c, h.lifecycle, models.EntityLead, id, req.Status, func(ctx context.Context) error {
		_, err := h.store.Leads().Update(ctx, id, l)
		return err
	}, h.store.Leads().Get)
}

// Delete godoc
// @Summary Delete a lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Lead ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Leads().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Lead")
}

// UpdateStatus godoc
// @Summary Change a lead's status
// @Description Setting qualified converts the lead into a client when auto conversion is on.
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Lead ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} lifecycle.Change
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	return changeStatus(c, h.lifecycle, models.EntityLead)
}

// BulkStatus godoc
// @Summary Change the status of several leads
// @Description Rows that fail are listed under failed; the returned page reflects stored state.
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BulkStatusRequest true "Lead ids and status"
// @Success 200 {object} loaders.LeadsBulkResult
// @Failure 400 {object} models.ErrorResponse
// @Router /leads/bulk/status [post]
func (h *LeadHandler) BulkStatus(c echo.Context) error {
	var req models.BulkStatusRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.loaders.BulkLeadStatus(ctx, req.IDs, req.Status, func(ctx context.Context, id int) (string, error) {
		change, err := h.lifecycle.ChangeStatus(ctx, models.EntityLead, id, req.Status)
		if err != nil {
			return "", err
		}
		return change.To, nil
	})
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// BulkDelete godoc
// @Summary Delete several leads
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BulkDeleteRequest true "Lead ids"
// @Success 200 {object} loaders.LeadsBulkResult
// @Failure 400 {object} models.ErrorResponse
// @Router /leads/bulk/delete [post]
func (h *LeadHandler) BulkDelete(c echo.Context) error {
	var req models.BulkDeleteRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.loaders.BulkDeleteLeads(ctx, req.IDs)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Convert godoc
// @Summary Convert a lead into a client
// @Description Each call creates a new client.
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Lead ID"
// @Success 201 {object} models.Client
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := h.conversion.ConvertLeadToClient(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// Stats godoc
// @Summary Lead funnel counts
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} conversion.Stats
// @Router /leads/stats [get]
func (h *LeadHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.conversion.ConversionStats(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// DeleteClientByLead godoc
// @Summary Delete the client created from a lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param leadId path integer true "Lead ID"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse "Invalid leadId"
// @Router /clients/by-lead/{leadId} [delete]
func (h *LeadHandler) DeleteClientByLead(c echo.Context) error {
	leadID, err := parseID(c, "leadId")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	removed, err := h.conversion.DeleteClientByLeadID(ctx, leadID)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": removed})
}

// changeStatus is the shared PATCH /:id/status handler
func changeStatus(c echo.Context, lc *lifecycle.Service, entity string) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.StatusUpdateRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	change, err := lc.ChangeStatus(ctx, entity, id, req.Status)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, change)
}

// updateEntity runs edit for the non-status fields while status goes through
// the lifecycle service, then responds with the reloaded row
func updateEntity[T any](c echo.Context, lc *lifecycle.Service, entity string, id int, status string,
	edit func(context.Context) error, get func(context.Context, int) (*T, error)) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := lc.Update(ctx, entity, id, status, edit); err != nil {
		return errors.FromDomain(c, err)
	}
	out, err := get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
