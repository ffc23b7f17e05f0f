package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// TechnicianHandler handles technician endpoints
type TechnicianHandler struct {
	store *store.Store
}

// NewTechnicianHandler creates a new technician handler
func NewTechnicianHandler(st *store.Store) *TechnicianHandler {
	return &TechnicianHandler{store: st}
}

func technicianFromRequest(req models.TechnicianRequest) *models.Technician {
	return &models.Technician{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: models.TechnicianStatus(req.Status),
		Notes:  req.Notes,
	}
}

// List godoc
// @Summary List technicians
// @Tags Technicians
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Technician
// @Router /technicians [get]
func (h *TechnicianHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	techs, err := h.store.Technicians().List(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, techs)
}

// Create godoc
// @Summary Create a technician
// @Tags Technicians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TechnicianRequest true "Technician"
// @Success 201 {object} models.Technician
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /technicians [post]
func (h *TechnicianHandler) Create(c echo.Context) error {
	var req models.TechnicianRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := h.store.Technicians().Create(ctx, technicianFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, tech)
}

// Get godoc
// @Summary Get technician by ID
// @Tags Technicians
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Technician ID"
// @Success 200 {object} models.Technician
// @Failure 404 {object} models.ErrorResponse "Technician not found"
// @Router /technicians/{id} [get]
func (h *TechnicianHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := h.store.Technicians().Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, tech)
}

// Update godoc
// @Summary Update a technician
// @Description Omitting status keeps the stored one.
// @Tags Technicians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Technician ID"
// @Param request body models.TechnicianRequest true "Technician"
// @Success 200 {object} models.Technician
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Technician not found"
// @Router /technicians/{id} [put]
func (h *TechnicianHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.TechnicianRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tech, err := h.store.Technicians().Update(ctx, id, technicianFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, tech)
}

// Delete godoc
// @Summary Delete a technician
// @Tags Technicians
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Technician ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Technician not found"
// @Router /technicians/{id} [delete]
func (h *TechnicianHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Technicians().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Technician")
}
