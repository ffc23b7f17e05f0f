package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	store     *store.Store
	loaders   *loaders.Service
	lifecycle *lifecycle.Service
}

// NewClientHandler creates a new client handler
func NewClientHandler(st *store.Store, ld *loaders.Service, lc *lifecycle.Service) *ClientHandler {
	return &ClientHandler{store: st, loaders: ld, lifecycle: lc}
}

func clientFromRequest(req models.ClientRequest) *models.Client {
	return &models.Client{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Status:         models.ClientStatus(req.Status),
		EstimatedValue: req.EstimatedValue,
		Source:         req.Source,
		AssignedTo:     req.AssignedTo,
		Notes:          req.Notes,
	}
}

// List godoc
// @Summary List clients
// @Description Clients page with flow status and counts.
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "active, inactive or all"
// @Success 200 {object} loaders.ClientsPage
// @Router /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.loaders.Clients(ctx, pageQuery(c))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ClientRequest true "Client"
// @Success 201 {object} models.Client
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req models.ClientRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := h.store.Clients().Create(ctx, clientFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// Get godoc
// @Summary Get client by ID
// @Description Client with its quotes, jobs and invoices.
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Client ID"
// @Success 200 {object} loaders.ClientDetail
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.loaders.Client(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update godoc
// @Summary Update a client
// @Description Omitting status keeps the stored one; a new status goes through the transition policy.
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Client ID"
// @Param request body models.ClientRequest true "Client"
// @Success 200 {object} models.Client
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.ClientRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	cl := clientFromRequest(req)
	cl.Status = ""
	return updateEntity(c, h.lifecycle, models.EntityClient, id, req.Status, func(ctx context.Context) error {
		_, err := h.store.Clients().Update(ctx, id, cl)
		return err
	}, h.store.Clients().Get)
}

// Delete godoc
// @Summary Delete a client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Client ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Clients().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Client")
}

// UpdateStatus godoc
// @Summary Change a client's status
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Client ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} lifecycle.Change
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /clients/{id}/status [patch]
func (h *ClientHandler) UpdateStatus(c echo.Context) error {
	return changeStatus(c, h.lifecycle, models.EntityClient)
}
