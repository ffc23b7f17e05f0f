package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/notify"
	"github.com/voltflow/crm/pkg/store"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	store     *store.Store
	loaders   *loaders.Service
	lifecycle *lifecycle.Service
	notify    *notify.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(st *store.Store, ld *loaders.Service, lc *lifecycle.Service, n *notify.Service) *InvoiceHandler {
	return &InvoiceHandler{store: st, loaders: ld, lifecycle: lc, notify: n}
}

// invoiceFromRequest keeps only the line item total
func invoiceFromRequest(req models.InvoiceRequest) *models.Invoice {
	return &models.Invoice{
		ClientID:     req.ClientID,
		JobID:        req.JobID,
		QuoteID:      req.QuoteID,
		Amount:       req.Total(),
		Status:       models.InvoiceStatus(req.Status),
		DueDate:      req.DueDate,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
	}
}

// List godoc
// @Summary List invoices
// @Description Invoices page with client and job, overdue days, counts and totals.
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches id, client or job title"
// @Param status query string false "draft, sent, paid, overdue or all"
// @Param overdue query string false "overdue or not"
// @Success 200 {object} loaders.InvoicesPage
// @Router /invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.loaders.Invoices(ctx, pageQuery(c))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create an invoice
// @Description Amount is the line item total when line items are given.
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InvoiceRequest true "Invoice"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req models.InvoiceRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := h.store.Invoices().Create(ctx, invoiceFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// Get godoc
// @Summary Get invoice by ID
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := h.store.Invoices().Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

// Update godoc
// @Summary Update an invoice
// @Description Omitting status keeps the stored one; a new status goes through the transition policy.
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Param request body models.InvoiceRequest true "Invoice"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.InvoiceRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	inv := invoiceFromRequest(req)
	inv.Status = ""
	return updateEntity(c, h.lifecycle, models.EntityInvoice, id, req.Status, func(ctx context.Context) error {
		_, err := h.store.Invoices().Update(ctx, id, inv)
		return err
	}, h.store.Invoices().Get)
}

// Delete godoc
// @Summary Delete an invoice
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Invoices().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Invoice")
}

// UpdateStatus godoc
// @Summary Change an invoice's status
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} lifecycle.Change
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	return changeStatus(c, h.lifecycle, models.EntityInvoice)
}

// Send godoc
// @Summary E-mail an invoice
// @Description Sends the invoice to the client's e-mail and marks it sent.
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Success 200 {object} models.SendResponse
// @Failure 400 {object} models.ErrorResponse "Client e-mail missing"
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Failure 502 {object} models.ErrorResponse "Mail transport failed"
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.notify.SendInvoiceEmail(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SendResponse{OK: true})
}

// SendSMS godoc
// @Summary Text an invoice
// @Description Sends the invoice summary to the client phone. The status is not changed.
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Invoice ID"
// @Success 200 {object} models.SendResponse
// @Failure 400 {object} models.ErrorResponse "Client phone number missing"
// @Failure 404 {object} models.ErrorResponse "Invoice not found"
// @Failure 502 {object} models.ErrorResponse "SMS provider failed or not configured"
// @Router /invoices/{id}/sms [post]
func (h *InvoiceHandler) SendSMS(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	receipt, err := h.notify.SendInvoiceSMS(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SendResponse{OK: true, MessageSID: receipt.MessageSID, To: receipt.To})
}
