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
	"github.com/voltflow/crm/pkg/notify"
	"github.com/voltflow/crm/pkg/store"
)

// QuoteHandler handles quote endpoints
type QuoteHandler struct {
	store      *store.Store
	loaders    *loaders.Service
	lifecycle  *lifecycle.Service
	conversion *conversion.Service
	notify     *notify.Service
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(st *store.Store, ld *loaders.Service, lc *lifecycle.Service, conv *conversion.Service, n *notify.Service) *QuoteHandler {
	return &QuoteHandler{store: st, loaders: ld, lifecycle: lc, conversion: conv, notify: n}
}

func quoteFromRequest(req models.QuoteRequest) *models.Quote {
	return &models.Quote{
		ClientID:   req.ClientID,
		JobID:      req.JobID,
		Amount:     req.Amount,
		Status:     models.QuoteStatus(req.Status),
		ValidUntil: req.ValidUntil,
		Terms:      req.Terms,
		Notes:      req.Notes,
	}
}

// List godoc
// @Summary List quotes
// @Description Quotes page with the actions available on each row.
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "draft, sent, accepted, rejected or all"
// @Success 200 {object} loaders.QuotesPage
// @Router /quotes [get]
func (h *QuoteHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.loaders.Quotes(ctx, pageQuery(c))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create a quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuoteRequest true "Quote"
// @Success 201 {object} models.Quote
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /quotes [post]
func (h *QuoteHandler) Create(c echo.Context) error {
	var req models.QuoteRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	quote, err := h.store.Quotes().Create(ctx, quoteFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, quote)
}

// QuoteDetail is a quote plus whether it has been invoiced
type QuoteDetail struct {
	*models.Quote
	HasInvoice bool `json:"hasInvoice"`
}

// Get godoc
// @Summary Get quote by ID
// @Description Includes whether the quote has been invoiced.
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 200 {object} handlers.QuoteDetail
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Router /quotes/{id} [get]
func (h *QuoteHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	quote, err := h.store.Quotes().Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	has, err := h.conversion.HasInvoice(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, QuoteDetail{Quote: quote, HasInvoice: has})
}

// Update godoc
// @Summary Update a quote
// @Description Omitting status keeps the stored one; a new status goes through the transition policy.
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Param request body models.QuoteRequest true "Quote"
// @Success 200 {object} models.Quote
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.QuoteRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	q := quoteFromRequest(req)
	q.Status = ""
	return updateEntity(c, h.lifecycle, models.EntityQuote, id, req.Status, func(ctx context.Context) error {
		_, err := h.store.Quotes().Update(ctx, id, q)
		return err
	}, h.store.Quotes().Get)
}

// Delete godoc
// @Summary Delete a quote
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Quotes().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Quote")
}

// UpdateStatus godoc
// @Summary Change a quote's status
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} lifecycle.Change
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(c echo.Context) error {
	return changeStatus(c, h.lifecycle, models.EntityQuote)
}

// CreateInvoice godoc
// @Summary Invoice an accepted quote
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 201 {object} models.Invoice
// @Failure 409 {object} models.ErrorResponse "Quote not accepted or already invoiced"
// @Router /quotes/{id}/invoice [post]
func (h *QuoteHandler) CreateInvoice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := h.conversion.CreateInvoiceFromQuote(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}

// ConvertToJob godoc
// @Summary Create a job from an accepted quote
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 201 {object} models.Job
// @Failure 409 {object} models.ErrorResponse "Quote not accepted"
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Router /quotes/{id}/job [post]
func (h *QuoteHandler) ConvertToJob(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	job, err := h.conversion.ConvertQuoteToJob(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, job)
}

// Send godoc
// @Summary E-mail a quote
// @Description Sends the quote to the client e-mail and marks it sent.
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 200 {object} models.SendResponse
// @Failure 400 {object} models.ErrorResponse "Client e-mail missing"
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Failure 502 {object} models.ErrorResponse "Mail transport failed"
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.notify.SendQuoteEmail(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SendResponse{OK: true})
}

// SendSMS godoc
// @Summary Text a quote
// @Description The status is not changed.
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Quote ID"
// @Success 200 {object} models.SendResponse
// @Failure 400 {object} models.ErrorResponse "Client phone number missing"
// @Failure 404 {object} models.ErrorResponse "Quote not found"
// @Failure 502 {object} models.ErrorResponse "SMS provider failed or not configured"
// @Router /quotes/{id}/sms [post]
func (h *QuoteHandler) SendSMS(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	receipt, err := h.notify.SendQuoteSMS(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SendResponse{OK: true, MessageSID: receipt.MessageSID, To: receipt.To})
}
