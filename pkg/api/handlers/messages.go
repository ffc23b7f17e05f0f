package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/notify"
)

// MessageHandler reports on messages sent to clients
type MessageHandler struct {
	notify *notify.Service
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(n *notify.Service) *MessageHandler {
	return &MessageHandler{notify: n}
}

// SMSStatus godoc
// @Summary Delivery status of a text message
// @Description Looks up a message by the sid returned from a quote or invoice SMS send.
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param sid path string true "Message sid"
// @Success 200 {object} sms.MessageStatus
// @Failure 502 {object} models.ErrorResponse "Provider error or not configured"
// @Router /sms/{sid} [get]
func (h *MessageHandler) SMSStatus(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.notify.SMSStatus(ctx, c.Param("sid"))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
