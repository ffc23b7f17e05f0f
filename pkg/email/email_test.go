package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/models"
)

func TestNewSender(t *testing.T) {
	t.Run("Console without credentials", func(t *testing.T) {
		s, err := NewSender(Config{FromEmail: "billing@voltflow.test", FromName: "VoltFlow"})
		require.NoError(t, err)
		assert.Equal(t, "console", s.Name())
	})

	t.Run("SendGrid with API key", func(t *testing.T) {
		s, err := NewSender(Config{FromEmail: "billing@voltflow.test", SendGridAPIKey: "SG.test-key"})
		require.NoError(t, err)
		assert.Equal(t, "sendgrid", s.Name())
	})

	t.Run("SMTP wins when host is set", func(t *testing.T) {
		s, err := NewSender(Config{FromEmail: "billing@voltflow.test", SMTPHost: "smtp.voltflow.test", SMTPPort: 465, SendGridAPIKey: "SG.x"})
		require.NoError(t, err)
		assert.Equal(t, "smtp", s.Name())
	})
}

func TestConsoleSender(t *testing.T) {
	s := NewConsoleSender(Config{FromEmail: "billing@voltflow.test"})
	assert.NoError(t, s.Send(context.Background(), Message{ToEmail: "a@x.com", Subject: "hi"}))
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestSMTPSender_Build(t *testing.T) {
	s, err := NewSMTPSender(Config{SMTPHost: "smtp.voltflow.test", SMTPUser: "relay@voltflow.test", FromName: "VoltFlow"})
	require.NoError(t, err)
	assert.Equal(t, "relay@voltflow.test", s.fromEmail)

	m, err := s.build(Message{ToEmail: "a@x.com", ToName: "Acme", Subject: "Invoice #1 from VoltFlow", HTMLBody: "<p>hi</p>", PlainText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoice #1 from VoltFlow"}, m.GetGenHeader("Subject"))

	_, err = s.build(Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSendError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &SendError{Provider: "smtp", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "smtp send failed: connection refused", err.Error())

	err = &SendError{Provider: "sendgrid", Code: 401, Err: errors.New("unauthorized")}
	assert.Contains(t, err.Error(), "status 401")
}

func TestInvoiceMessage(t *testing.T) {
	due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{ID: 42, Amount: 1234.5, DueDate: &due, PaymentTerms: "Net 30", Notes: "Thanks <3"}
	c := &models.Client{Name: "Acme", Email: "a@x.com"}

	msg := InvoiceMessage(inv, c)
	assert.Equal(t, "Invoice #42 from VoltFlow", msg.Subject)
	assert.Equal(t, "a@x.com", msg.ToEmail)
	assert.Contains(t, msg.HTMLBody, "$1234.50")
	assert.Contains(t, msg.HTMLBody, "Jul 1, 2024")
	assert.Contains(t, msg.HTMLBody, "Net 30")
	assert.Contains(t, msg.HTMLBody, "Thanks &lt;3")
	assert.Contains(t, msg.PlainText, "Hi Acme,")
}

func TestQuoteMessage(t *testing.T) {
	q := &models.Quote{ID: 7, Amount: 500}
	msg := QuoteMessage(q, &models.Client{Email: "a@x.com"})
	assert.Equal(t, "Quote #7 – VoltFlow", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Hi there,")
	assert.Contains(t, msg.HTMLBody, "$500.00")
	assert.Contains(t, msg.HTMLBody, "N/A")
	assert.NotContains(t, msg.HTMLBody, "<em>")
}

func TestSMSBodies(t *testing.T) {
	inv := &models.Invoice{ID: 3, Amount: 99.99}
	body := InvoiceSMS(inv, &models.Client{Name: "Beta"})
	assert.Contains(t, body, "Hi Beta!")
	assert.Contains(t, body, "$99.99")
	assert.Contains(t, body, "Payment terms apply")
	assert.NotContains(t, body, "Note:")

	body = QuoteSMS(&models.Quote{ID: 8, Amount: 10, Notes: "Includes permit"}, nil)
	assert.Contains(t, body, "Hi there!")
	assert.Contains(t, body, "Quote #8")
	assert.Contains(t, body, "Note: Includes permit")
}
