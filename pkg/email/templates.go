package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/voltflow/crm/pkg/models"
)

// BrandName appears in subjects and signatures
const BrandName = "VoltFlow"

func greetingName(c *models.Client) string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return "there"
	}
	return c.Name
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}

// InvoiceMessage renders the invoice e-mail for a client
func InvoiceMessage(inv *models.Invoice, c *models.Client) Message {
	name := greetingName(c)
	terms := inv.PaymentTerms
	if terms == "" {
		terms = "Payment terms apply"
	}

	var notesHTML, notesText string
	if inv.Notes != "" {
		notesHTML = fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(inv.Notes))
		notesText = "\n" + inv.Notes + "\n"
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p>Please find your invoice below.</p>
			<p><strong>Amount:</strong> $%.2f</p>
			<p><strong>Due:</strong> %s</p>
			<p><strong>Terms:</strong> %s</p>
			%s
			<p>Best regards,<br/>%s Team</p>
		</body>
		</html>
	`, html.EscapeString(name), inv.Amount, formatDate(inv.DueDate), html.EscapeString(terms), notesHTML, BrandName)

	plainText := fmt.Sprintf(`Hi %s,

Please find your invoice below.

Amount: $%.2f
Due: %s
Terms: %s
%s
Best regards,
%s Team
`, name, inv.Amount, formatDate(inv.DueDate), terms, notesText, BrandName)

	return Message{
		ToEmail:   c.Email,
		ToName:    c.Name,
		Subject:   fmt.Sprintf("Invoice #%d from %s", inv.ID, BrandName),
		HTMLBody:  body,
		PlainText: plainText,
	}
}

// QuoteMessage renders the quote e-mail for a client
func QuoteMessage(q *models.Quote, c *models.Client) Message {
	name := greetingName(c)

	var extraHTML, extraText string
	if q.Terms != "" {
		extraHTML += fmt.Sprintf("<p><strong>Terms:</strong> %s</p>", html.EscapeString(q.Terms))
		extraText += "Terms: " + q.Terms + "\n"
	}
	if q.Notes != "" {
		extraHTML += fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(q.Notes))
		extraText += "\n" + q.Notes + "\n"
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p>Please find your quote below:</p>
			<p><strong>Amount:</strong> $%.2f</p>
			<p><strong>Valid until:</strong> %s</p>
			%s
			<p>Best regards,<br/>%s Team</p>
		</body>
		</html>
	`, html.EscapeString(name), q.Amount, formatDate(q.ValidUntil), extraHTML, BrandName)

	plainText := fmt.Sprintf(`Hi %s,

Please find your quote below:

Amount: $%.2f
Valid until: %s
%s
Best regards,
%s Team
`, name, q.Amount, formatDate(q.ValidUntil), extraText, BrandName)

	return Message{
		ToEmail:   c.Email,
		ToName:    c.Name,
		Subject:   fmt.Sprintf("Quote #%d – %s", q.ID, BrandName),
		HTMLBody:  body,
		PlainText: plainText,
	}
}

// InvoiceSMS renders the text message for an invoice
func InvoiceSMS(inv *models.Invoice, c *models.Client) string {
	terms := inv.PaymentTerms
	if terms == "" {
		terms = "Payment terms apply"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s!\n\n", greetingName(c))
	fmt.Fprintf(&b, "📄 Invoice from %s\n", BrandName)
	fmt.Fprintf(&b, "💰 Amount: $%.2f\n", inv.Amount)
	fmt.Fprintf(&b, "📅 Due: %s\n", formatDate(inv.DueDate))
	fmt.Fprintf(&b, "💳 %s\n", terms)
	if inv.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Note: %s\n", inv.Notes)
	}
	fmt.Fprintf(&b, "\nThank you for your business!\n- %s Team", BrandName)
	return b.String()
}

// QuoteSMS renders the text message for a quote
func QuoteSMS(q *models.Quote, c *models.Client) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s!\n\n", greetingName(c))
	fmt.Fprintf(&b, "📋 Quote from %s\n", BrandName)
	fmt.Fprintf(&b, "💰 Amount: $%.2f\n", q.Amount)
	fmt.Fprintf(&b, "📅 Valid until: %s\n", formatDate(q.ValidUntil))
	fmt.Fprintf(&b, "💼 Quote #%d\n", q.ID)
	if q.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Note: %s\n", q.Notes)
	}
	fmt.Fprintf(&b, "\nPlease contact us to discuss or accept this quote.\n- %s Team", BrandName)
	return b.String()
}
