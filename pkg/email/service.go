package email

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Message is one outbound e-mail
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	HTMLBody  string
	PlainText string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Config selects and configures a transport
type Config struct {
	FromEmail string
	FromName  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	SendGridAPIKey string
}

// ErrNoRecipient is returned for messages without a destination address
var ErrNoRecipient = errors.New("email: recipient address is empty")

// SendError is a transport failure, carrying the provider status when known
type SendError struct {
	Provider string
	Code     int
	Err      error
}

func (e *SendError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s send failed (status %d): %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s send failed: %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewSender picks the SMTP relay when a host is set, SendGrid when an API key
// is set, and the console otherwise
func NewSender(cfg Config) (Sender, error) {
	switch {
	case cfg.SMTPHost != "":
		s, err := NewSMTPSender(cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Email service initialized with SMTP relay %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		return s, nil
	case cfg.SendGridAPIKey != "":
		log.Printf("✅ Email service initialized with SendGrid")
		return NewSendGridSender(cfg), nil
	default:
		log.Printf("⚠️  Email service in console-only mode (set SMTP_HOST or SENDGRID_API_KEY for production)")
		return NewConsoleSender(cfg), nil
	}
}

// ConsoleSender logs messages instead of sending them
type ConsoleSender struct {
	fromEmail string
	fromName  string
}

// NewConsoleSender creates a development sender
func NewConsoleSender(cfg Config) *ConsoleSender {
	return &ConsoleSender{fromEmail: cfg.FromEmail, fromName: cfg.FromName}
}

func (s *ConsoleSender) Name() string { return "console" }

// Send logs the message headers
func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return ErrNoRecipient
	}
	log.Printf("📧 [EMAIL] %s", msg.Subject)
	log.Printf("   To: %s <%s>", msg.ToName, msg.ToEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}
