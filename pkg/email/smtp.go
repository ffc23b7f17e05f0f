package email

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"
)

// SMTPSender submits messages to an SMTP relay
type SMTPSender struct {
	client    *mail.Client
	fromEmail string
	fromName  string
}

// NewSMTPSender creates an SMTP sender. Port 465 uses implicit TLS, any other
// port upgrades with STARTTLS when the server offers it.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(15 * time.Second),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	from := cfg.FromEmail
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPSender{client: client, fromEmail: from, fromName: cfg.FromName}, nil
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send builds a multipart message and submits it
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return &SendError{Provider: s.Name(), Err: err}
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	if msg.ToEmail == "" {
		return nil, ErrNoRecipient
	}
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.ToEmail); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	if msg.PlainText != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.PlainText)
	}
	return m, nil
}
