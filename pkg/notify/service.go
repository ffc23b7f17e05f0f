// Package notify delivers invoices and quotes to clients by e-mail or SMS and
// mirrors scheduled jobs into the calendar.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voltflow/crm/pkg/calendar"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/email"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/phone"
	"github.com/voltflow/crm/pkg/sms"
	"github.com/voltflow/crm/pkg/store"
)

// Channel labels used for metrics
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const twilioConfigMissing = "Twilio configuration missing. Please check environment variables."

// SMSReceipt is returned after a text message is accepted by the provider
type SMSReceipt struct {
	MessageSID string `json:"messageSid"`
	To         string `json:"to"`
}

// ScheduleResult is the outcome of scheduling a job
type ScheduleResult struct {
	Job     *models.Job `json:"job"`
	EventID string      `json:"eventId,omitempty"`
}

// Service sends client notifications
type Service struct {
	store    *store.Store
	mailer   email.Sender
	sms      sms.Provider
	smsFrom  string
	region   string
	calendar calendar.Scheduler
	metrics  *metrics.Metrics
	log      logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithMailer sets the e-mail transport
func WithMailer(m email.Sender) Option {
	return func(s *Service) { s.mailer = m }
}

// WithSMS sets the SMS provider and the sending number
func WithSMS(p sms.Provider, from string) Option {
	return func(s *Service) {
		s.sms = p
		s.smsFrom = from
	}
}

// WithPhoneRegion sets the region used to normalize local numbers
func WithPhoneRegion(region string) Option {
	return func(s *Service) {
		if region != "" {
			s.region = region
		}
	}
}

// WithCalendar sets the calendar scheduler
func WithCalendar(c calendar.Scheduler) Option {
	return func(s *Service) { s.calendar = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a notification service. Without options mail goes to the
// console, SMS is disabled and the calendar is a no-op.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		mailer:   email.NewConsoleSender(email.Config{}),
		sms:      sms.Disabled{},
		region:   phone.DefaultRegion,
		calendar: calendar.Noop{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendInvoiceEmail e-mails an invoice to its client and marks it sent
func (s *Service) SendInvoiceEmail(ctx context.Context, id int) (*models.Invoice, error) {
	inv, client, err := s.store.Invoices().GetWithClient(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Invoice")
	}
	if strings.TrimSpace(client.Email) == "" {
		return nil, domain.NewMissingContactChannelError("Client e-mail missing")
	}

	if err := s.mailer.Send(ctx, email.InvoiceMessage(inv, client)); err != nil {
		s.metrics.RecordNotification(ChannelEmail, models.EntityInvoice, false)
		s.log.Error("invoice email failed", "invoice_id", id, "error", err)
		return nil, s.mailError(err)
	}
	s.metrics.RecordNotification(ChannelEmail, models.EntityInvoice, true)

	if err := s.store.Invoices().UpdateStatus(ctx, id, models.InvoiceStatusSent); err != nil {
		return nil, err
	}
	inv.Status = models.InvoiceStatusSent
	s.log.Info("invoice emailed", "invoice_id", id, "to", client.Email)
	return inv, nil
}

// SendInvoiceSMS texts an invoice summary to its client. The invoice status
// is left unchanged.
func (s *Service) SendInvoiceSMS(ctx context.Context, id int) (*SMSReceipt, error) {
	inv, client, err := s.store.Invoices().GetWithClient(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Invoice")
	}
	return s.text(ctx, models.EntityInvoice, id, client, email.InvoiceSMS(inv, client))
}

// SendQuoteEmail e-mails a quote to its client and marks it sent
func (s *Service) SendQuoteEmail(ctx context.Context, id int) (*models.Quote, error) {
	q, client, err := s.store.Quotes().GetWithClient(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Quote")
	}
	if strings.TrimSpace(client.Email) == "" {
		return nil, domain.NewMissingContactChannelError("Client e-mail missing")
	}

	if err := s.mailer.Send(ctx, email.QuoteMessage(q, client)); err != nil {
		s.metrics.RecordNotification(ChannelEmail, models.EntityQuote, false)
		s.log.Error("quote email failed", "quote_id", id, "error", err)
		return nil, s.mailError(err)
	}
	s.metrics.RecordNotification(ChannelEmail, models.EntityQuote, true)

	if err := s.store.Quotes().UpdateStatus(ctx, id, models.QuoteStatusSent); err != nil {
		return nil, err
	}
	q.Status = models.QuoteStatusSent
	s.log.Info("quote emailed", "quote_id", id, "to", client.Email)
	return q, nil
}

// SendQuoteSMS texts a quote summary to its client
func (s *Service) SendQuoteSMS(ctx context.Context, id int) (*SMSReceipt, error) {
	q, client, err := s.store.Quotes().GetWithClient(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Quote")
	}
	return s.text(ctx, models.EntityQuote, id, client, email.QuoteSMS(q, client))
}

func (s *Service) text(ctx context.Context, entity string, id int, client *models.Client, body string) (*SMSReceipt, error) {
	if strings.TrimSpace(client.Phone) == "" {
		return nil, domain.NewMissingContactChannelError("Client phone number missing")
	}
	to, err := phone.NormalizePhone(client.Phone, s.region)
	if err != nil {
		return nil, domain.NewValidationError(sms.UserMessage(sms.CodeInvalidNumber, ""))
	}

	res, err := s.sms.SendSMS(ctx, to, s.smsFrom, body)
	if err != nil {
		s.metrics.RecordNotification(ChannelSMS, entity, false)
		s.log.Error("sms failed", "entity", entity, "id", id, "error", err)
		return nil, smsError(err)
	}
	s.metrics.RecordNotification(ChannelSMS, entity, true)
	s.log.Info("sms sent", "entity", entity, "id", id, "sid", res.SID)
	return &SMSReceipt{MessageSID: res.SID, To: to}, nil
}

// SMSStatus looks up the delivery state of a message sent earlier
func (s *Service) SMSStatus(ctx context.Context, sid string) (*sms.MessageStatus, error) {
	sid = strings.TrimSpace(sid)
	if sid == "" {
		return nil, domain.NewBadRequestError("Invalid message sid")
	}
	st, err := s.sms.GetMessageStatus(ctx, sid)
	if err != nil {
		s.log.Error("sms status lookup failed", "sid", sid, "error", err)
		return nil, smsError(err)
	}
	return st, nil
}

// ScheduleJob writes the job window and mirrors it into the calendar.
// Calendar failures are logged and counted but never returned.
func (s *Service) ScheduleJob(ctx context.Context, jobID int, start, end time.Time) (*ScheduleResult, error) {
	if end.Before(start) {
		return nil, domain.NewValidationError("End date must be after start date")
	}
	if err := s.store.Jobs().UpdateSchedule(ctx, jobID, start, end); err != nil {
		return nil, notFoundAs(err, "Job")
	}
	job, client, err := s.store.Jobs().GetWithClient(ctx, jobID)
	if err != nil {
		return nil, notFoundAs(err, "Job")
	}

	result := &ScheduleResult{Job: job}
	ev, err := s.calendar.CreateEvent(ctx, calendar.Event{
		Summary:     job.Title,
		Description: JobEventDescription(job, client),
		Start:       start,
	})
	switch {
	case errors.Is(err, calendar.ErrNotConfigured):
		s.log.Debug("calendar not configured, skipping event", "job_id", jobID)
	case err != nil:
		s.metrics.RecordCalendarFailure()
		s.log.Warn("calendar sync failed", "job_id", jobID, "error", err)
	default:
		result.EventID = ev.ID
	}
	return result, nil
}

// JobEventDescription renders the calendar description of a job
func JobEventDescription(job *models.Job, client *models.Client) string {
	location := client.Address
	if location == "" {
		location = job.ServiceAddress
	}
	return fmt.Sprintf("%s\n\nClient: %s\nLocation: %s", job.Description, client.Name, location)
}

// CreateEvent posts a free-standing calendar event
func (s *Service) CreateEvent(ctx context.Context, ev calendar.Event) (*calendar.Event, error) {
	created, err := s.calendar.CreateEvent(ctx, ev)
	if err != nil {
		s.metrics.RecordCalendarFailure()
		return nil, domain.NewExternalServiceError("google_calendar", 0, "Failed to create event", err)
	}
	return created, nil
}

// UpcomingEvents lists the next calendar events
func (s *Service) UpcomingEvents(ctx context.Context) ([]calendar.Event, error) {
	events, err := s.calendar.UpcomingEvents(ctx)
	if err != nil {
		return nil, domain.NewExternalServiceError("google_calendar", 0, "Failed to fetch events", err)
	}
	return events, nil
}

func (s *Service) mailError(err error) error {
	var se *email.SendError
	if errors.As(err, &se) {
		return domain.NewExternalServiceError(se.Provider, se.Code, "Failed to send email", err)
	}
	return domain.NewExternalServiceError(s.mailer.Name(), 0, "Failed to send email", err)
}

func smsError(err error) error {
	if errors.Is(err, sms.ErrNotConfigured) {
		return domain.NewExternalServiceError("twilio", 0, twilioConfigMissing, err)
	}
	var pe *sms.ProviderError
	if errors.As(err, &pe) {
		return domain.NewExternalServiceError("twilio", pe.Code, sms.UserMessage(pe.Code, pe.Message), err)
	}
	return domain.NewExternalServiceError("twilio", 0, sms.UserMessage(0, ""), err)
}

// notFoundAs renames a missing-row error after the requested resource
func notFoundAs(err error, resource string) error {
	if domain.IsNotFound(err) {
		return domain.NewNotFoundError(resource)
	}
	return err
}
