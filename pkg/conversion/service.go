package conversion

import (
	"context"
	"fmt"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// DefaultPaymentTerms is written on invoices created from quotes
const DefaultPaymentTerms = "Payment due within 30 days."

// Stats summarizes the lead funnel
type Stats struct {
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	New            int     `json:"new"`
	Contacted      int     `json:"contacted"`
	Qualified      int     `json:"qualified"`
	Lost           int     `json:"lost"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Service moves records down the Lead → Client → Quote → Job → Invoice chain
type Service struct {
	store          *store.Store
	metrics        *metrics.Metrics
	log            logger.Logger
	invoiceDueDays int
}

// NewService creates a conversion service
func NewService(st *store.Store, m *metrics.Metrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: st, metrics: m, log: log, invoiceDueDays: 30}
}

// WithInvoiceDueDays overrides the due date offset of generated invoices
func (s *Service) WithInvoiceDueDays(days int) *Service {
	if days > 0 {
		s.invoiceDueDays = days
	}
	return s
}

// ConvertLeadToClient creates a client from a lead and marks the lead
// converted. Both writes share one transaction. Calling it twice for the same
// lead creates two clients.
func (s *Service) ConvertLeadToClient(ctx context.Context, leadID int) (*models.Client, error) {
	var client *models.Client

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		lead, err := tx.Leads().Get(ctx, leadID)
		if err != nil {
			return err
		}

		id := lead.ID
		client, err = tx.Clients().Create(ctx, &models.Client{
			Name:           lead.Name,
			Email:          lead.Email,
			Phone:          lead.Phone,
			Address:        "",
			Status:         models.ClientStatusActive,
			EstimatedValue: lead.EstimatedValue,
			Source:         lead.Source,
			AssignedTo:     lead.AssignedTo,
			Notes:          fmt.Sprintf("Converted from lead. Source: %s. Original notes: %s", lead.Source, lead.Notes),
			LeadID:         &id,
		})
		if err != nil {
			return fmt.Errorf("creating client from lead: %w", err)
		}

		if err := tx.Leads().UpdateStatus(ctx, lead.ID, models.LeadStatusConverted); err != nil {
			return fmt.Errorf("updating lead status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConversion("lead_to_client")
	s.log.Info("lead converted", "lead_id", leadID, "client_id", client.ID)
	return client, nil
}

// DeleteClientByLeadID deletes the client created from a lead, if any
func (s *Service) DeleteClientByLeadID(ctx context.Context, leadID int) (bool, error) {
	client, err := s.store.Clients().FindByLeadID(ctx, leadID)
	if err != nil {
		return false, err
	}
	if client == nil {
		return false, nil
	}
	if err := s.store.Clients().Delete(ctx, client.ID); err != nil {
		return false, err
	}
	s.log.Info("client deleted by lead", "lead_id", leadID, "client_id", client.ID)
	return true, nil
}

// ConversionStats counts leads per status and the conversion rate in percent
func (s *Service) ConversionStats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.Leads().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Converted: counts[models.LeadStatusConverted],
		New:       counts[models.LeadStatusNew],
		Contacted: counts[models.LeadStatusContacted],
		Qualified: counts[models.LeadStatusQualified],
		Lost:      counts[models.LeadStatusLost],
	}
	for _, n := range counts {
		st.Total += n
	}
	if st.Total > 0 {
		st.ConversionRate = float64(st.Converted) / float64(st.Total) * 100
	}
	return st, nil
}

// ConvertQuoteToJob creates a pending job from an accepted quote and links
// the quote to it
func (s *Service) ConvertQuoteToJob(ctx context.Context, quoteID int) (*models.Job, error) {
	var job *models.Job

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		quote, err := tx.Quotes().Get(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != models.QuoteStatusAccepted {
			return domain.NewConflictError("only accepted quotes can be converted to a job")
		}
		if quote.JobID != nil {
			return domain.NewConflictError("quote already has a job")
		}

		job, err = tx.Jobs().Create(ctx, &models.Job{
			ClientID:    quote.ClientID,
			Title:       fmt.Sprintf("Job for quote #%d", quote.ID),
			Description: quote.Notes,
			Status:      models.JobStatusPending,
			Priority:    models.JobPriorityMedium,
			Budget:      quote.Amount,
		})
		if err != nil {
			return fmt.Errorf("creating job from quote: %w", err)
		}
		return tx.Quotes().SetJobID(ctx, quote.ID, job.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConversion("quote_to_job")
	s.log.Info("quote converted to job", "quote_id", quoteID, "job_id", job.ID)
	return job, nil
}

// CreateInvoiceFromQuote bills an accepted quote that has no invoice yet.
// The quote's own status is left unchanged.
func (s *Service) CreateInvoiceFromQuote(ctx context.Context, quoteID int) (*models.Invoice, error) {
	var invoice *models.Invoice

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		quote, err := tx.Quotes().Get(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != models.QuoteStatusAccepted {
			return domain.NewConflictError("only accepted quotes can be invoiced")
		}
		invoiced, err := tx.Invoices().ExistsForQuote(ctx, quote.ID)
		if err != nil {
			return err
		}
		if invoiced {
			return domain.NewConflictError("quote already invoiced")
		}

		today := tx.Now()
		due := today.AddDate(0, 0, s.invoiceDueDays)
		qid := quote.ID
		invoice, err = tx.Invoices().Create(ctx, &models.Invoice{
			ClientID:     quote.ClientID,
			JobID:        quote.JobID,
			QuoteID:      &qid,
			Amount:       quote.Amount,
			Status:       models.InvoiceStatusDraft,
			InvoiceDate:  today,
			DueDate:      &due,
			PaymentTerms: paymentTerms(s.invoiceDueDays),
			Notes:        quote.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConversion("quote_to_invoice")
	s.log.Info("invoice created from quote", "quote_id", quoteID, "invoice_id", invoice.ID)
	return invoice, nil
}

func paymentTerms(days int) string {
	if days == 30 {
		return DefaultPaymentTerms
	}
	return fmt.Sprintf("Payment due within %d days.", days)
}

// HasInvoice reports whether any invoice references the quote
func (s *Service) HasInvoice(ctx context.Context, quoteID int) (bool, error) {
	return s.store.Invoices().ExistsForQuote(ctx, quoteID)
}
