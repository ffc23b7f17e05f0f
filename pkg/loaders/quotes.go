package loaders

import (
	"context"
	"fmt"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// QuoteActions are the follow-up actions a quote currently offers
type QuoteActions struct {
	CanSend          bool `json:"canSend"`
	CanCreateInvoice bool `json:"canCreateInvoice"`
	CanConvertToJob  bool `json:"canConvertToJob"`
}

// QuoteRow is a quote with its client name and invoice state
type QuoteRow struct {
	models.Quote
	ClientName string       `json:"clientName"`
	HasInvoice bool         `json:"hasInvoice"`
	Actions    QuoteActions `json:"actions"`
}

// QuoteCounts feeds the status tabs of the quotes page
type QuoteCounts struct {
	All      int `json:"all"`
	Draft    int `json:"draft"`
	Sent     int `json:"sent"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// QuotesPage is the quotes list with its counts
type QuotesPage struct {
	Quotes []QuoteRow  `json:"quotes"`
	Counts QuoteCounts `json:"counts"`
}

// ActionsFor derives the available actions of a quote
func ActionsFor(q models.Quote, hasInvoice bool) QuoteActions {
	accepted := q.Status == models.QuoteStatusAccepted
	return QuoteActions{
		CanSend:          q.Status == models.QuoteStatusDraft,
		CanCreateInvoice: accepted && !hasInvoice,
		CanConvertToJob:  accepted && q.JobID == nil,
	}
}

// QuoteList builds the optimistic list backing the quotes page
func (s *Service) QuoteList(ctx context.Context) (*listview.List[QuoteRow, int], error) {
	return listview.Load(ctx, listview.Config[QuoteRow, int]{
		Key:    func(r QuoteRow) int { return r.ID },
		Fetch:  s.quoteRows,
		Status: func(r QuoteRow) string { return string(r.Status) },
		Search: func(r QuoteRow) []string { return []string{itoa(r.ID), r.ClientName, r.Notes} },
	})
}

// Quotes loads the quotes page
func (s *Service) Quotes(ctx context.Context, q Query) (*QuotesPage, error) {
	list, err := s.QuoteList(ctx)
	if err != nil {
		return nil, err
	}
	c := list.Counts()
	return &QuotesPage{
		Quotes: list.Filter(q.Search, q.Status),
		Counts: QuoteCounts{
			All:      c["all"],
			Draft:    c[string(models.QuoteStatusDraft)],
			Sent:     c[string(models.QuoteStatusSent)],
			Accepted: c[string(models.QuoteStatusAccepted)],
			Rejected: c[string(models.QuoteStatusRejected)],
		},
	}, nil
}

func (s *Service) quoteRows(ctx context.Context) ([]QuoteRow, error) {
	quotes, err := s.store.Quotes().ListWithClient(ctx, store.QuoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	invoiced, err := s.store.Invoices().QuoteIDsWithInvoice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoiced quotes: %w", err)
	}

	rows := make([]QuoteRow, len(quotes))
	for i, q := range quotes {
		has := invoiced[q.ID]
		rows[i] = QuoteRow{Quote: q.Quote, HasInvoice: has, Actions: ActionsFor(q.Quote, has)}
		if q.Client != nil {
			rows[i].ClientName = q.Client.Name
		}
	}
	return rows, nil
}
