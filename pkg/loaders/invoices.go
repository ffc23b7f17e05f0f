package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// InvoiceRow is an invoice with its client and job references
type InvoiceRow struct {
	store.InvoiceWithRelations
	OverdueDays *int `json:"overdueDays,omitempty"`
}

// InvoiceCounts feeds the status tabs of the invoices page
type InvoiceCounts struct {
	All     int `json:"all"`
	Draft   int `json:"draft"`
	Sent    int `json:"sent"`
	Paid    int `json:"paid"`
	Overdue int `json:"overdue"`
}

// InvoiceTotals feeds the insight panel of the invoices page
type InvoiceTotals struct {
	Paid        float64 `json:"totalPaid"`
	Outstanding float64 `json:"totalOutstanding"`
	Overdue     float64 `json:"totalOverdue"`
}

// InvoicesPage is the invoices list with counts and totals
type InvoicesPage struct {
	Invoices []InvoiceRow  `json:"invoices"`
	Counts   InvoiceCounts `json:"counts"`
	Totals   InvoiceTotals `json:"totals"`
}

// InvoiceList builds the optimistic list backing the invoices page
func (s *Service) InvoiceList(ctx context.Context) (*listview.List[InvoiceRow, int], error) {
	return listview.Load(ctx, listview.Config[InvoiceRow, int]{
		Key:    func(r InvoiceRow) int { return r.ID },
		Fetch:  s.invoiceRows,
		Status: func(r InvoiceRow) string { return string(r.Status) },
		Search: func(r InvoiceRow) []string {
			fields := []string{itoa(r.ID)}
			if r.Client != nil {
				fields = append(fields, r.Client.Name)
			}
			if r.Job != nil {
				fields = append(fields, r.Job.Title)
			}
			return fields
		},
	})
}

// Invoices loads the invoices page. Overdue accepts "overdue" or "not".
func (s *Service) Invoices(ctx context.Context, q Query) (*InvoicesPage, error) {
	list, err := s.InvoiceList(ctx)
	if err != nil {
		return nil, err
	}
	c := list.Counts()

	rows := list.Filter(q.Search, q.Status)
	if q.Overdue == "overdue" || q.Overdue == "not" {
		want := q.Overdue == "overdue"
		filtered := rows[:0]
		for _, r := range rows {
			if (r.Status == models.InvoiceStatusOverdue) == want {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	page := &InvoicesPage{
		Invoices: rows,
		Counts: InvoiceCounts{
			All:     c["all"],
			Draft:   c[string(models.InvoiceStatusDraft)],
			Sent:    c[string(models.InvoiceStatusSent)],
			Paid:    c[string(models.InvoiceStatusPaid)],
			Overdue: c[string(models.InvoiceStatusOverdue)],
		},
	}
	// Totals cover every invoice, not just the filtered ones
	for _, r := range list.Rows() {
		switch r.Status {
		case models.InvoiceStatusPaid:
			page.Totals.Paid += r.Amount
		case models.InvoiceStatusOverdue:
			page.Totals.Overdue += r.Amount
			page.Totals.Outstanding += r.Amount
		case models.InvoiceStatusSent:
			page.Totals.Outstanding += r.Amount
		}
	}
	return page, nil
}

func (s *Service) invoiceRows(ctx context.Context) ([]InvoiceRow, error) {
	invoices, err := s.store.Invoices().ListWithRelations(ctx, store.InvoiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	now := s.now()
	rows := make([]InvoiceRow, len(invoices))
	for i, inv := range invoices {
		rows[i] = InvoiceRow{InvoiceWithRelations: inv, OverdueDays: overdueDays(inv.Invoice, now)}
	}
	return rows, nil
}

func overdueDays(inv models.Invoice, now time.Time) *int {
	if inv.Status != models.InvoiceStatusOverdue || inv.DueDate == nil {
		return nil
	}
	d := int(now.Sub(*inv.DueDate).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return &d
}
