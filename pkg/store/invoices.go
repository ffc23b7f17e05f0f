package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var invoiceColumns = []string{
	"id", "client_id", "job_id", "quote_id", "amount", "status", "invoice_date",
	"due_date", "payment_terms", "notes", "created_at", "updated_at",
}

// InvoiceFilter narrows List results
type InvoiceFilter struct {
	ClientID int
	QuoteID  int
	Status   models.InvoiceStatus
}

// InvoiceStore persists invoices
type InvoiceStore struct{ s *Store }

// Create inserts an invoice after checking the client exists. Status
// defaults to draft and invoice_date to today.
func (r *InvoiceStore) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusDraft
	}
	if err := validStatus(models.EntityInvoice, string(inv.Status)); err != nil {
		return nil, err
	}
	if err := r.s.requireClient(ctx, inv.ClientID); err != nil {
		return nil, err
	}

	now := r.s.now()
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = now
	}
	inv.InvoiceDate = inv.InvoiceDate.UTC()

	id, err := r.s.insert(ctx, r.s.builder().Insert("invoices").
		Columns("client_id", "job_id", "quote_id", "amount", "status", "invoice_date", "due_date",
			"payment_terms", "notes", "created_at", "updated_at").
		Values(inv.ClientID, inv.JobID, inv.QuoteID, inv.Amount, inv.Status, inv.InvoiceDate, utc(inv.DueDate),
			inv.PaymentTerms, inv.Notes, now, now))
	if err != nil {
		return nil, err
	}

	out := *inv
	out.ID, out.CreatedAt, out.UpdatedAt = id, now, now
	out.DueDate = utc(inv.DueDate)
	return &out, nil
}

// Get returns one invoice or NotFound
func (r *InvoiceStore) Get(ctx context.Context, id int) (*models.Invoice, error) {
	return getOne[models.Invoice](ctx, r.s, r.s.selectFrom("invoices", invoiceColumns...).Where(entsql.EQ("id", id)), "invoice")
}

// List returns invoices newest first
func (r *InvoiceStore) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	sel := r.s.selectFrom("invoices", invoiceColumns...).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.ClientID != 0 {
		sel.Where(entsql.EQ("client_id", f.ClientID))
	}
	if f.QuoteID != 0 {
		sel.Where(entsql.EQ("quote_id", f.QuoteID))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ("status", f.Status))
	}
	out := []models.Invoice{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsForQuote reports whether any invoice references the quote
func (r *InvoiceStore) ExistsForQuote(ctx context.Context, quoteID int) (bool, error) {
	n, err := r.s.count(ctx, r.s.selectFrom("invoices", entsql.Count("*")).Where(entsql.EQ("quote_id", quoteID)))
	return n > 0, err
}

type quoteRef struct {
	QuoteID *int `sql:"quote_id"`
}

// QuoteIDsWithInvoice returns the set of quote ids referenced by any invoice
func (r *InvoiceStore) QuoteIDsWithInvoice(ctx context.Context) (map[int]bool, error) {
	var rows []quoteRef
	sel := r.s.selectFrom("invoices", "quote_id").Distinct().Where(entsql.NotNull("quote_id"))
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(rows))
	for _, row := range rows {
		if row.QuoteID != nil {
			out[*row.QuoteID] = true
		}
	}
	return out, nil
}

// Update replaces the editable fields of an invoice. An empty status keeps
// the stored one.
func (r *InvoiceStore) Update(ctx context.Context, id int, inv *models.Invoice) (*models.Invoice, error) {
	if inv.Status != "" {
		if err := validStatus(models.EntityInvoice, string(inv.Status)); err != nil {
			return nil, err
		}
	}
	if err := r.s.requireClient(ctx, inv.ClientID); err != nil {
		return nil, err
	}

	upd := r.s.builder().Update("invoices").
		Set("client_id", inv.ClientID).
		Set("job_id", inv.JobID).
		Set("quote_id", inv.QuoteID).
		Set("amount", inv.Amount).
		Set("due_date", utc(inv.DueDate)).
		Set("payment_terms", inv.PaymentTerms).
		Set("notes", inv.Notes).
		Set("updated_at", r.s.now())
	if inv.Status != "" {
		upd.Set("status", inv.Status)
	}
	if !inv.InvoiceDate.IsZero() {
		upd.Set("invoice_date", inv.InvoiceDate.UTC())
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "invoice"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStatus writes only the status column
func (r *InvoiceStore) UpdateStatus(ctx context.Context, id int, status models.InvoiceStatus) error {
	if err := validStatus(models.EntityInvoice, string(status)); err != nil {
		return err
	}
	return r.s.mustAffect(ctx, r.s.builder().Update("invoices").
		Set("status", status).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "invoice")
}

// Delete removes an invoice
func (r *InvoiceStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("invoices").Where(entsql.EQ("id", id)), "invoice")
}

// CountByStatus counts invoices in any of the given statuses, all invoices when none
func (r *InvoiceStore) CountByStatus(ctx context.Context, statuses ...models.InvoiceStatus) (int, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.s.countIn(ctx, "invoices", raw...)
}

// DueBetween returns invoices whose due date falls in [from, to], soonest first
func (r *InvoiceStore) DueBetween(ctx context.Context, from, to time.Time) ([]models.Invoice, error) {
	sel := r.s.selectFrom("invoices", invoiceColumns...).
		Where(entsql.And(
			entsql.NotNull("due_date"),
			entsql.GTE("due_date", from.UTC()),
			entsql.LTE("due_date", to.UTC()),
		)).
		OrderBy(entsql.Asc("due_date"))
	out := []models.Invoice{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkOverdue flips sent invoices whose due date is before the cutoff to overdue
func (r *InvoiceStore) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	return r.s.exec(ctx, r.s.builder().Update("invoices").
		Set("status", models.InvoiceStatusOverdue).
		Set("updated_at", r.s.now()).
		Where(entsql.And(
			entsql.EQ("status", models.InvoiceStatusSent),
			entsql.NotNull("due_date"),
			entsql.LT("due_date", before.UTC()),
		)))
}

type clientTotal struct {
	ClientID int     `sql:"client_id"`
	Total    float64 `sql:"total"`
}

// SumPaidByClient returns the total of paid invoice amounts per client
func (r *InvoiceStore) SumPaidByClient(ctx context.Context) (map[int]float64, error) {
	sel := r.s.selectFrom("invoices", "client_id", entsql.As(entsql.Sum("amount"), "total")).
		Where(entsql.EQ("status", models.InvoiceStatusPaid)).
		GroupBy("client_id")
	var rows []clientTotal
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(rows))
	for _, row := range rows {
		out[row.ClientID] = row.Total
	}
	return out, nil
}
