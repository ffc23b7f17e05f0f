package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var quoteColumns = []string{
	"id", "client_id", "job_id", "amount", "status", "valid_until",
	"terms", "notes", "created_at", "updated_at",
}

// QuoteFilter narrows List results
type QuoteFilter struct {
	ClientID int
	Status   models.QuoteStatus
}

// QuoteStore persists quotes
type QuoteStore struct{ s *Store }

// Create inserts a quote after checking the client exists. Status defaults to draft.
func (r *QuoteStore) Create(ctx context.Context, q *models.Quote) (*models.Quote, error) {
	if q.Status == "" {
		q.Status = models.QuoteStatusDraft
	}
	if err := validStatus(models.EntityQuote, string(q.Status)); err != nil {
		return nil, err
	}
	if err := r.s.requireClient(ctx, q.ClientID); err != nil {
		return nil, err
	}

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("quotes").
		Columns("client_id", "job_id", "amount", "status", "valid_until", "terms", "notes", "created_at", "updated_at").
		Values(q.ClientID, q.JobID, q.Amount, q.Status, utc(q.ValidUntil), q.Terms, q.Notes, now, now))
	if err != nil {
		return nil, err
	}

	out := *q
	out.ID, out.CreatedAt, out.UpdatedAt = id, now, now
	out.ValidUntil = utc(q.ValidUntil)
	return &out, nil
}

// Get returns one quote or NotFound
func (r *QuoteStore) Get(ctx context.Context, id int) (*models.Quote, error) {
	return getOne[models.Quote](ctx, r.s, r.s.selectFrom("quotes", quoteColumns...).Where(entsql.EQ("id", id)), "quote")
}

// List returns quotes newest first
func (r *QuoteStore) List(ctx context.Context, f QuoteFilter) ([]models.Quote, error) {
	sel := r.s.selectFrom("quotes", quoteColumns...).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.ClientID != 0 {
		sel.Where(entsql.EQ("client_id", f.ClientID))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ("status", f.Status))
	}
	out := []models.Quote{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByClient returns all quotes of one client
func (r *QuoteStore) ListByClient(ctx context.Context, clientID int) ([]models.Quote, error) {
	return r.List(ctx, QuoteFilter{ClientID: clientID})
}

// Update replaces the editable fields of a quote
func (r *QuoteStore) Update(ctx context.Context, id int, q *models.Quote) (*models.Quote, error) {
	if q.Status != "" {
		if err := validStatus(models.EntityQuote, string(q.Status)); err != nil {
			return nil, err
		}
	}
	if err := r.s.requireClient(ctx, q.ClientID); err != nil {
		return nil, err
	}

	upd := r.s.builder().Update("quotes").
		Set("client_id", q.ClientID).
		Set("job_id", q.JobID).
		Set("amount", q.Amount).
		Set("valid_until", utc(q.ValidUntil)).
		Set("terms", q.Terms).
		Set("notes", q.Notes).
		Set("updated_at", r.s.now())
	if q.Status != "" {
		upd.Set("status", q.Status)
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "quote"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStatus writes only the status column
func (r *QuoteStore) UpdateStatus(ctx context.Context, id int, status models.QuoteStatus) error {
	if err := validStatus(models.EntityQuote, string(status)); err != nil {
		return err
	}
	return r.s.mustAffect(ctx, r.s.builder().Update("quotes").
		Set("status", status).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "quote")
}

// SetJobID links a quote to the job created from it
func (r *QuoteStore) SetJobID(ctx context.Context, id, jobID int) error {
	return r.s.mustAffect(ctx, r.s.builder().Update("quotes").
		Set("job_id", jobID).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "quote")
}

// Delete removes a quote. Invoices created from it keep their row with quote_id cleared.
func (r *QuoteStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("quotes").Where(entsql.EQ("id", id)), "quote")
}

// CountByStatus counts quotes in any of the given statuses, all quotes when none
func (r *QuoteStore) CountByStatus(ctx context.Context, statuses ...models.QuoteStatus) (int, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.s.countIn(ctx, "quotes", raw...)
}
