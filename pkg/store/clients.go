package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var clientColumns = []string{
	"id", "name", "email", "phone", "address", "status", "estimated_value",
	"source", "assigned_to", "notes", "lead_id", "created_at", "updated_at",
}

// ClientFilter narrows List results
type ClientFilter struct {
	Status models.ClientStatus
}

// ClientStore persists clients
type ClientStore struct{ s *Store }

// Create inserts a client. Status defaults to active.
func (r *ClientStore) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}
	if err := validStatus(models.EntityClient, string(c.Status)); err != nil {
		return nil, err
	}

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("clients").
		Columns("name", "email", "phone", "address", "status", "estimated_value", "source", "assigned_to", "notes", "lead_id", "created_at", "updated_at").
		Values(c.Name, c.Email, c.Phone, c.Address, c.Status, c.EstimatedValue, c.Source, c.AssignedTo, c.Notes, c.LeadID, now, now))
	if err != nil {
		return nil, err
	}

	out := *c
	out.ID, out.CreatedAt, out.UpdatedAt = id, now, now
	return &out, nil
}

// Get returns one client or NotFound
func (r *ClientStore) Get(ctx context.Context, id int) (*models.Client, error) {
	return getOne[models.Client](ctx, r.s, r.s.selectFrom("clients", clientColumns...).Where(entsql.EQ("id", id)), "client")
}

// Exists reports whether a client row exists
func (r *ClientStore) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.clientExists(ctx, id)
}

// List returns clients newest first
func (r *ClientStore) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	sel := r.s.selectFrom("clients", clientColumns...).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.Status != "" {
		sel.Where(entsql.EQ("status", f.Status))
	}
	out := []models.Client{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMany returns the clients with the given ids keyed by id
func (r *ClientStore) GetMany(ctx context.Context, ids []int) (map[int]models.Client, error) {
	out := make(map[int]models.Client, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Client
	if err := r.s.scan(ctx, r.s.selectFrom("clients", clientColumns...).Where(entsql.In("id", intsToAny(ids)...)), &rows); err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

// FindByLeadID returns the first client created from the lead, or nil
func (r *ClientStore) FindByLeadID(ctx context.Context, leadID int) (*models.Client, error) {
	var out []models.Client
	sel := r.s.selectFrom("clients", clientColumns...).
		Where(entsql.EQ("lead_id", leadID)).
		OrderBy(entsql.Asc("id")).
		Limit(1)
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Update replaces the editable fields of a client. lead_id is never changed.
func (r *ClientStore) Update(ctx context.Context, id int, c *models.Client) (*models.Client, error) {
	upd := r.s.builder().Update("clients").
		Set("name", c.Name).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("estimated_value", c.EstimatedValue).
		Set("source", c.Source).
		Set("assigned_to", c.AssignedTo).
		Set("notes", c.Notes).
		Set("updated_at", r.s.now())
	if c.Status != "" {
		if err := validStatus(models.EntityClient, string(c.Status)); err != nil {
			return nil, err
		}
		upd.Set("status", c.Status)
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "client"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStatus writes only the status column
func (r *ClientStore) UpdateStatus(ctx context.Context, id int, status models.ClientStatus) error {
	if err := validStatus(models.EntityClient, string(status)); err != nil {
		return err
	}
	return r.s.mustAffect(ctx, r.s.builder().Update("clients").
		Set("status", status).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "client")
}

// Delete removes a client and, through cascading keys, its quotes, jobs and invoices
func (r *ClientStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("clients").Where(entsql.EQ("id", id)), "client")
}

// DeleteByLeadID removes every client created from the lead
func (r *ClientStore) DeleteByLeadID(ctx context.Context, leadID int) (int64, error) {
	return r.s.exec(ctx, r.s.builder().Delete("clients").Where(entsql.EQ("lead_id", leadID)))
}

// Count returns the number of clients
func (r *ClientStore) Count(ctx context.Context) (int, error) {
	return r.s.countIn(ctx, "clients")
}
