package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var leadColumns = []string{
	"id", "name", "email", "phone", "source", "status", "estimated_value",
	"notes", "assigned_to", "created_at", "updated_at",
}

// LeadFilter narrows List results
type LeadFilter struct {
	Status models.LeadStatus
}

// LeadStore persists leads
type LeadStore struct{ s *Store }

// Create inserts a lead. Status defaults to new.
func (r *LeadStore) Create(ctx context.Context, l *models.Lead) (*models.Lead, error) {
	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}
	if err := validStatus(models.EntityLead, string(l.Status)); err != nil {
		return nil, err
	}

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("leads").
		Columns("name", "email", "phone", "source", "status", "estimated_value", "notes", "assigned_to", "created_at", "updated_at").
		Values(l.Name, l.Email, l.Phone, l.Source, l.Status, l.EstimatedValue, l.Notes, l.AssignedTo, now, now))
	if err != nil {
		return nil, err
	}

	out := *l
	out.ID, out.CreatedAt, out.UpdatedAt = id, now, now
	return &out, nil
}

// Get returns one lead or NotFound
func (r *LeadStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	return getOne[models.Lead](ctx, r.s, r.s.selectFrom("leads", leadColumns...).Where(entsql.EQ("id", id)), "lead")
}

// List returns leads newest first
func (r *LeadStore) List(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	sel := r.s.selectFrom("leads", leadColumns...).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.Status != "" {
		sel.Where(entsql.EQ("status", f.Status))
	}
	out := []models.Lead{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of a lead. An empty status keeps the
// stored one.
func (r *LeadStore) Update(ctx context.Context, id int, l *models.Lead) (*models.Lead, error) {
	upd := r.s.builder().Update("leads").
		Set("name", l.Name).
		Set("email", l.Email).
		Set("phone", l.Phone).
		Set("source", l.Source).
		Set("estimated_value", l.EstimatedValue).
		Set("notes", l.Notes).
		Set("assigned_to", l.AssignedTo).
		Set("updated_at", r.s.now())
	if l.Status != "" {
		if err := validStatus(models.EntityLead, string(l.Status)); err != nil {
			return nil, err
		}
		upd.Set("status", l.Status)
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "lead"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStatus writes only the status column
func (r *LeadStore) UpdateStatus(ctx context.Context, id int, status models.LeadStatus) error {
	if err := validStatus(models.EntityLead, string(status)); err != nil {
		return err
	}
	return r.s.mustAffect(ctx, r.s.builder().Update("leads").
		Set("status", status).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "lead")
}

// Delete removes a lead. Clients created from it keep their row with lead_id cleared.
func (r *LeadStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("leads").Where(entsql.EQ("id", id)), "lead")
}

// CountByStatus returns the number of leads per status
func (r *LeadStore) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	raw, err := r.s.countByStatus(ctx, "leads")
	if err != nil {
		return nil, err
	}
	out := make(map[models.LeadStatus]int, len(raw))
	for k, v := range raw {
		out[models.LeadStatus(k)] = v
	}
	return out, nil
}
