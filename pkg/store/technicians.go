package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var technicianColumns = []string{"id", "name", "email", "phone", "status", "notes", "created_at"}

// TechnicianStore persists technicians
type TechnicianStore struct{ s *Store }

// Create inserts a technician. Status defaults to active.
func (r *TechnicianStore) Create(ctx context.Context, t *models.Technician) (*models.Technician, error) {
	if t.Status == "" {
		t.Status = models.TechnicianStatusActive
	}
	if err := validStatus(models.EntityTechnician, string(t.Status)); err != nil {
		return nil, err
	}

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("technicians").
		Columns("name", "email", "phone", "status", "notes", "created_at").
		Values(t.Name, t.Email, t.Phone, t.Status, t.Notes, now))
	if err != nil {
		return nil, err
	}

	out := *t
	out.ID, out.CreatedAt = id, now
	return &out, nil
}

// Get returns one technician or NotFound
func (r *TechnicianStore) Get(ctx context.Context, id int) (*models.Technician, error) {
	return getOne[models.Technician](ctx, r.s, r.s.selectFrom("technicians", technicianColumns...).Where(entsql.EQ("id", id)), "technician")
}

// List returns technicians ordered by name
func (r *TechnicianStore) List(ctx context.Context) ([]models.Technician, error) {
	out := []models.Technician{}
	sel := r.s.selectFrom("technicians", technicianColumns...).OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of a technician
func (r *TechnicianStore) Update(ctx context.Context, id int, t *models.Technician) (*models.Technician, error) {
	upd := r.s.builder().Update("technicians").
		Set("name", t.Name).
		Set("email", t.Email).
		Set("phone", t.Phone).
		Set("notes", t.Notes)
	if t.Status != "" {
		if err := validStatus(models.EntityTechnician, string(t.Status)); err != nil {
			return nil, err
		}
		upd.Set("status", t.Status)
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "technician"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a technician. Job assignments referencing it are left as is.
func (r *TechnicianStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("technicians").Where(entsql.EQ("id", id)), "technician")
}
