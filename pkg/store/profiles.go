package store

import (
	"context"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var profileColumns = []string{"id", "email", "full_name", "password_hash", "role", "created_at"}

// ProfileStore persists user profiles
type ProfileStore struct{ s *Store }

// Create inserts a profile. Emails are stored lowercased.
func (r *ProfileStore) Create(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p.Role == "" {
		p.Role = string(models.RoleUser)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("user_profiles").
		Columns("email", "full_name", "password_hash", "role", "created_at").
		Values(p.Email, p.FullName, p.PasswordHash, p.Role, now))
	if err != nil {
		return nil, err
	}
	out := *p
	out.ID, out.CreatedAt = id, now
	return &out, nil
}

// Get returns one profile or NotFound
func (r *ProfileStore) Get(ctx context.Context, id int) (*models.UserProfile, error) {
	return getOne[models.UserProfile](ctx, r.s, r.s.selectFrom("user_profiles", profileColumns...).Where(entsql.EQ("id", id)), "user")
}

// GetByEmail looks a profile up by email, case-insensitively
func (r *ProfileStore) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return getOne[models.UserProfile](ctx, r.s, r.s.selectFrom("user_profiles", profileColumns...).Where(entsql.EQ("email", email)), "user")
}
