// Package loaders assembles the read models behind each CRM page: rows joined
// with their related records, derived fields, status counts and filters.
package loaders

import (
	"time"

	"github.com/voltflow/crm/pkg/store"
)

// Query holds the page filters shared by every loader
type Query struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	Priority string `query:"priority"` // jobs only
	Overdue  string `query:"overdue"`  // invoices only: overdue | not
}

// Service loads page data from the store
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a loader service
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock used for date-relative fields
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
