// Package store is the relational persistence layer of the CRM. It builds
// queries with ent's dialect/sql builder so the same code runs on
// PostgreSQL and SQLite.
package store

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
)

// Store wraps a driver or an open transaction
type Store struct {
	drv     dialect.ExecQuerier
	root    dialect.Driver
	dialect string
	now     func() time.Time
}

// New creates a Store over an ent SQL driver
func New(drv dialect.Driver) *Store {
	return &Store{
		drv:     drv,
		root:    drv,
		dialect: drv.Dialect(),
		now:     defaultNow,
	}
}

// defaultNow returns second precision UTC so stored timestamps compare
// correctly as text on SQLite.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// WithClock overrides the time source, used by tests
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// Now returns the store's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// WithTx runs fn against a transaction bound Store. The transaction commits
// when fn returns nil and rolls back on error or panic. Nested calls reuse
// the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.root == nil {
		return fn(s)
	}

	tx, err := s.root.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting a transaction: %w", err)
	}
	txStore := &Store{drv: tx, dialect: s.dialect, now: s.now}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(txStore); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Leads returns the lead accessor
func (s *Store) Leads() *LeadStore { return &LeadStore{s} }

// Clients returns the client accessor
func (s *Store) Clients() *ClientStore { return &ClientStore{s} }

// Technicians returns the technician accessor
func (s *Store) Technicians() *TechnicianStore { return &TechnicianStore{s} }

// Jobs returns the job accessor
func (s *Store) Jobs() *JobStore { return &JobStore{s} }

// Quotes returns the quote accessor
func (s *Store) Quotes() *QuoteStore { return &QuoteStore{s} }

// Invoices returns the invoice accessor
func (s *Store) Invoices() *InvoiceStore { return &InvoiceStore{s} }

// Channels returns the channel report accessor
func (s *Store) Channels() *ChannelStore { return &ChannelStore{s} }

// Profiles returns the user profile accessor
func (s *Store) Profiles() *ProfileStore { return &ProfileStore{s} }

type querier interface {
	Query() (string, []any)
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

func (s *Store) selectFrom(table string, columns ...string) *entsql.Selector {
	b := s.builder()
	return b.Select(columns...).From(b.Table(table))
}

func (s *Store) scan(ctx context.Context, q querier, dest any) error {
	query, args := q.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dest)
}

func (s *Store) count(ctx context.Context, sel *entsql.Selector) (int, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

func (s *Store) exec(ctx context.Context, q querier) (int64, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) insert(ctx context.Context, b *entsql.InsertBuilder) (int, error) {
	query, args := b.Returning("id").Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

// mustAffect turns a zero row update or delete into NotFound
func (s *Store) mustAffect(ctx context.Context, q querier, resource string) error {
	n, err := s.exec(ctx, q)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(resource)
	}
	return nil
}

func getOne[T any](ctx context.Context, s *Store, sel *entsql.Selector, resource string) (*T, error) {
	var out []T
	if err := s.scan(ctx, sel.Limit(1), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.NewNotFoundError(resource)
	}
	return &out[0], nil
}

type statusCount struct {
	Status string `sql:"status"`
	Count  int    `sql:"count"`
}

func (s *Store) countByStatus(ctx context.Context, table string) (map[string]int, error) {
	sel := s.selectFrom(table, "status", entsql.As(entsql.Count("*"), "count")).GroupBy("status")
	var rows []statusCount
	if err := s.scan(ctx, sel, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Store) countIn(ctx context.Context, table string, statuses ...string) (int, error) {
	sel := s.selectFrom(table, entsql.Count("*"))
	if len(statuses) > 0 {
		args := make([]any, len(statuses))
		for i, st := range statuses {
			args[i] = st
		}
		sel.Where(entsql.In("status", args...))
	}
	return s.count(ctx, sel)
}

func (s *Store) clientExists(ctx context.Context, id int) (bool, error) {
	n, err := s.count(ctx, s.selectFrom("clients", entsql.Count("*")).Where(entsql.EQ("id", id)))
	return n > 0, err
}

func (s *Store) requireClient(ctx context.Context, id int) error {
	ok, err := s.clientExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("client")
	}
	return nil
}

func validStatus(entity, status string) error {
	if status == "" {
		return nil
	}
	if !models.ValidStatus(entity, status) {
		return domain.NewValidationError(fmt.Sprintf("invalid %s status: %q", entity, status))
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func intsToAny(ids []int) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
