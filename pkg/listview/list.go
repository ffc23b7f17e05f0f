// Package listview keeps an in-memory row set that is mutated optimistically
// and resynchronized from the store when a remote mutation fails.
package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrRowBusy is returned when a row already has an operation in flight
var ErrRowBusy = errors.New("row has an operation in flight")

// ErrRowNotFound is returned when the key is not in the list
var ErrRowNotFound = errors.New("row not found in list")

// Fetcher loads the authoritative row set
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Config describes how a List reads its rows
type Config[T any, K comparable] struct {
	Key    func(T) K
	Fetch  Fetcher[T]
	Status func(T) string   // optional, used by Filter and Counts
	Search func(T) []string // optional, fields matched by Filter
}

// List is a row set plus the in-flight operation ids of each row.
// Concurrent edits from other sessions are last-write-wins.
type List[T any, K comparable] struct {
	cfg     Config[T, K]
	mu      sync.RWMutex
	rows    []T
	pending map[K]map[uint64]struct{}
	nextOp  atomic.Uint64
}

// New creates an empty list
func New[T any, K comparable](cfg Config[T, K]) *List[T, K] {
	return &List[T, K]{
		cfg:     cfg,
		pending: make(map[K]map[uint64]struct{}),
	}
}

// Load fetches rows and builds a list
func Load[T any, K comparable](ctx context.Context, cfg Config[T, K]) (*List[T, K], error) {
	l := New(cfg)
	if err := l.Refresh(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Refresh replaces the local rows with the fetched set
func (l *List[T, K]) Refresh(ctx context.Context) error {
	if l.cfg.Fetch == nil {
		return errors.New("listview: no fetcher configured")
	}
	rows, err := l.cfg.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("listview: fetch: %w", err)
	}
	l.mu.Lock()
	l.rows = rows
	l.mu.Unlock()
	return nil
}

// Rows returns a copy of the current rows
func (l *List[T, K]) Rows() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.rows))
	copy(out, l.rows)
	return out
}

// Len returns the number of rows
func (l *List[T, K]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}

// Busy reports whether key has an operation in flight
func (l *List[T, K]) Busy(key K) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending[key]) > 0
}

// Apply changes a row locally, marks it busy and runs remote. When remote
// fails the rows are re-fetched and the remote error is returned.
func (l *List[T, K]) Apply(ctx context.Context, key K, local func(T) T, remote func(ctx context.Context) error) error {
	op, err := l.begin(key, func(i int) {
		l.rows[i] = local(l.rows[i])
	})
	if err != nil {
		return err
	}
	return l.finish(ctx, key, op, remote)
}

// Remove drops a row locally and runs remote. When remote fails the rows are
// re-fetched, which brings the row back.
func (l *List[T, K]) Remove(ctx context.Context, key K, remote func(ctx context.Context) error) error {
	op, err := l.begin(key, func(i int) {
		l.rows = append(l.rows[:i], l.rows[i+1:]...)
	})
	if err != nil {
		return err
	}
	return l.finish(ctx, key, op, remote)
}

func (l *List[T, K]) begin(key K, mutate func(i int)) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending[key]) > 0 {
		return 0, ErrRowBusy
	}
	idx := l.indexOf(key)
	if idx < 0 {
		return 0, ErrRowNotFound
	}
	mutate(idx)

	op := l.nextOp.Add(1)
	l.pending[key] = map[uint64]struct{}{op: {}}
	return op, nil
}

func (l *List[T, K]) finish(ctx context.Context, key K, op uint64, remote func(ctx context.Context) error) error {
	defer l.clear(key, op)

	if err := remote(ctx); err != nil {
		if ferr := l.Refresh(ctx); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}
	return nil
}

func (l *List[T, K]) clear(key K, op uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending[key], op)
	if len(l.pending[key]) == 0 {
		delete(l.pending, key)
	}
}

func (l *List[T, K]) indexOf(key K) int {
	for i, r := range l.rows {
		if l.cfg.Key(r) == key {
			return i
		}
	}
	return -1
}

// Filter returns rows whose status equals status (empty or "all" matches
// everything) and whose search fields contain search, case-insensitively.
func (l *List[T, K]) Filter(search, status string) []T {
	search = strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)
	matchAll := status == "" || strings.EqualFold(status, "all")

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.rows))
	for _, r := range l.rows {
		if !matchAll && (l.cfg.Status == nil || l.cfg.Status(r) != status) {
			continue
		}
		if search != "" && !l.matches(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (l *List[T, K]) matches(r T, search string) bool {
	if l.cfg.Search == nil {
		return false
	}
	for _, f := range l.cfg.Search(r) {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// Counts returns the number of rows per status plus "all"
func (l *List[T, K]) Counts() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := map[string]int{"all": len(l.rows)}
	if l.cfg.Status == nil {
		return counts
	}
	for _, r := range l.rows {
		counts[l.cfg.Status(r)]++
	}
	return counts
}
