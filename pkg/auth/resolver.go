package auth

import (
	"context"
	"sync"
	"time"

	"github.com/voltflow/crm/pkg/models"
)

// DefaultResolveTimeout is how long a session may stay unresolved before it
// is treated as logged out
const DefaultResolveTimeout = 5 * time.Second

// State is the resolution state of a session
type State int

const (
	Unresolved State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unresolved"
	}
}

// Resolution is the current session outcome. User is set only when
// Authenticated.
type Resolution struct {
	State State
	User  *models.UserInfo
}

// ProfileLoader answers who the session belongs to. A nil user with a nil
// error means no session.
type ProfileLoader func(ctx context.Context) (*models.UserInfo, error)

// Resolver resolves a session once. The loader races a single timer; the
// first to finish decides the outcome and later answers are dropped.
type Resolver struct {
	timeout time.Duration

	mu     sync.Mutex
	res    Resolution
	timer  *time.Timer
	done   chan struct{}
	cancel context.CancelFunc
}

// NewResolver creates an unresolved resolver. A non-positive timeout uses
// DefaultResolveTimeout.
func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Resolver{timeout: timeout, done: make(chan struct{})}
}

// Start runs load in the background. Only the first call has any effect.
func (r *Resolver) Start(ctx context.Context, load ProfileLoader) {
	r.mu.Lock()
	if r.timer != nil || r.res.State != Unresolved {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.timer = time.AfterFunc(r.timeout, func() {
		r.settle(Resolution{State: Anonymous})
	})
	r.mu.Unlock()

	go func() {
		user, err := load(ctx)
		if err != nil || user == nil {
			r.settle(Resolution{State: Anonymous})
			return
		}
		r.settle(Resolution{State: Authenticated, User: user})
	}()
}

// settle records the first outcome and reports whether it won
func (r *Resolver) settle(res Resolution) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.res.State != Unresolved {
		return false
	}
	r.res = res
	if r.timer != nil {
		r.timer.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
	close(r.done)
	return true
}

// SignOut resolves an unresolved session as anonymous or clears an
// authenticated one
func (r *Resolver) SignOut() {
	if r.settle(Resolution{State: Anonymous}) {
		return
	}
	r.mu.Lock()
	r.res = Resolution{State: Anonymous}
	r.mu.Unlock()
}

// Current returns the resolution without blocking
func (r *Resolver) Current() Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res
}

// Wait blocks until the session resolves or ctx ends
func (r *Resolver) Wait(ctx context.Context) (Resolution, error) {
	select {
	case <-r.done:
		return r.Current(), nil
	case <-ctx.Done():
		return Resolution{State: Unresolved}, ctx.Err()
	}
}

// Resolve is a convenience that starts the resolver and waits for it
func Resolve(ctx context.Context, timeout time.Duration, load ProfileLoader) Resolution {
	r := NewResolver(timeout)
	r.Start(ctx, load)
	res, err := r.Wait(ctx)
	if err != nil {
		return Resolution{State: Anonymous}
	}
	return res
}
