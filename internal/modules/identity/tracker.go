package identity

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker holds the resolved identity of one session. It re-resolves only
// when the session's actor id changes.
//
// mu serializes identity changes; readers go through current and never wait
// on a lookup in flight.
type Tracker struct {
	resolver *Resolver

	mu      sync.Mutex
	current atomic.Pointer[Resolution]
}

func NewTracker(r *Resolver) *Tracker {
	return &Tracker{resolver: r}
}

// Track records the session's actor id. Repeated calls with the same id are
// served from the tracker; an empty id clears it. A failed lookup for a new
// id leaves the session anonymous.
func (t *Tracker) Track(ctx context.Context, actorID string) (Resolution, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if actorID == "" {
		t.current.Store(nil)
		return Resolution{}, nil
	}
	if cur := t.current.Load(); cur != nil && cur.Actor.ID == actorID {
		return *cur, nil
	}

	t.current.Store(nil)
	res, err := t.resolver.Resolve(ctx, actorID)
	if err != nil {
		return Resolution{}, err
	}
	t.current.Store(&res)
	return res, nil
}

func (t *Tracker) Current() Resolution {
	if cur := t.current.Load(); cur != nil {
		return *cur
	}
	return Resolution{}
}

// Refresh bypasses both the tracker and the role cache. On failure the
// previous resolution stays in place.
func (t *Tracker) Refresh(ctx context.Context) (Resolution, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.current.Load()
	if cur == nil {
		return Resolution{}, nil
	}
	res, err := t.resolver.Refresh(ctx, cur.Actor.ID)
	if err != nil {
		return Resolution{}, err
	}
	t.current.Store(&res)
	return res, nil
}

func (t *Tracker) SignOut(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur := t.current.Load(); cur != nil {
		t.resolver.Invalidate(ctx, cur.Actor.ID)
	}
	t.current.Store(nil)
}
