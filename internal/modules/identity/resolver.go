package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"astroseva/internal/domain"
)

// Resolution is the outcome of resolving a session. Profile is nil when the
// profile is missing or could not be fetched.
type Resolution struct {
	Actor   domain.Actor
	Profile *domain.Profile
}

type Resolver struct {
	roles    RoleStore
	profiles ProfileStore
	cache    RoleCache
	ttl      time.Duration
	metrics  LookupRecorder
}

func NewResolver(roles RoleStore, profiles ProfileStore, cache RoleCache, ttl time.Duration) *Resolver {
	if cache == nil {
		cache = NewMemoryRoleCache()
	}
	return &Resolver{roles: roles, profiles: profiles, cache: cache, ttl: ttl}
}

func (r *Resolver) WithMetrics(m LookupRecorder) *Resolver {
	r.metrics = m
	return r
}

func (r *Resolver) record(result string) {
	if r.metrics != nil {
		r.metrics.RoleLookup(result)
	}
}

// Resolve fetches role and profile concurrently. An empty actorID yields the
// anonymous resolution with no error.
func (r *Resolver) Resolve(ctx context.Context, actorID string) (Resolution, error) {
	if actorID == "" {
		return Resolution{}, nil
	}

	var (
		role    domain.Role
		profile *domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		role, err = r.ResolveRole(gctx, actorID)
		return err
	})
	g.Go(func() error {
		profile = r.fetchProfile(gctx, actorID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}

	return Resolution{Actor: domain.Actor{ID: actorID, Role: role}, Profile: profile}, nil
}

// ResolveRole returns the actor's role, served from cache when possible.
func (r *Resolver) ResolveRole(ctx context.Context, actorID string) (domain.Role, error) {
	if actorID == "" {
		return "", nil
	}
	if role, ok := r.cache.Get(ctx, actorID); ok {
		r.record("hit")
		return role, nil
	}

	role, err := r.roles.Get(ctx, actorID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role = domain.RoleUser
	case err != nil:
		r.record("error")
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	case !role.Valid():
		log.Printf("identity: unknown role %q for actor_id=%s, using %s", role, actorID, domain.RoleUser)
		role = domain.RoleUser
	}

	r.record("miss")
	r.cache.Set(ctx, actorID, role, r.ttl)
	return role, nil
}

func (r *Resolver) fetchProfile(ctx context.Context, actorID string) *domain.Profile {
	if r.profiles == nil {
		return nil
	}
	p, err := r.profiles.Get(ctx, actorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("identity: profile fetch failed actor_id=%s: %v", actorID, err)
		}
		return nil
	}
	return p
}

// Invalidate drops the cached role for actorID.
func (r *Resolver) Invalidate(ctx context.Context, actorID string) {
	if actorID == "" {
		return
	}
	r.cache.Delete(ctx, actorID)
}

// Refresh forces a re-read of the role and profile.
func (r *Resolver) Refresh(ctx context.Context, actorID string) (Resolution, error) {
	r.Invalidate(ctx, actorID)
	return r.Resolve(ctx, actorID)
}
