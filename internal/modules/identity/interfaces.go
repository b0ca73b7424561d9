package identity

import (
	"context"
	"time"

	"astroseva/internal/domain"
)

// RoleStore returns gorm.ErrRecordNotFound when no role row exists.
type RoleStore interface {
	Get(ctx context.Context, userID string) (domain.Role, error)
}

type ProfileStore interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
}

type RoleCache interface {
	Get(ctx context.Context, actorID string) (domain.Role, bool)
	Set(ctx context.Context, actorID string, role domain.Role, ttl time.Duration)
	Delete(ctx context.Context, actorID string)
}

type LookupRecorder interface {
	RoleLookup(result string)
}
