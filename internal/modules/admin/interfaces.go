package admin

import (
	"context"

	"astroseva/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
}

type RoleRepository interface {
	Set(ctx context.Context, userID string, role domain.Role) error
	ListFor(ctx context.Context, userIDs []string) (map[string]domain.Role, error)
}

type ProfileRepository interface {
	SetVerified(ctx context.Context, id string, verified bool) (*domain.Profile, error)
	ListByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error)
}

// RoleInvalidator drops cached roles so a change takes effect on the next request.
type RoleInvalidator interface {
	Invalidate(ctx context.Context, actorID string)
}
