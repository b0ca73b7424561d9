package profile

import (
	"context"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
)

type ProfileStore interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}

type RoleRefresher interface {
	Refresh(ctx context.Context, actorID string) (identity.Resolution, error)
}
