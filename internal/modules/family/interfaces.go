package family

import (
	"context"

	"astroseva/internal/domain"
)

type Store interface {
	ListByUser(ctx context.Context, userID string) ([]domain.FamilyProfile, error)
	Get(ctx context.Context, userID, id string) (*domain.FamilyProfile, error)
	Create(ctx context.Context, fp *domain.FamilyProfile) error
	Update(ctx context.Context, fp *domain.FamilyProfile) error
	Delete(ctx context.Context, userID, id string) error
}
