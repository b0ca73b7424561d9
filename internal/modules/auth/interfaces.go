package auth

import (
	"context"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/jwt"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type ProfileWriter interface {
	Upsert(ctx context.Context, p *domain.Profile) error
}

type RoleWriter interface {
	Set(ctx context.Context, userID string, role domain.Role) error
}

// RefreshTokenStore is storage for rotating refresh tokens.
type RefreshTokenStore interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	MarkUsed(ctx context.Context, id int64) error
	RevokeFamily(ctx context.Context, familyID string) error
}

type TokenIssuer interface {
	GenerateToken(actorID, email string) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

type SessionResolver interface {
	Resolve(ctx context.Context, actorID string) (identity.Resolution, error)
	Invalidate(ctx context.Context, actorID string)
}
