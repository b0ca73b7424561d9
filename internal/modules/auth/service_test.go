package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroseva/internal/database"
	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/jwt"
	"astroseva/internal/repository"
)

type authFixture struct {
	svc      *Service
	roles    *repository.RoleRepository
	profiles *repository.ProfileRepository
	tokens   *repository.RefreshTokenRepository
	cache    *identity.MemoryRoleCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))

	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	profiles := repository.NewProfileRepository(db)
	tokens := repository.NewRefreshTokenRepository(db)
	cache := identity.NewMemoryRoleCache()
	resolver := identity.NewResolver(roles, profiles, cache, time.Minute)

	svc := NewService(users, profiles, roles, tokens, jwt.New("test-secret", 15*time.Minute),
		resolver, 15*time.Minute, time.Hour, "pepper")
	return &authFixture{svc: svc, roles: roles, profiles: profiles, tokens: tokens, cache: cache}
}

func register(t *testing.T, f *authFixture, email string) *LoginResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterRequest{
		FullName: "Meera Iyer",
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return res
}

func TestRegister_CreatesProfileAndRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res := register(t, f, "Meera@Example.com")
	assert.Equal(t, "meera@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, 900, res.Tokens.ExpiresIn)

	role, err := f.roles.Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)

	p, err := f.profiles.Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera Iyer", p.FullName)
	assert.True(t, p.NeedsBirthDetails())

	_, err = f.svc.Register(ctx, RegisterRequest{FullName: "X", Email: "meera@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	register(t, f, "ravi@example.com")

	res, err := f.svc.Login(ctx, LoginRequest{Email: "RAVI@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := register(t, f, "anu@example.com")

	second, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.RefreshToken)

	// replaying the rotated token revokes the whole family
	_, err = f.svc.Refresh(ctx, first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = f.svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_RevokesFamilyAndInvalidatesRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := register(t, f, "dev@example.com")

	_, err := f.svc.Session(ctx, res.User.ID)
	require.NoError(t, err)
	_, cached := f.cache.Get(ctx, res.User.ID)
	require.True(t, cached)

	require.NoError(t, f.svc.Logout(ctx, res.User.ID, res.Tokens.RefreshToken))
	_, cached = f.cache.Get(ctx, res.User.ID)
	assert.False(t, cached)

	_, err = f.svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	assert.NoError(t, f.svc.Logout(ctx, "", "unknown"))
}

func TestSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := register(t, f, "priya@example.com")
	require.NoError(t, f.roles.Set(ctx, res.User.ID, domain.RoleAstrologer))

	view, err := f.svc.Session(ctx, "")
	require.NoError(t, err)
	assert.False(t, view.Authenticated)

	view, err = f.svc.Session(ctx, res.User.ID)
	require.NoError(t, err)
	assert.True(t, view.Authenticated)
	assert.Equal(t, domain.RoleAstrologer, view.Actor.Role)
	assert.True(t, view.NeedsBirthDetails)
}

func TestSetSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := register(t, f, "kiran@example.com")

	view, err := f.svc.SetSession(ctx, SetSessionRequest{
		CallbackURL: "https://astroseva.example/auth/callback#access_token=" + res.Tokens.AccessToken +
			"&refresh_token=" + res.Tokens.RefreshToken + "&token_type=bearer",
	})
	require.NoError(t, err)
	assert.True(t, view.Authenticated)
	assert.Equal(t, res.User.ID, view.Actor.ID)
	require.NotNil(t, view.Tokens)
	assert.Equal(t, res.Tokens.RefreshToken, view.Tokens.RefreshToken)

	view, err = f.svc.SetSession(ctx, SetSessionRequest{CallbackURL: "https://astroseva.example/auth/callback"})
	require.NoError(t, err)
	assert.False(t, view.Authenticated)

	_, err = f.svc.SetSession(ctx, SetSessionRequest{AccessToken: "garbage"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
