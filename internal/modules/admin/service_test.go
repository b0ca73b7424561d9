package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroseva/internal/database"
	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/repository"
)

type adminFixture struct {
	svc      *Service
	users    *repository.UserRepository
	roles    *repository.RoleRepository
	profiles *repository.ProfileRepository
	resolver *identity.Resolver
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))

	f := &adminFixture{
		users:    repository.NewUserRepository(db),
		roles:    repository.NewRoleRepository(db),
		profiles: repository.NewProfileRepository(db),
	}
	f.resolver = identity.NewResolver(f.roles, f.profiles, nil, time.Hour)
	f.svc = NewService(f.users, f.roles, f.profiles, f.resolver)
	return f
}

func (f *adminFixture) addUser(t *testing.T, email string) string {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func TestListUsers_DefaultsMissingRoleToUser(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	a := f.addUser(t, "a@example.com")
	b := f.addUser(t, "b@example.com")
	require.NoError(t, f.roles.Set(ctx, b, domain.RolePriest))
	require.NoError(t, f.profiles.Upsert(ctx, &domain.Profile{ID: b, FullName: "Pandit B"}))

	res, err := f.svc.ListUsers(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, res.Users, 2)
	assert.Equal(t, 2, res.Total)

	byID := map[string]UserSummary{}
	for _, u := range res.Users {
		byID[u.ID] = u
	}
	assert.Equal(t, domain.RoleUser, byID[a].Role)
	assert.Nil(t, byID[a].Profile)
	assert.Equal(t, domain.RolePriest, byID[b].Role)
	require.NotNil(t, byID[b].Profile)
	assert.Equal(t, "Pandit B", byID[b].Profile.FullName)
}

func TestSetRole_InvalidatesCachedRole(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	id := f.addUser(t, "astro@example.com")

	role, err := f.resolver.ResolveRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)

	got, err := f.svc.SetRole(ctx, id, "Astrologer", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAstrologer, got)

	role, err = f.resolver.ResolveRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAstrologer, role)

	_, err = f.svc.SetRole(ctx, id, "guru", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = f.svc.SetRole(ctx, "missing", "priest", "admin-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetVerified(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	id := f.addUser(t, "v@example.com")
	require.NoError(t, f.profiles.Upsert(ctx, &domain.Profile{ID: id, FullName: "V"}))

	p, err := f.svc.SetVerified(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)

	_, err = f.svc.SetVerified(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
