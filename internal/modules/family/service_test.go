package family

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroseva/internal/database"
	"astroseva/internal/repository"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))
	return NewService(repository.NewFamilyProfileRepository(db))
}

func TestFamilyProfiles_CRUDScopedToOwner(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	fp, err := svc.Create(ctx, "u1", FamilyProfileRequest{
		FullName:   "Kavya",
		Relation:   "Child",
		BirthDate:  "2015-01-20",
		BirthTime:  "11:05 PM",
		BirthPlace: "Nagpur",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", fp.UserID)

	updated, err := svc.Update(ctx, "u1", fp.ID, FamilyProfileRequest{FullName: "Kavya S", Relation: "Child"})
	require.NoError(t, err)
	assert.Equal(t, "Kavya S", updated.FullName)
	assert.Empty(t, updated.BirthTime)

	_, err = svc.Update(ctx, "u2", fp.ID, FamilyProfileRequest{FullName: "Hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", fp.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "u1", fp.ID))
	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFamilyProfiles_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", FamilyProfileRequest{FullName: "A", BirthTime: "25:00"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Create(ctx, "u1", FamilyProfileRequest{FullName: "A", Relation: "Neighbour"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Create(ctx, "u1", FamilyProfileRequest{})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
