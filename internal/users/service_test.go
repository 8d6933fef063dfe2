package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIsIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	first, created, err := svc.Create(ctx, User{ID: "u-1", Email: "a@example.com", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Create(ctx, User{ID: "u-1", Email: "other@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	profile, err := svc.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, profile.Experiences)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	_, _, err := svc.Create(ctx, User{ID: "u-1", Email: "a@example.com"})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, User{ID: "u-2", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestEnsureOwnerProvisionsOnce(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	provisioned, err := svc.EnsureOwner(ctx, "offline-1")
	require.NoError(t, err)
	assert.True(t, provisioned)

	provisioned, err = svc.EnsureOwner(ctx, "offline-1")
	require.NoError(t, err)
	assert.False(t, provisioned)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.EnsureOwner(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfileReplacesCollections(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	_, _, err := svc.Create(ctx, User{ID: "u-1", Email: "a@example.com", Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "u-1", ProfileUpdate{
		Bio:         "old",
		Experiences: []Experience{{Title: "A"}, {Title: "B"}},
		Educations:  []Education{{School: "X"}},
	})
	require.NoError(t, err)

	name := "Ana Lima"
	profile, err := svc.UpdateProfile(ctx, "u-1", ProfileUpdate{
		Name:        &name,
		Bio:         "new",
		Phone:       "555",
		Location:    "Lisbon",
		Experiences: []Experience{{Title: "C"}, {Title: "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", profile.Bio)
	assert.Equal(t, []Experience{{Title: "C"}, {Title: "A"}}, profile.Experiences)
	assert.Empty(t, profile.Educations)

	snap, err := svc.ImportSnapshot(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		Name:        "Ana Lima",
		Email:       "a@example.com",
		Bio:         "new",
		Phone:       "555",
		Location:    "Lisbon",
		Experiences: []Experience{{Title: "C"}, {Title: "A"}},
		Educations:  []Education{},
	}, snap)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.UpdateProfile(context.Background(), "ghost", ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ImportSnapshot(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
