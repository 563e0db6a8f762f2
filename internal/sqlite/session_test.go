package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/repository"
	"github.com/stretchr/testify/require"
)

func newSession(id string) *identity.Session {
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	return &identity.Session{
		ID:          id,
		ActorID:     "a1",
		DisplayName: "Ari",
		CreatedAt:   now,
		ExpiresAt:   now.Add(12 * time.Hour),
	}
}

func TestSessionRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	require.NoError(t, repo.Create(ctx, newSession("s1")))
	require.ErrorIs(t, repo.Create(ctx, newSession("s1")), repository.ErrConflict)

	loaded, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "a1", loaded.ActorID)
	require.Equal(t, "Ari", loaded.DisplayName)
	require.False(t, loaded.HasRole())
	require.Nil(t, loaded.ClosedAt)
	require.True(t, loaded.ExpiresAt.Equal(newSession("s1").ExpiresAt))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_SetRoleOnce(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)
	require.NoError(t, repo.Create(ctx, newSession("s1")))

	require.NoError(t, repo.SetRole(ctx, "s1", actor.RoleManager))
	require.ErrorIs(t, repo.SetRole(ctx, "s1", actor.RoleAssociate), repository.ErrConflict)
	require.ErrorIs(t, repo.SetRole(ctx, "nope", actor.RoleAssociate), repository.ErrNotFound)

	loaded, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, actor.RoleManager, loaded.Role)
}

func TestSessionRepository_Close(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)
	require.NoError(t, repo.Create(ctx, newSession("s1")))

	require.NoError(t, repo.Close(ctx, "s1"))
	require.NoError(t, repo.Close(ctx, "s1"))
	require.ErrorIs(t, repo.Close(ctx, "nope"), repository.ErrNotFound)

	loaded, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded.ClosedAt)

	require.ErrorIs(t, repo.SetRole(ctx, "s1", actor.RoleAssociate), repository.ErrConflict)
}
