package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-portal/internal/model"
)

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, model.User{ID: "1", Email: "J@X.com", Username: "jdoe"}))
	require.ErrorIs(t, repo.Create(ctx, model.User{ID: "2", Email: "j@x.com", Username: "other"}), model.ErrEmailExists)
	require.ErrorIs(t, repo.Create(ctx, model.User{ID: "3", Email: "k@x.com", Username: "JDOE"}), model.ErrUsernameExists)
	require.NoError(t, repo.Create(ctx, model.User{ID: "4", Email: "a@x.com", Username: "alice"}))

	byEmail, err := repo.FindByEmail(ctx, " j@x.COM")
	require.NoError(t, err)
	assert.Equal(t, "1", byEmail.ID)

	exists, err := repo.ExistsByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByID(ctx, "missing")
	require.ErrorIs(t, err, model.ErrUserNotFound)

	byEmail.Username = "alice"
	require.ErrorIs(t, repo.Update(ctx, byEmail), model.ErrUsernameExists)

	byEmail.Username = "johnny"
	byEmail.Email = "changed@x.com"
	require.NoError(t, repo.Update(ctx, byEmail))
	updated, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "johnny", updated.Username)
	assert.Equal(t, "j@x.com", updated.Email)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	require.NoError(t, repo.Delete(ctx, "1"))
	require.ErrorIs(t, repo.Delete(ctx, "1"), model.ErrUserNotFound)
}

func TestMemoryTokenRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryTokenRepository()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Revoke(ctx, "expired", "u", now.Add(-time.Minute)))
	require.NoError(t, repo.Revoke(ctx, "live", "u", now.Add(time.Hour)))

	revoked, err := repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	removed, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	revoked, err = repo.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}
