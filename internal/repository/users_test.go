package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	id := mustCreateUser(t, db, "drinker@example.com")

	exists, err := repo.ExistsByEmail(ctx, "drinker@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	u, err := repo.FindByEmail(ctx, "drinker@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.False(t, u.Verified)

	require.NoError(t, repo.MarkVerified(ctx, "drinker@example.com"))
	u, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	u.Nickname = "nick"
	u.SojuUnit = 2
	u.SojuAmount = 1.5
	require.NoError(t, repo.UpdateProfile(ctx, u))
	require.NoError(t, repo.UpdatePassword(ctx, id, "new-hash"))

	u, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "nick", u.Nickname)
	assert.Equal(t, 2, u.SojuUnit)
	assert.Equal(t, 1.5, u.SojuAmount)
	assert.Equal(t, "new-hash", u.PasswordHash)
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
