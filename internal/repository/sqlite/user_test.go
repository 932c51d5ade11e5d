package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, githubID int64, login string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Login:     login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/123",
	}
	require.NoError(t, db.Upsert(context.Background(), user))
	return user
}

func TestUpsert_Insert(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 111, "jinwoo")

	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := db.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, found)
}

func TestUpsert_ReturningAccountKeepsRow(t *testing.T) {
	db := newTestDB(t)
	first := createTestUser(t, db, 222, "sung")

	renamed := &model.User{GitHubID: 222, Login: "sung-jinwoo", Email: "shadow@example.com"}
	require.NoError(t, db.Upsert(context.Background(), renamed))

	assert.Equal(t, first.ID, renamed.ID)
	assert.True(t, renamed.CreatedAt.Equal(first.CreatedAt))
	assert.Equal(t, "sung-jinwoo", renamed.Login)
	assert.Equal(t, "shadow@example.com", renamed.Email)
	assert.Empty(t, renamed.AvatarURL)

	other := createTestUser(t, db, 333, "cha")
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
