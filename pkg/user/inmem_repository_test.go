package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestUser creates a test user record
func createTestUser(id string, groups ...string) User {
	return User{
		ID:          id,
		UUID:        uuid.New(),
		DisplayName: "Test " + id,
		Email:       id + "@example.com",
		Groups:      groups,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestInMemoryRepository_GetUser(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(nil)
	alice := createTestUser("alice", "admins")
	require.NoError(t, repo.AddUser(alice))

	t.Run("ExactID", func(t *testing.T) {
		got, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice, got)
	})

	t.Run("CaseInsensitiveByDefault", func(t *testing.T) {
		got, err := repo.GetUser(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "bob")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		got, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		got.Groups[0] = "root"

		again, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"admins"}, again.Groups)
	})
}

func TestInMemoryRepository_CaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(CaseSensitive)
	require.NoError(t, repo.AddUser(createTestUser("alice")))

	_, err := repo.GetUser(ctx, "Alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestInMemoryRepository_AddUserEmptyID(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	assert.ErrorIs(t, repo.AddUser(User{}), ErrEmptyUserID)
}

func TestInMemoryRepository_ListAndGroups(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(nil)
	require.NoError(t, repo.AddUser(createTestUser("carol")))
	require.NoError(t, repo.AddUser(createTestUser("alice", "admins", "devs")))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].ID)
	assert.Equal(t, "carol", users[1].ID)

	groups, err := repo.GetGroups(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins", "devs"}, groups)
}
