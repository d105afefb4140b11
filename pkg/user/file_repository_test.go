package user

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory and repository for testing
func setupTestRepo(t *testing.T) (*FileRepository, string) {
	tempDir := t.TempDir()

	repo, err := NewFileRepository(tempDir, nil)
	require.NoError(t, err)

	return repo, tempDir
}

func TestFileRepository_NewRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "users")

	repo, err := NewFileRepository(dir, nil)
	assert.NoError(t, err)
	assert.NotNil(t, repo)
	assert.DirExists(t, dir)
}

func TestFileRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	alice := createTestUser("Alice", "admins")

	require.NoError(t, repo.SaveUser(ctx, alice))

	got, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.UUID, got.UUID)
	assert.Equal(t, []string{"admins"}, got.Groups)

	_, err = repo.GetUser(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.SaveUser(ctx, User{}), ErrEmptyUserID)
}

func TestFileRepository_Persistence(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupTestRepo(t)
	require.NoError(t, repo.SaveUser(ctx, createTestUser("alice", "admins")))
	require.NoError(t, repo.SaveUser(ctx, createTestUser("bob")))

	assert.FileExists(t, filepath.Join(dir, usersFileName))
	assert.NoFileExists(t, filepath.Join(dir, usersFileName+".tmp"))

	reloaded, err := NewFileRepository(dir, nil)
	require.NoError(t, err)

	users, err := reloaded.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].ID)

	groups, err := reloaded.GetGroups(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins"}, groups)
}

func TestFileRepository_EmptyAndCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, usersFileName)

	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := NewFileRepository(dir, nil)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = NewFileRepository(dir, nil)
	assert.Error(t, err)
}
