package user

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const usersFileName = "users.json"

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir  string
	strategy IDStrategy
	users    map[string]User // keyed by strategy key
	mutex    sync.RWMutex
}

// NewFileRepository creates a new file-based user repository
func NewFileRepository(dataDir string, strategy IDStrategy) (*FileRepository, error) {
	if strategy == nil {
		strategy = CaseInsensitive
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir:  dataDir,
		strategy: strategy,
		users:    make(map[string]User),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRepository) GetUser(ctx context.Context, id string) (User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	u, exists := r.users[r.strategy.Key(id)]
	if !exists {
		return User{}, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *FileRepository) GetGroups(ctx context.Context, id string) ([]string, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Groups, nil
}

func (r *FileRepository) ListUsers(ctx context.Context) ([]User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// SaveUser inserts or replaces a user record and persists the store.
func (r *FileRepository) SaveUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrEmptyUserID
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.users[r.strategy.Key(u.ID)] = cloneUser(u)
	return r.save()
}

// load reads user data from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, usersFileName)

	// If file doesn't exist, start with empty map
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.users = make(map[string]User, len(users))
	for _, u := range users {
		r.users[r.strategy.Key(u.ID)] = u
	}

	return nil
}

// save writes user data to file atomically
func (r *FileRepository) save() error {
	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, usersFileName+".tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, usersFileName)
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
