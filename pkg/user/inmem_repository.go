package user

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	strategy IDStrategy
	users    map[string]User // strategy key -> User
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository(strategy IDStrategy) *InMemoryRepository {
	if strategy == nil {
		strategy = CaseInsensitive
	}
	return &InMemoryRepository{
		strategy: strategy,
		users:    make(map[string]User),
	}
}

// AddUser adds a user to the in-memory store (for testing/seeding)
func (r *InMemoryRepository) AddUser(u User) error {
	if u.ID == "" {
		return ErrEmptyUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[r.strategy.Key(u.ID)] = cloneUser(u)
	return nil
}

func (r *InMemoryRepository) SaveUser(ctx context.Context, u User) error {
	return r.AddUser(u)
}

func (r *InMemoryRepository) GetUser(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[r.strategy.Key(id)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryRepository) GetGroups(ctx context.Context, id string) ([]string, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Groups, nil
}

func (r *InMemoryRepository) ListUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, cloneUser(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
