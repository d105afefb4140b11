package user

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRepository keeps recently resolved users in an LRU cache in front of
// another Repository. Misses are not cached so a newly created user becomes
// visible on the next lookup.
type CachedRepository struct {
	next     Repository
	strategy IDStrategy
	cache    *lru.Cache[string, User]
}

// NewCachedRepository wraps next with an LRU cache holding up to size users.
func NewCachedRepository(next Repository, strategy IDStrategy, size int) (*CachedRepository, error) {
	if strategy == nil {
		strategy = CaseInsensitive
	}
	cache, err := lru.New[string, User](size)
	if err != nil {
		return nil, fmt.Errorf("create user cache: %w", err)
	}
	return &CachedRepository{next: next, strategy: strategy, cache: cache}, nil
}

func (r *CachedRepository) GetUser(ctx context.Context, id string) (User, error) {
	key := r.strategy.Key(id)
	if u, ok := r.cache.Get(key); ok {
		return cloneUser(u), nil
	}

	u, err := r.next.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	r.cache.Add(key, cloneUser(u))
	return u, nil
}

func (r *CachedRepository) GetGroups(ctx context.Context, id string) ([]string, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Groups, nil
}

// ListUsers always reads through to the wrapped repository.
func (r *CachedRepository) ListUsers(ctx context.Context) ([]User, error) {
	return r.next.ListUsers(ctx)
}

// SaveUser stores u through the wrapped repository and evicts any cached
// copy.
func (r *CachedRepository) SaveUser(ctx context.Context, u User) error {
	w, ok := r.next.(Writer)
	if !ok {
		return fmt.Errorf("user repository %T is read-only", r.next)
	}
	if err := w.SaveUser(ctx, u); err != nil {
		return err
	}
	r.Invalidate(u.ID)
	return nil
}

// Invalidate drops id from the cache.
func (r *CachedRepository) Invalidate(id string) {
	r.cache.Remove(r.strategy.Key(id))
}
