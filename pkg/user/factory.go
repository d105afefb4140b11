package user

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig contains configuration for creating a user repository
type RepositoryConfig struct {
	// Pool is required for PostgreSQL repositories
	Pool *pgxpool.Pool
	// DataDir is required for file-based repositories
	DataDir string
	// Strategy compares user ids; nil selects CaseInsensitive
	Strategy IDStrategy
	// CacheSize enables an LRU cache in front of the repository when positive
	CacheSize int
}

// NewRepository creates a new user repository based on the persistence type
func NewRepository(persistenceType string, config RepositoryConfig) (Repository, error) {
	var (
		repo Repository
		err  error
	)

	switch persistenceType {
	case "memory", "inmem":
		repo = NewInMemoryRepository(config.Strategy)
	case "postgres", "postgresql":
		if config.Pool == nil {
			return nil, fmt.Errorf("pool required for postgres repository")
		}
		repo, err = NewPostgresRepository(config.Pool, config.Strategy)
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		repo, err = NewFileRepository(config.DataDir, config.Strategy)
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: memory, postgres, file)", persistenceType)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize > 0 {
		return NewCachedRepository(repo, config.Strategy, config.CacheSize)
	}
	return repo, nil
}
