package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	uuid         UUID NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS user_groups (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	group_name TEXT NOT NULL,
	PRIMARY KEY (user_id, group_name)
);`

const selectUsersSQL = `
SELECT u.id, u.uuid, u.display_name, u.email, u.created_at,
       COALESCE(array_agg(g.group_name ORDER BY g.group_name) FILTER (WHERE g.group_name IS NOT NULL), '{}')
FROM users u
LEFT JOIN user_groups g ON g.user_id = u.id`

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db       *pgxpool.Pool
	strategy IDStrategy
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(db *pgxpool.Pool, strategy IDStrategy) (*PostgresRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if strategy == nil {
		strategy = CaseInsensitive
	}
	return &PostgresRepository{db: db, strategy: strategy}, nil
}

// EnsureSchema creates the users and user_groups tables when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) idPredicate() string {
	if r.strategy == CaseSensitive {
		return "u.id = $1"
	}
	return "lower(u.id) = lower($1)"
}

func (r *PostgresRepository) GetUser(ctx context.Context, id string) (User, error) {
	query := selectUsersSQL + " WHERE " + r.idPredicate() + " GROUP BY u.id"
	row := r.db.QueryRow(ctx, query, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetGroups(ctx context.Context, id string) ([]string, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Groups, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, selectUsersSQL+" GROUP BY u.id ORDER BY u.id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SaveUser upserts a user record and replaces its group memberships.
func (r *PostgresRepository) SaveUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrEmptyUserID
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO users (id, uuid, display_name, email, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET uuid = EXCLUDED.uuid, display_name = EXCLUDED.display_name, email = EXCLUDED.email`,
			u.ID, pgtype.UUID{Bytes: u.UUID, Valid: true}, u.DisplayName, u.Email, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM user_groups WHERE user_id = $1`, u.ID); err != nil {
			return fmt.Errorf("failed to clear groups: %w", err)
		}
		for _, g := range u.Groups {
			if _, err := tx.Exec(ctx, `INSERT INTO user_groups (user_id, group_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, u.ID, g); err != nil {
				return fmt.Errorf("failed to insert group %s: %w", g, err)
			}
		}
		return nil
	})
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u  User
		id pgtype.UUID
	)
	if err := row.Scan(&u.ID, &id, &u.DisplayName, &u.Email, &u.CreatedAt, &u.Groups); err != nil {
		return User{}, err
	}
	u.UUID = id.Bytes
	if len(u.Groups) == 0 {
		u.Groups = nil
	}
	return u, nil
}
