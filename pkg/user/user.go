package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmptyUserID  = errors.New("user id cannot be empty")
)

// User is a user record. ID is the login name principals authenticate as;
// UUID is the stable surrogate key.
type User struct {
	ID          string    `json:"id"`
	UUID        uuid.UUID `json:"uuid"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Groups      []string  `json:"groups,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository resolves user records. Implementations compare ids with their
// configured IDStrategy.
type Repository interface {
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Writer is implemented by repositories that can store user records.
type Writer interface {
	SaveUser(ctx context.Context, u User) error
}

// GroupResolver is implemented by repositories that can report a user's
// group memberships.
type GroupResolver interface {
	GetGroups(ctx context.Context, id string) ([]string, error)
}

func cloneUser(u User) User {
	if u.Groups != nil {
		u.Groups = append([]string(nil), u.Groups...)
	}
	return u
}
