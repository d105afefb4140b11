package impersonate

import (
	"context"
	"errors"

	idmerrors "github.com/tendant/simple-idm-impersonation/pkg/errors"
	"github.com/tendant/simple-idm-impersonation/pkg/user"
)

// Factory hands out one Guard per user record.
type Factory struct {
	users    user.Repository
	ids      user.IDStrategy
	redirect string
}

// Option configures a Factory
type Option func(*Factory)

// WithIDStrategy sets the strategy used to compare user ids
func WithIDStrategy(ids user.IDStrategy) Option {
	return func(f *Factory) {
		if ids != nil {
			f.ids = ids
		}
	}
}

// WithRedirect sets where impersonate requests complete
func WithRedirect(location string) Option {
	return func(f *Factory) {
		if location != "" {
			f.redirect = location
		}
	}
}

// NewFactory creates a guard factory resolving records through users.
func NewFactory(users user.Repository, opts ...Option) *Factory {
	f := &Factory{
		users:    users,
		ids:      user.CaseInsensitive,
		redirect: DefaultRedirect,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Strategy() user.IDStrategy {
	return f.ids
}

// Redirect is where impersonate requests handed out by this factory complete.
func (f *Factory) Redirect() string {
	return f.redirect
}

// For returns the guard bound to u.
func (f *Factory) For(u user.User) *Guard {
	return f.forID(u.ID)
}

// ForUserID resolves id through the repository and returns the guard bound
// to the stored record.
func (f *Factory) ForUserID(ctx context.Context, id string) (*Guard, user.User, error) {
	if f.users == nil {
		return nil, user.User{}, idmerrors.New(idmerrors.ErrCodeInternal, "user repository not configured")
	}
	u, err := f.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.User{}, idmerrors.Wrap(err, idmerrors.ErrCodeUserNotFound, "user not found").WithDetail("user_id", id)
		}
		return nil, user.User{}, idmerrors.InternalWrap(err, "failed to resolve user")
	}
	return f.For(u), u, nil
}

func (f *Factory) forID(id string) *Guard {
	g := NewGuard(id, f.ids)
	g.redirect = f.redirect
	return g
}
