package impersonate

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/tendant/simple-idm-impersonation/pkg/errors"
	"github.com/tendant/simple-idm-impersonation/pkg/identity"
	"github.com/tendant/simple-idm-impersonation/pkg/user"
)

// DefaultRedirect is where every impersonate request completes.
const DefaultRedirect = "/"

// Permission names an operation on a user record. Every permission is
// granted to the record's owner and to nobody else.
type Permission string

const (
	PermissionRead        Permission = "read"
	PermissionImpersonate Permission = "impersonate"
)

// Outcome is the completion of an impersonate request. Redirect is the same
// whether or not an identity was installed.
type Outcome struct {
	Redirect     string
	Impersonated bool
}

// Guard controls impersonation for one target user record.
type Guard struct {
	targetUserID string
	ids          user.IDStrategy
	redirect     string
}

// NewGuard binds a guard to targetUserID. A nil strategy selects
// user.CaseInsensitive.
func NewGuard(targetUserID string, ids user.IDStrategy) *Guard {
	if ids == nil {
		ids = user.CaseInsensitive
	}
	return &Guard{targetUserID: targetUserID, ids: ids, redirect: DefaultRedirect}
}

func (g *Guard) TargetUserID() string {
	return g.targetUserID
}

// Authorities lists the group authority names the ambient caller may
// impersonate: everything it holds except its own name and the baseline
// identity.Authenticated, without blanks or duplicates, sorted
// case-insensitively. Dropping down to identity.Authenticated stays possible
// through Impersonate.
func (g *Guard) Authorities(ctx context.Context) []string {
	auth := identity.FromContext(ctx)
	held := auth.Authorities()
	if len(held) == 0 {
		return []string{}
	}

	name := auth.Name()
	result := make([]string, 0, len(held))
	for _, a := range held {
		n := string(a)
		if n == "" || a == identity.Authenticated || g.ids.Equals(n, name) {
			continue
		}
		result = append(result, n)
	}

	slices.SortFunc(result, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return slices.Compact(result)
}

// Visible reports whether the impersonation trigger should be offered to the
// ambient caller on this guard's record. It is never offered to a caller
// that is already impersonating.
func (g *Guard) Visible(ctx context.Context) bool {
	auth := identity.FromContext(ctx)
	switch auth.Kind() {
	case identity.KindSubstitute:
		return false
	case identity.KindNormal:
		return len(auth.Authorities()) > 0 && g.owns(auth)
	default:
		return false
	}
}

// HasPermission reports whether the ambient caller owns the target record.
// The permission requested does not change the answer.
func (g *Guard) HasPermission(ctx context.Context, permission Permission) bool {
	return g.owns(identity.FromContext(ctx))
}

// CheckPermission is HasPermission returning an ErrCodeForbidden error on
// denial.
func (g *Guard) CheckPermission(ctx context.Context, permission Permission) error {
	auth := identity.FromContext(ctx)
	if g.owns(auth) {
		return nil
	}
	slog.Debug("Permission denied on user record", "target", g.targetUserID, "caller", auth.Name(), "permission", permission)
	return errors.Forbidden("access denied").
		WithDetail("user_id", g.targetUserID).
		WithDetail("permission", string(permission))
}

// Impersonate reduces the ambient caller to the authority called name for the
// unit of work carried by the returned context.
//
// Malformed or disallowed requests (blank name, an authority the caller does
// not hold, a caller that does not own the target record) leave ctx
// untouched and report the same redirect as a successful call.
func (g *Guard) Impersonate(ctx context.Context, name string) (context.Context, Outcome) {
	outcome := Outcome{Redirect: g.redirect}

	auth := identity.FromContext(ctx)
	held := auth.Authorities()
	if len(held) == 0 || strings.TrimSpace(name) == "" {
		slog.Debug("Impersonation ignored", "reason", "no authorities or blank name", "caller", auth.Name())
		return ctx, outcome
	}
	if !g.owns(auth) {
		slog.Debug("Impersonation ignored", "reason", "caller does not own record", "caller", auth.Name(), "target", g.targetUserID)
		return ctx, outcome
	}

	idx := slices.Index(held, identity.Authority(name))
	if idx < 0 {
		slog.Debug("Impersonation ignored", "reason", "authority not held", "caller", auth.Name())
		return ctx, outcome
	}
	authority := held[idx]

	var sub *identity.Authentication
	if authority == identity.Authenticated {
		sub = identity.Substitute(auth, identity.Authenticated)
	} else {
		sub = identity.Substitute(auth, authority, identity.Authenticated)
	}

	slog.Info("Impersonation installed", "caller", auth.Name(), "authority", sub.Name())
	outcome.Impersonated = true
	return identity.NewContext(ctx, sub), outcome
}

func (g *Guard) owns(auth *identity.Authentication) bool {
	return g.ids.Equals(auth.Name(), g.targetUserID)
}
