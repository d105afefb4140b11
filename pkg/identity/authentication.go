package identity

import (
	"log/slog"

	"golang.org/x/exp/slices"
)

// Authority is a named capability or group a principal holds. Equality is
// exact and case-sensitive.
type Authority string

func (a Authority) String() string {
	return string(a)
}

// Authenticated is held by every logged-in principal regardless of group
// membership.
const Authenticated Authority = "authenticated"

const anonymousName = "anonymous"

// Kind tells a principal's own authentication apart from a substitute built
// by impersonation.
type Kind int

const (
	KindNormal Kind = iota
	KindSubstitute
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindSubstitute:
		return "substitute"
	default:
		return "unknown"
	}
}

// Authentication is an immutable identity record. Values are safe to share
// between goroutines.
type Authentication struct {
	kind          Kind
	name          string
	authenticated bool
	details       any
	authorities   []Authority
	original      *Authentication
}

// New builds the authentication of a principal acting as itself.
func New(name string, authenticated bool, details any, authorities ...Authority) *Authentication {
	return &Authentication{
		kind:          KindNormal,
		name:          name,
		authenticated: authenticated,
		details:       details,
		authorities:   slices.Clone(authorities),
	}
}

// Anonymous returns the identity of a caller that presented no credentials.
func Anonymous() *Authentication {
	return &Authentication{kind: KindNormal, name: anonymousName}
}

func (a *Authentication) Kind() Kind {
	if a == nil {
		return KindNormal
	}
	return a.kind
}

// IsSubstitute reports whether a was produced by Substitute.
func (a *Authentication) IsSubstitute() bool {
	return a.Kind() == KindSubstitute
}

// Name is the principal name. For a substitute it is the name of the primary
// authority.
func (a *Authentication) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

// Principal returns the same string as Name.
func (a *Authentication) Principal() string {
	return a.Name()
}

func (a *Authentication) IsAuthenticated() bool {
	return a != nil && a.authenticated
}

func (a *Authentication) Details() any {
	if a == nil {
		return nil
	}
	return a.details
}

// Authorities returns a copy of the granted authorities in grant order.
func (a *Authentication) Authorities() []Authority {
	if a == nil {
		return nil
	}
	return slices.Clone(a.authorities)
}

func (a *Authentication) HasAuthority(authority Authority) bool {
	return a != nil && slices.Contains(a.authorities, authority)
}

// Credentials returns the wrapped original authentication of a substitute and
// nil for a normal identity.
func (a *Authentication) Credentials() any {
	if o := a.Original(); o != nil {
		return o
	}
	return nil
}

// Original returns the authentication a substitute was built from.
func (a *Authentication) Original() *Authentication {
	if a == nil {
		return nil
	}
	switch a.kind {
	case KindSubstitute:
		return a.original
	default:
		return nil
	}
}

func (a *Authentication) LogValue() slog.Value {
	if a == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{
		slog.String("name", a.name),
		slog.String("kind", a.kind.String()),
		slog.Bool("authenticated", a.authenticated),
		slog.Any("authorities", a.authorities),
	}
	if a.original != nil {
		attrs = append(attrs, slog.String("original", a.original.name))
	}
	return slog.GroupValue(attrs...)
}
