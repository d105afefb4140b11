package identity

import "context"

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "identity context value " + k.name
}

var authenticationKey = &contextKey{"Authentication"}

// NewContext installs a as the ambient identity of the unit of work carried
// by the returned context. The parent context is not modified.
func NewContext(ctx context.Context, a *Authentication) context.Context {
	return context.WithValue(ctx, authenticationKey, a)
}

// FromContext returns the ambient identity, or Anonymous when none was
// installed.
func FromContext(ctx context.Context) *Authentication {
	if a, ok := ctx.Value(authenticationKey).(*Authentication); ok && a != nil {
		return a
	}
	return Anonymous()
}

// RunAs runs fn with a installed as the ambient identity. Once fn returns
// the caller keeps observing its own identity through ctx.
func RunAs(ctx context.Context, a *Authentication, fn func(context.Context) error) error {
	return fn(NewContext(ctx, a))
}
