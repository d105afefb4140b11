// Package identity holds the authentication values that flow through a unit
// of work and the context slot they live in.
//
// A principal's own authentication is built with New. Impersonation produces
// a reduced identity with Substitute: the substitute presents as one of the
// original's authorities and keeps the original as its credentials.
//
//	alice := identity.New("alice", true, nil, identity.Authenticated, "admins")
//	sub := identity.Substitute(alice, "admins", identity.Authenticated)
//	sub.Name()        // "admins"
//	sub.Credentials() // alice
//
// The ambient identity is a context value. Installing a new one derives a
// child context, so the identity reverts as soon as the child goes out of
// scope:
//
//	err := identity.RunAs(ctx, sub, func(ctx context.Context) error {
//		return doWork(ctx) // observes sub
//	})
package identity
