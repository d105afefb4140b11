// Package impersonate lets an authenticated user temporarily act as one of
// the groups ("authorities") they already belong to, with no more power than
// that group grants.
//
// A Guard is bound to one user record. Only the owner of the record passes
// its permission checks, and only the owner can use it to impersonate:
//
//	factory := impersonate.NewFactory(users)
//	guard, _, err := factory.ForUserID(ctx, "alice")
//
//	guard.Authorities(ctx) // ["admins"] for alice{authenticated, admins}
//	guard.Visible(ctx)     // false once alice is already impersonating
//
//	ctx, outcome := guard.Impersonate(ctx, "admins")
//	// identity.FromContext(ctx).Name() == "admins" for the rest of the request
//	// outcome.Redirect == "/"
//
// Impersonation lasts for the unit of work carried by the returned context.
// Nothing is persisted and there is no way to end it early.
package impersonate
