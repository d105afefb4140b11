package client

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
)

// RequireAuth is an authorization middleware that requires valid authentication.
// Returns 401 Unauthorized if the request is not authenticated. An
// impersonating request stays authenticated.
// Must be used after AuthUserMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identity.FromContext(r.Context()).IsAuthenticated() {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuthority returns a middleware that checks if the effective identity
// holds any of the specified authorities.
// Returns 401 Unauthorized if not authenticated.
// Returns 403 Forbidden if authenticated but missing every listed authority.
// Must be used after AuthUserMiddleware.
func RequireAuthority(authorities ...identity.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := identity.FromContext(r.Context())

			if !auth.IsAuthenticated() {
				slog.Debug("Unauthenticated request to authority-protected resource", "requiredAuthorities", authorities)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, a := range authorities {
				if auth.HasAuthority(a) {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.Warn("Caller lacks required authority",
				"name", auth.Name(),
				"impersonating", auth.IsSubstitute(),
				"authorities", auth.Authorities(),
				"requiredAuthorities", authorities)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireRole is RequireAuthority for role names.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	authorities := make([]identity.Authority, 0, len(roles))
	for _, role := range roles {
		authorities = append(authorities, identity.Authority(role))
	}
	return RequireAuthority(authorities...)
}
