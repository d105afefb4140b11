package impersonate

import (
	"net/http"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
)

// DefaultHeader names the request header read by Middleware.
const DefaultHeader = "X-Impersonate-Authority"

// Middleware lets a caller reduce itself to one of its authorities for a
// single request by sending header. The caller's own guard decides, so the
// same rules as the impersonate command apply; a rejected header is ignored
// and the request proceeds with the caller's identity.
//
// Must be used after the middleware that installs the caller's identity.
func Middleware(f *Factory, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.Header.Get(header)
			if name == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller := identity.FromContext(r.Context())
			ctx, _ := f.forID(caller.Name()).Impersonate(r.Context(), name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
