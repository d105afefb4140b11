package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
	"github.com/tendant/simple-idm-impersonation/pkg/user"
)

type ExtraClaims struct {
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

type AuthUser struct {
	UserId      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"` // Name of the user, not username
	LoginId     string `json:"login_id,omitempty"`
	// Set when UserId parses as a uuid
	UserUuid    uuid.UUID   `json:"-"`
	ExtraClaims ExtraClaims `json:"extra_claims,omitempty"`
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserId),
		slog.Any("extra_claims", i.ExtraClaims),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation. This technique
// for defining context keys was copied from Go 1.7's new use of context in net/http.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "biz context value " + k.name
}

const ACCESS_TOKEN_NAME = "access_token"

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// GetAuthUser returns the token holder of the current request. While the
// request impersonates an authority the token holder is unchanged.
func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	authUser, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return authUser, ok && authUser != nil
}

type middlewareOptions struct {
	groups user.GroupResolver
}

// MiddlewareOption configures AuthUserMiddleware
type MiddlewareOption func(*middlewareOptions)

// WithGroupResolver merges the group memberships known to groups into the
// authorities granted by the token.
func WithGroupResolver(groups user.GroupResolver) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.groups = groups
	}
}

// AuthUserMiddleware turns the verified JWT claims of the request into an
// AuthUser and installs the caller's identity. The identity holds
// identity.Authenticated followed by the token's roles and groups.
//
// Must be used after Verifier.
func AuthUserMiddleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	options := &middlewareOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				slog.Debug("Missing or invalid JWT", "err", err)
				http.Error(w, "missing or invalid JWT", http.StatusUnauthorized)
				return
			}

			authUser, err := authUserFromClaims(claims)
			if err != nil {
				slog.Error("failed to parse claims", "error", err)
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			if authUser.UserId == "" {
				http.Error(w, "missing user ID in token", http.StatusUnauthorized)
				return
			}

			authorities := []identity.Authority{identity.Authenticated}
			authorities = appendAuthorities(authorities, authUser.ExtraClaims.Roles...)
			authorities = appendAuthorities(authorities, authUser.ExtraClaims.Groups...)
			if options.groups != nil {
				groups, err := options.groups.GetGroups(r.Context(), authUser.UserId)
				if err != nil {
					slog.Warn("Failed to resolve groups", "userId", authUser.UserId, "error", err)
				}
				authorities = appendAuthorities(authorities, groups...)
			}

			auth := identity.New(authUser.UserId, true, authUser, authorities...)
			slog.Debug("authenticated user", "auth", auth)

			ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
			ctx = identity.NewContext(ctx, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authUserFromClaims(claims map[string]interface{}) (*AuthUser, error) {
	authUser := new(AuthUser)

	if extraClaimsRaw, exists := claims["extra_claims"]; exists {
		extraClaims, ok := extraClaimsRaw.(map[string]interface{})
		if ok {
			if err := LoadFromMap(extraClaims, authUser); err != nil {
				return nil, err
			}
		}
	}

	if authUser.UserId == "" {
		if sub, ok := claims["sub"].(string); ok {
			authUser.UserId = sub
		}
	}

	if id, err := uuid.Parse(authUser.UserId); err == nil {
		authUser.UserUuid = id
	}
	return authUser, nil
}

func appendAuthorities(dst []identity.Authority, names ...string) []identity.Authority {
	for _, n := range names {
		if n == "" {
			continue
		}
		if a := identity.Authority(n); !slices.Contains(dst, a) {
			dst = append(dst, a)
		}
	}
	return dst
}

func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromCookie)(next)
	}
}

func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}
