package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
	"github.com/tendant/simple-idm-impersonation/pkg/impersonate"
	"github.com/tendant/simple-idm-impersonation/pkg/user"
)

// newTestRouter mounts the handler behind a middleware installing caller as
// the ambient identity. A nil caller leaves the request anonymous.
func newTestRouter(t *testing.T, caller *identity.Authentication, opts ...impersonate.Option) http.Handler {
	t.Helper()
	repo := user.NewInMemoryRepository(nil)
	require.NoError(t, repo.AddUser(user.User{ID: "alice", DisplayName: "Alice", Groups: []string{"admins"}}))
	require.NoError(t, repo.AddUser(user.User{ID: "bob", DisplayName: "Bob"}))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller != nil {
				req = req.WithContext(identity.NewContext(req.Context(), caller))
			}
			next.ServeHTTP(w, req)
		})
	})
	f := impersonate.NewFactory(repo, opts...)
	r.Use(impersonate.Middleware(f, ""))
	NewHandle(f).RegisterRoutes(r)
	return r
}

func alice() *identity.Authentication {
	return identity.New("alice", true, nil, identity.Authenticated, "admins", "devs")
}

func TestGetImpersonation(t *testing.T) {
	router := newTestRouter(t, alice())

	req := httptest.NewRequest(http.MethodGet, "/ALICE/impersonate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ImpersonationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.ID)
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.True(t, resp.Visible)
	assert.False(t, resp.Impersonating)
	assert.Equal(t, []AuthorityLink{
		{Name: "admins", URL: "impersonate?name=admins"},
		{Name: "devs", URL: "impersonate?name=devs"},
	}, resp.Authorities)
}

func TestGetImpersonation_WhileImpersonating(t *testing.T) {
	caller := identity.New("alice", true, nil, identity.Authenticated, "alice")
	router := newTestRouter(t, caller)

	req := httptest.NewRequest(http.MethodGet, "/alice/impersonate", nil)
	req.Header.Set(impersonate.DefaultHeader, "alice")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ImpersonationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Visible)
	assert.True(t, resp.Impersonating)
}

func TestGetImpersonation_Errors(t *testing.T) {
	tests := []struct {
		name   string
		caller *identity.Authentication
		path   string
		status int
		code   string
	}{
		{"unknown user", alice(), "/carol/impersonate", http.StatusNotFound, "USER_NOT_FOUND"},
		{"other user's record", alice(), "/bob/impersonate", http.StatusForbidden, "FORBIDDEN"},
		{"anonymous", nil, "/alice/impersonate", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.caller)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rr.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestImpersonate_AlwaysRedirects(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"held authority", "/alice/impersonate?name=admins"},
		{"baseline authority", "/alice/impersonate?name=authenticated"},
		{"authority not held", "/alice/impersonate?name=editors"},
		{"blank name", "/alice/impersonate"},
		{"other user's record", "/bob/impersonate?name=admins"},
		{"unknown user", "/carol/impersonate?name=admins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, alice(), impersonate.WithRedirect("/jenkins/"))

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set("Origin", "http://example.com")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "/jenkins/", rr.Header().Get("Location"))
		})
	}
}

func TestImpersonate_CrossOriginRejected(t *testing.T) {
	router := newTestRouter(t, alice())

	req := httptest.NewRequest(http.MethodPost, "/alice/impersonate?name=admins", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestWhoAmI(t *testing.T) {
	router := newTestRouter(t, alice())

	t.Run("own identity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp WhoAmIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Name)
		assert.True(t, resp.Authenticated)
		assert.False(t, resp.Impersonating)
		assert.Empty(t, resp.Original)
		assert.Equal(t, []string{"authenticated", "admins", "devs"}, resp.Authorities)
	})

	t.Run("impersonating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(impersonate.DefaultHeader, "admins")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp WhoAmIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "admins", resp.Name)
		assert.True(t, resp.Authenticated)
		assert.True(t, resp.Impersonating)
		assert.Equal(t, "alice", resp.Original)
		assert.Equal(t, []string{"admins", "authenticated"}, resp.Authorities)
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTestRouter(t, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

		var resp WhoAmIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "anonymous", resp.Name)
		assert.False(t, resp.Authenticated)
		assert.Equal(t, []string{}, resp.Authorities)
	})
}
