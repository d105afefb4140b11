package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	idmerrors "github.com/tendant/simple-idm-impersonation/pkg/errors"
	"github.com/tendant/simple-idm-impersonation/pkg/identity"
	"github.com/tendant/simple-idm-impersonation/pkg/impersonate"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AuthorityLink is one entry of the impersonation menu.
type AuthorityLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ImpersonationResponse describes the impersonation options of a user record
// for its owner.
type ImpersonationResponse struct {
	ID            string          `json:"user_id"`
	DisplayName   string          `json:"display_name,omitempty"`
	Visible       bool            `json:"visible"`
	Impersonating bool            `json:"impersonating"`
	Authorities   []AuthorityLink `json:"authorities"`
}

// WhoAmIResponse is the effective identity of the current request.
type WhoAmIResponse struct {
	Name          string   `json:"name"`
	Authenticated bool     `json:"authenticated"`
	Authorities   []string `json:"authorities"`
	Impersonating bool     `json:"impersonating"`
	Original      string   `json:"original,omitempty"`
}

// Handle serves the impersonation command under a user record.
type Handle struct {
	factory *impersonate.Factory
}

func NewHandle(factory *impersonate.Factory) *Handle {
	return &Handle{factory: factory}
}

// RegisterRoutes registers the impersonation routes.
// These routes should be mounted behind the middleware that installs the
// caller's identity.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.WhoAmI)
	r.Get("/{userID}/"+impersonate.URLName, h.GetImpersonation)
	r.With(RequireSameOrigin).Post("/{userID}/"+impersonate.URLName, h.Impersonate)
}

// Handler returns a router serving h's routes.
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// GetImpersonation handles GET /{userID}/impersonate
func (h *Handle) GetImpersonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	guard, u, err := h.factory.ForUserID(ctx, userID)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if err := guard.CheckPermission(ctx, impersonate.PermissionRead); err != nil {
		renderError(w, r, err)
		return
	}

	resp := ImpersonationResponse{}
	if err := copier.Copy(&resp, &u); err != nil {
		slog.Error("Failed to copy user record", "user_id", u.ID, "err", err)
		renderError(w, r, idmerrors.InternalWrap(err, "failed to build response"))
		return
	}
	resp.Visible = guard.Visible(ctx)
	resp.Impersonating = identity.FromContext(ctx).IsSubstitute()
	resp.Authorities = []AuthorityLink{}
	for _, name := range guard.Authorities(ctx) {
		resp.Authorities = append(resp.Authorities, AuthorityLink{Name: name, URL: impersonate.URL(name)})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// Impersonate handles POST /{userID}/impersonate?name=X. It always redirects
// to the context root; a request that could not be honored changes nothing.
func (h *Handle) Impersonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	name := r.FormValue("name")

	guard, _, err := h.factory.ForUserID(ctx, userID)
	if err != nil {
		if !idmerrors.IsCode(err, idmerrors.ErrCodeUserNotFound) {
			slog.Error("Failed to resolve user for impersonation", "user_id", userID, "err", err)
		}
		http.Redirect(w, r, h.factory.Redirect(), http.StatusFound)
		return
	}

	ctx, outcome := guard.Impersonate(ctx, name)
	if outcome.Impersonated {
		slog.Info("Impersonating", "user_id", userID, "as", identity.FromContext(ctx))
	}
	http.Redirect(w, r, outcome.Redirect, http.StatusFound)
}

// WhoAmI handles GET /me
func (h *Handle) WhoAmI(w http.ResponseWriter, r *http.Request) {
	auth := identity.FromContext(r.Context())

	resp := WhoAmIResponse{
		Name:          auth.Name(),
		Authenticated: auth.IsAuthenticated(),
		Authorities:   []string{},
		Impersonating: auth.IsSubstitute(),
	}
	for _, a := range auth.Authorities() {
		resp.Authorities = append(resp.Authorities, a.String())
	}
	if original := auth.Original(); original != nil {
		resp.Original = original.Name()
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := idmerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error: http.StatusText(status),
		Code:  string(idmerrors.GetCode(err)),
	})
}
