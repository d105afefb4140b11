package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireSameOrigin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireSameOrigin(ok)

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		want    int
	}{
		{"safe method", http.MethodGet, nil, http.StatusNoContent},
		{"no origin or referer", http.MethodPost, nil, http.StatusForbidden},
		{"same origin", http.MethodPost, map[string]string{"Origin": "http://example.com"}, http.StatusNoContent},
		{"same origin different case", http.MethodPost, map[string]string{"Origin": "http://EXAMPLE.com"}, http.StatusNoContent},
		{"cross origin", http.MethodPost, map[string]string{"Origin": "http://evil.test"}, http.StatusForbidden},
		{"cross origin with same referer", http.MethodPost, map[string]string{"Origin": "http://evil.test", "Referer": "http://example.com/alice"}, http.StatusForbidden},
		{"same referer", http.MethodPost, map[string]string{"Referer": "http://example.com/alice/impersonate"}, http.StatusNoContent},
		{"null origin same referer", http.MethodPost, map[string]string{"Origin": "null", "Referer": "http://example.com/"}, http.StatusNoContent},
		{"cross referer", http.MethodPost, map[string]string{"Referer": "http://evil.test/"}, http.StatusForbidden},
		{"bearer token", http.MethodPost, map[string]string{"Authorization": "Bearer abc.def.ghi"}, http.StatusNoContent},
		{"basic auth", http.MethodPost, map[string]string{"Authorization": "Basic YTpi"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/alice/impersonate", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
