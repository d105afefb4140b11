package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
)

// Config holds rate limiting configuration
type Config struct {
	Capacity   int     // Max burst per caller
	RefillRate float64 // Requests per second per caller
	MaxKeys    int     // Callers tracked at once
	// IncludeHeaders adds X-RateLimit-Limit to responses
	IncludeHeaders bool
}

// DefaultConfig allows 10 state-changing requests per minute per caller
func DefaultConfig() Config {
	return Config{
		Capacity:       10,
		RefillRate:     10.0 / 60.0,
		MaxKeys:        10000,
		IncludeHeaders: true,
	}
}

// Middleware limits the state-changing requests of each caller
type Middleware struct {
	config  Config
	limiter *RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config Config) (*Middleware, error) {
	limiter, err := NewRateLimiter(config.Capacity, config.RefillRate, config.MaxKeys)
	if err != nil {
		return nil, err
	}
	return &Middleware{config: config, limiter: limiter}, nil
}

// Handler returns the rate limiting middleware handler. Safe methods pass
// through. Callers are keyed by the principal behind the effective identity,
// so impersonating does not open a fresh budget.
// Must be used after the middleware that installs the caller's identity.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		key := callerKey(identity.FromContext(r.Context()))
		if !m.limiter.Allow(key) {
			slog.Warn("Rate limit exceeded", "caller", key, "path", r.URL.Path, "method", r.Method)
			w.Header().Set("Retry-After", "60")
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, map[string]string{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		if m.config.IncludeHeaders {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", m.config.Capacity))
		}
		next.ServeHTTP(w, r)
	})
}

func callerKey(auth *identity.Authentication) string {
	for auth.IsSubstitute() {
		auth = auth.Original()
	}
	return auth.Name()
}

// GetStats returns statistics about the limiter
func (m *Middleware) GetStats() Stats {
	return m.limiter.GetStats()
}

// Reset clears the limit of a caller
func (m *Middleware) Reset(key string) {
	m.limiter.Reset(key)
}
