// Package audit provides middleware for auditing HTTP requests made under an
// impersonated identity
package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/simple-idm-impersonation/pkg/identity"
)

// Config holds the configuration for the audit middleware
type Config struct {
	// Source specifies the source of the audit events
	Source string
	// EventType specifies the type of audit events
	EventType string
	// Sink receives every event; nil selects a SlogSink on slog.Default()
	Sink Sink
	// All audits requests made with the caller's own identity too
	All bool
}

// Sink stores audit events
type Sink interface {
	Record(ctx context.Context, event Event)
}

// SlogSink writes events as structured log records
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Record(ctx context.Context, event Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit",
		"source", event.Source,
		"type", event.Type,
		"name", event.Name,
		"original", event.Original,
		"impersonating", event.Impersonating,
		"method", event.Method,
		"uri", event.URI,
		"status", event.Status,
		"timestamp", event.Timestamp.Format(time.RFC3339),
	)
}

// Middleware handles HTTP request auditing
type Middleware struct {
	config Config
}

// NewMiddleware creates a new audit middleware instance
func NewMiddleware(config Config) *Middleware {
	if config.Source == "" {
		config.Source = "impersonation"
	}
	if config.EventType == "" {
		config.EventType = "audit.impersonation"
	}
	if config.Sink == nil {
		config.Sink = SlogSink{}
	}
	return &Middleware{config: config}
}

// Event is one audited request
type Event struct {
	Source        string
	Type          string
	Name          string
	Original      string
	Impersonating bool
	Authorities   []string
	URI           string
	Method        string
	Status        int
	Timestamp     time.Time
}

// Handler records an event for each request whose effective identity is a
// substitute, naming both the authority acted as and the user behind it.
// Must be used after the middleware that installs the effective identity.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := identity.FromContext(r.Context())
		if !auth.IsSubstitute() && !m.config.All {
			next.ServeHTTP(w, r)
			return
		}

		event := Event{
			Source:        m.config.Source,
			Type:          m.config.EventType,
			Name:          auth.Name(),
			Impersonating: auth.IsSubstitute(),
			URI:           r.RequestURI,
			Method:        r.Method,
			Timestamp:     time.Now().UTC(),
		}
		if original := auth.Original(); original != nil {
			event.Original = original.Name()
		}
		for _, a := range auth.Authorities() {
			event.Authorities = append(event.Authorities, a.String())
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event.Status = ww.Status()
		if event.Status == 0 {
			event.Status = http.StatusOK
		}
		m.config.Sink.Record(r.Context(), event)
	})
}
