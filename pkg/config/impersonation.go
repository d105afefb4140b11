package config

import "strings"

var (
	PersistenceTypes = []string{"memory", "file", "postgres"}
	IDStrategies     = []string{"case-insensitive", "case-sensitive"}
)

// ImpersonationConfig configures how user records are resolved and where
// impersonate requests complete.
type ImpersonationConfig struct {
	// ContextRoot is the redirect target of every impersonate request
	ContextRoot string `env:"IMPERSONATION_CONTEXT_ROOT" env-default:"/"`
	// Header lets API clients impersonate for a single request
	Header          string `env:"IMPERSONATION_HEADER" env-default:"X-Impersonate-Authority"`
	IDStrategy      string `env:"USER_ID_STRATEGY" env-default:"case-insensitive"`
	PersistenceType string `env:"USER_PERSISTENCE_TYPE" env-default:"memory"`
	DataDir         string `env:"USER_DATA_DIR" env-default:"./data"`
	CacheSize       int    `env:"USER_CACHE_SIZE" env-default:"256"`
	// AuditAll audits every request instead of impersonated ones only
	AuditAll bool `env:"AUDIT_ALL_REQUESTS" env-default:"false"`
	// RateLimit caps impersonate requests per caller per minute, 0 disables
	RateLimit int `env:"IMPERSONATE_RATE_LIMIT" env-default:"10"`
}

func (c ImpersonationConfig) Validate() ValidationErrors {
	errs := CollectErrors(
		RequireNonEmpty("IMPERSONATION_CONTEXT_ROOT", c.ContextRoot),
		RequireOneOf("USER_ID_STRATEGY", strings.ToLower(c.IDStrategy), IDStrategies),
		RequireOneOf("USER_PERSISTENCE_TYPE", c.PersistenceType, PersistenceTypes),
		RequireNonNegative("USER_CACHE_SIZE", c.CacheSize),
		RequireNonNegative("IMPERSONATE_RATE_LIMIT", c.RateLimit),
		WhenSet(c.ContextRoot, func() *ValidationError {
			if !strings.HasPrefix(c.ContextRoot, "/") {
				return &ValidationError{Field: "IMPERSONATION_CONTEXT_ROOT", Message: "must start with '/'"}
			}
			return nil
		}),
	)
	if c.PersistenceType == "file" {
		errs = append(errs, CollectErrors(RequireNonEmpty("USER_DATA_DIR", c.DataDir))...)
	}
	return errs
}
