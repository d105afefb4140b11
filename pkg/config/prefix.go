package config

import (
	"fmt"
	"strings"
)

// PrefixConfig holds configurable API endpoint prefixes for the route groups
// served by the impersonation service.
//
// Example environment variables:
//
//	API_PREFIX_USERS=/api/v1/idm/users
type PrefixConfig struct {
	Users string `env:"API_PREFIX_USERS" env-default:"/api/v1/idm/users"` // impersonation commands under user records and /me
}

// DefaultV1Prefixes returns the default v1 prefix configuration.
func DefaultV1Prefixes() PrefixConfig {
	return PrefixConfig{
		Users: "/api/v1/idm/users",
	}
}

// BuildPrefixesFromBase builds prefix configuration from a base path.
//
//	BuildPrefixesFromBase("/api/v2/idm/") // Users: "/api/v2/idm/users"
func BuildPrefixesFromBase(basePath string) PrefixConfig {
	basePath = strings.TrimSuffix(basePath, "/")
	return PrefixConfig{
		Users: basePath + "/users",
	}
}

// Validate checks that all prefix paths are valid (non-empty and start with /)
func (p PrefixConfig) Validate() error {
	prefixes := map[string]string{
		"Users": p.Users,
	}

	for name, prefix := range prefixes {
		if prefix == "" {
			return fmt.Errorf("prefix configuration missing: %s", name)
		}
		if prefix[0] != '/' {
			return fmt.Errorf("prefix must start with '/': %s = %s", name, prefix)
		}
	}

	return nil
}
