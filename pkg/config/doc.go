// Package config holds the environment-driven settings of the impersonation
// service and the helpers that validate them. Structs carry cleanenv tags and
// are read in cmd/impersonation:
//
//	var cfg Config
//	cleanenv.ReadEnv(&cfg)
//	err := config.Validate(cfg.Database.Validate, cfg.JWT.Validate)
package config
