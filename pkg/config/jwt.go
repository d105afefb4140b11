package config

import "time"

// JWTConfig holds the settings shared by token verification and issuance
type JWTConfig struct {
	Secret            string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer            string        `env:"JWT_ISSUER" env-default:"simple-idm"`
	Audience          string        `env:"JWT_AUDIENCE" env-default:""`
	AccessTokenExpiry time.Duration `env:"ACCESS_TOKEN_EXPIRY" env-default:"15m"`
}

// MinSecretLength is the shortest accepted HS256 secret.
const MinSecretLength = 16

func (j JWTConfig) Validate() ValidationErrors {
	return CollectErrors(
		RequireMinLength("JWT_SECRET", j.Secret, MinSecretLength),
		RequirePositiveDuration("ACCESS_TOKEN_EXPIRY", j.AccessTokenExpiry),
	)
}
