package tokengenerator

import "time"

// Subject is the user a token is issued for. Roles and Groups become the
// authorities of the caller once the token is verified.
type Subject struct {
	UserID      string
	DisplayName string
	Username    string
	Email       string
	Roles       []string
	Groups      []string
}

// Claims returns the extra_claims payload understood by the client
// middleware.
func (s Subject) Claims() map[string]interface{} {
	nested := map[string]interface{}{}
	if s.Username != "" {
		nested["username"] = s.Username
	}
	if s.Email != "" {
		nested["email"] = s.Email
	}
	if len(s.Roles) > 0 {
		nested["roles"] = s.Roles
	}
	if len(s.Groups) > 0 {
		nested["groups"] = s.Groups
	}

	claims := map[string]interface{}{
		"user_id":      s.UserID,
		"extra_claims": nested,
	}
	if s.DisplayName != "" {
		claims["display_name"] = s.DisplayName
	}
	return claims
}

// GenerateAccessToken issues an access token for s.
func GenerateAccessToken(g TokenGenerator, s Subject, expiry time.Duration) (string, time.Time, error) {
	return g.GenerateToken(s.UserID, expiry, s.Claims())
}
