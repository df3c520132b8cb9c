package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the bearer token lifetime the registration service
// has always issued. Tokens are stateless, so shortening this later
// only affects newly issued tokens.
const DefaultTokenTTL = 48 * time.Hour

// Claims is the signed token payload.
//
// Username is set only on admin tokens, Location only on user tokens.
// The wire fields match the tokens the service has issued historically,
// so existing clients keep working.
type Claims struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     Role   `json:"type"`
	Username string `json:"username,omitempty"`
	Location string `json:"location,omitempty"`
	jwt.RegisteredClaims
}

// newClaims builds the common payload fields shared by both roles.
func newClaims(id, name string, role Role, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		ID:   id,
		Name: name,
		Type: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
