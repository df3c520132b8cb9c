package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer validates presented passwords against stored credentials and
// signs role-scoped bearer tokens.
type Issuer struct {
	keys *KeyManager
	ttl  time.Duration
}

// NewIssuer creates an issuer signing tokens with the given lifetime.
// Pass 0 for the 48-hour default.
func NewIssuer(keys *KeyManager, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{keys: keys, ttl: ttl}
}

// Issue authenticates the presented password against the credential and
// returns a signed token on success.
//
// Any authentication failure is ErrIncorrectCredentials - the issuer
// never reveals which factor failed. An account with no stored digest
// cannot authenticate at all. Key material errors propagate unchanged;
// they are system failures, not credential failures.
func (i *Issuer) Issue(ctx context.Context, cred Credential, password string) (string, error) {
	digest, salt := cred.secret()

	// A credential without password material, or with a salt too short
	// to have come from this scheme, never authenticates.
	if digest == "" || len(salt) < minSaltLength || password == "" {
		return "", ErrIncorrectCredentials
	}

	if !VerifyPassword(password, salt, digest) {
		return "", ErrIncorrectCredentials
	}

	return i.sign(ctx, cred.tokenClaims(time.Now(), i.ttl))
}

// IssueExpiring signs a token for an already-authenticated credential
// with an explicit lifetime. Used by tests and by trusted account
// bootstrap flows where the password was just set by the same caller.
func (i *Issuer) IssueExpiring(ctx context.Context, cred Credential, ttl time.Duration) (string, error) {
	return i.sign(ctx, cred.tokenClaims(time.Now(), ttl))
}

func (i *Issuer) sign(ctx context.Context, claims *Claims) (string, error) {
	key, err := i.keys.SigningKey(ctx)
	if err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
