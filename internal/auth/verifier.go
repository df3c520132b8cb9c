package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrorKind classifies why verification rejected a token. The values
// are wire-stable: clients switch on them.
type ErrorKind string

const (
	// ErrorNoAuthorizationHeader - no token was presented at all.
	ErrorNoAuthorizationHeader ErrorKind = "NoAuthorizationHeader"

	// ErrorInvalidSignature - the token is malformed or not signed by
	// this deployment's key. Malformed tokens are not reported
	// separately; they simply fail the signature check.
	ErrorInvalidSignature ErrorKind = "InvalidSignature"

	// ErrorExpired - the signature is valid but the token is past its
	// expiry. Reported distinctly so clients can prompt re-login.
	ErrorExpired ErrorKind = "Expired"

	// ErrorInvalidTokenType - valid token, wrong role for this request.
	ErrorInvalidTokenType ErrorKind = "InvalidTokenType"
)

// Result is the structured outcome of a verification. Failures come
// back here, never as an error: any non-valid result degrades to
// "unauthenticated" at the boundary.
type Result struct {
	Valid  bool
	Claims *Claims

	// ErrorKind is set when Valid is false.
	ErrorKind ErrorKind

	// Detail is the underlying failure for logs; never sent to clients.
	Detail string
}

// Verifier checks bearer tokens against the deployment's public key.
// Verification is pure computation once key material is cached; there
// is no per-request I/O and results are never cached.
type Verifier struct {
	keys *KeyManager
}

// NewVerifier creates a verifier over the given key material.
func NewVerifier(keys *KeyManager) *Verifier {
	return &Verifier{keys: keys}
}

// Verify checks an Authorization header value and returns the decoded
// claims. expectedRole restricts which role the token must carry; pass
// "" to accept either role.
//
// The header may be the bare token or carry the conventional
// "Bearer " prefix; both forms are accepted for compatibility with
// older clients.
//
// The returned error is non-nil only for system failures (key material
// unreadable or corrupt). Token-level rejection is always expressed in
// the Result.
func (v *Verifier) Verify(ctx context.Context, authorization string, expectedRole Role) (Result, error) {
	token := strings.TrimSpace(authorization)
	if token == "" {
		return Result{ErrorKind: ErrorNoAuthorizationHeader, Detail: "no authorization header found"}, nil
	}

	// "Bearer <token>" or any "<scheme> <token>" form: keep the part
	// after the first space. Bare tokens pass through untouched.
	if _, rest, found := strings.Cut(token, " "); found {
		token = strings.TrimSpace(rest)
	}

	key, err := v.keys.VerificationKey(ctx)
	if err != nil {
		return Result{}, err
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Result{ErrorKind: ErrorExpired, Detail: err.Error()}, nil
		}
		// Malformed input, bad signature, wrong algorithm: all of it
		// fails here and none of it deserves a more specific answer.
		return Result{ErrorKind: ErrorInvalidSignature, Detail: err.Error()}, nil
	}
	if !parsed.Valid {
		return Result{ErrorKind: ErrorInvalidSignature, Detail: "token invalid"}, nil
	}

	if expectedRole != "" && claims.Type != expectedRole {
		return Result{
			ErrorKind: ErrorInvalidTokenType,
			Detail:    "token type " + string(claims.Type) + " not accepted here",
		}, nil
	}

	return Result{Valid: true, Claims: claims}, nil
}
