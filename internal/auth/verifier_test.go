package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jidware/jidcore/internal/settings"
)

func TestVerifier_NoAuthorizationHeader(t *testing.T) {
	_, verifier := testIssuerVerifier(t)

	for _, header := range []string{"", "   "} {
		result, err := verifier.Verify(context.Background(), header, "")
		if err != nil {
			t.Fatalf("Verify(%q) error = %v", header, err)
		}
		if result.Valid || result.ErrorKind != ErrorNoAuthorizationHeader {
			t.Errorf("Verify(%q) = %+v, want NoAuthorizationHeader", header, result)
		}
	}
}

func TestVerifier_BearerPrefixOptional(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)
	token, err := issuer.Issue(context.Background(), testUser(t, "pw"), "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	for _, header := range []string{token, "Bearer " + token} {
		result, err := verifier.Verify(context.Background(), header, RoleUser)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !result.Valid {
			t.Errorf("Verify() rejected header form %q...: %s", header[:12], result.ErrorKind)
		}
	}
}

func TestVerifier_InvalidSignature(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)
	token, err := issuer.Issue(context.Background(), testAdmin(t, "pw"), "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Corrupt the signature segment. 'Q' and 'A' differ in decoded bits
	// regardless of base64 trailing-bit slack.
	flip := "A"
	if token[len(token)-1] < 'E' {
		flip = "Q"
	}
	tampered := token[:len(token)-1] + flip

	tests := []struct {
		name  string
		token string
	}{
		{"tampered signature", tampered},
		{"garbage", "not.a.token"},
		{"foreign token", foreignToken(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := verifier.Verify(context.Background(), tt.token, "")
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if result.Valid || result.ErrorKind != ErrorInvalidSignature {
				t.Errorf("Verify() = %+v, want InvalidSignature", result)
			}
		})
	}
}

// foreignToken signs a well-formed token under a different key pair.
func foreignToken(t *testing.T) string {
	t.Helper()
	issuer := NewIssuer(NewKeyManager(newMemStore(), testKeyBits), 0)
	token, err := issuer.Issue(context.Background(), testAdmin(t, "pw"), "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestVerifier_Expired(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)

	token, err := issuer.IssueExpiring(context.Background(), testAdmin(t, "pw"), -time.Minute)
	if err != nil {
		t.Fatalf("IssueExpiring() error = %v", err)
	}

	result, err := verifier.Verify(context.Background(), token, RoleAdmin)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Valid || result.ErrorKind != ErrorExpired {
		t.Errorf("Verify() = %+v, want Expired", result)
	}
}

func TestVerifier_RoleMismatch(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)

	adminToken, err := issuer.Issue(context.Background(), testAdmin(t, "pw"), "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	userToken, err := issuer.Issue(context.Background(), testUser(t, "pw"), "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name     string
		token    string
		expected Role
	}{
		{"user token on admin endpoint", userToken, RoleAdmin},
		{"admin token on user endpoint", adminToken, RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := verifier.Verify(context.Background(), tt.token, tt.expected)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if result.Valid || result.ErrorKind != ErrorInvalidTokenType {
				t.Errorf("Verify() = %+v, want InvalidTokenType", result)
			}
		})
	}

	// Either role is accepted when no role is demanded.
	for _, token := range []string{adminToken, userToken} {
		result, err := verifier.Verify(context.Background(), token, "")
		if err != nil || !result.Valid {
			t.Errorf("Verify() with no expected role = %+v, %v", result, err)
		}
	}
}

func TestVerifier_KeyFailureIsSystemError(t *testing.T) {
	store := newMemStore()
	store.values[settings.KeyPrivateKey] = "corrupt"
	store.values[settings.KeyPublicKey] = "corrupt"
	verifier := NewVerifier(NewKeyManager(store, testKeyBits))

	_, err := verifier.Verify(context.Background(), "some.token.here", "")
	if !errors.Is(err, ErrKeyMaterialCorrupt) {
		t.Fatalf("Verify() error = %v, want ErrKeyMaterialCorrupt", err)
	}
}
