package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testIssuerVerifier(t *testing.T) (*Issuer, *Verifier) {
	t.Helper()
	keys := NewKeyManager(newMemStore(), testKeyBits)
	return NewIssuer(keys, 0), NewVerifier(keys)
}

func testAdmin(t *testing.T, password string) *AdminCredential {
	t.Helper()
	hash, err := HashPassword(password, "")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &AdminCredential{
		ID:           "a1",
		Email:        "admin@example.com",
		Name:         "Ada",
		PasswordHash: hash.Digest,
		Salt:         hash.Salt,
		Created:      time.Now(),
	}
}

func testUser(t *testing.T, password string) *UserCredential {
	t.Helper()
	hash, err := HashPassword(password, "")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &UserCredential{
		ID:           "u1",
		Location:     "loc1",
		Name:         "Ford",
		PasswordHash: hash.Digest,
		Salt:         hash.Salt,
		Created:      time.Now(),
	}
}

func TestIssuer_AdminRoundTrip(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)
	admin := testAdmin(t, "hunter2!")

	token, err := issuer.Issue(context.Background(), admin, "hunter2!")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	result, err := verifier.Verify(context.Background(), token, RoleAdmin)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Valid {
		t.Fatalf("Verify() rejected a fresh token: %s (%s)", result.ErrorKind, result.Detail)
	}

	claims := result.Claims
	if claims.ID != "a1" || claims.Name != "Ada" || claims.Type != RoleAdmin {
		t.Errorf("claims = %+v, want id=a1 name=Ada type=admin", claims)
	}
	if claims.Username != "admin@example.com" {
		t.Errorf("Username = %q, want admin email", claims.Username)
	}
	if claims.Location != "" {
		t.Errorf("admin token carries location %q", claims.Location)
	}
}

func TestIssuer_UserRoundTrip(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)
	user := testUser(t, "towel")

	token, err := issuer.Issue(context.Background(), user, "towel")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	result, err := verifier.Verify(context.Background(), token, RoleUser)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Valid {
		t.Fatalf("Verify() rejected a fresh token: %s (%s)", result.ErrorKind, result.Detail)
	}

	claims := result.Claims
	if claims.ID != "u1" || claims.Name != "Ford" || claims.Type != RoleUser {
		t.Errorf("claims = %+v, want id=u1 name=Ford type=user", claims)
	}
	if claims.Location != "loc1" {
		t.Errorf("Location = %q, want loc1", claims.Location)
	}
	if claims.Username != "" {
		t.Errorf("user token carries username %q", claims.Username)
	}
}

func TestIssuer_TokenLifetime(t *testing.T) {
	issuer, verifier := testIssuerVerifier(t)
	admin := testAdmin(t, "pw")

	token, err := issuer.Issue(context.Background(), admin, "pw")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	result, err := verifier.Verify(context.Background(), token, RoleAdmin)
	if err != nil || !result.Valid {
		t.Fatalf("Verify() = %+v, %v", result, err)
	}

	lifetime := result.Claims.ExpiresAt.Sub(result.Claims.IssuedAt.Time)
	if lifetime != DefaultTokenTTL {
		t.Errorf("token lifetime = %v, want %v", lifetime, DefaultTokenTTL)
	}
}

func TestIssuer_RejectsBadCredentials(t *testing.T) {
	issuer, _ := testIssuerVerifier(t)
	admin := testAdmin(t, "correct")

	tests := []struct {
		name     string
		cred     Credential
		password string
	}{
		{"wrong password", admin, "incorrect"},
		{"empty password", admin, ""},
		{"no stored digest", &AdminCredential{ID: "a2", Email: "x@example.com", Salt: admin.Salt}, "correct"},
		{"short salt", &AdminCredential{ID: "a3", Email: "y@example.com", PasswordHash: admin.PasswordHash, Salt: "tooshort"}, "correct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Issue(context.Background(), tt.cred, tt.password)
			if !errors.Is(err, ErrIncorrectCredentials) {
				t.Errorf("Issue() error = %v, want ErrIncorrectCredentials", err)
			}
		})
	}
}

func TestIssuer_KeyFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("database locked")
	issuer := NewIssuer(NewKeyManager(store, testKeyBits), 0)
	admin := testAdmin(t, "pw")

	_, err := issuer.Issue(context.Background(), admin, "pw")
	if err == nil || errors.Is(err, ErrIncorrectCredentials) {
		t.Fatalf("Issue() error = %v, want a key material failure", err)
	}
}
