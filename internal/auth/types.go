package auth

import "time"

// Role represents the namespace a credential lives in.
type Role string

const (
	// RoleAdmin is a globally-unique account identified by email.
	// Admin tokens carry no location scope.
	RoleAdmin Role = "admin"

	// RoleUser is a location-scoped account; the name is unique only
	// within its location, and tokens are valid only for that location.
	RoleUser Role = "user"
)

// Credential is a stored identity record with password material.
//
// It is a closed union: exactly AdminCredential and UserCredential
// implement it. Token payload construction is an exhaustive per-variant
// method rather than branching on a role string, so a new account shape
// cannot compile without deciding its claims.
type Credential interface {
	// Role returns the namespace this credential belongs to.
	Role() Role

	// tokenClaims builds the signed payload for this credential.
	// Sealing the interface on an unexported method keeps the union closed.
	tokenClaims(now time.Time, ttl time.Duration) *Claims

	// secret returns the stored digest and salt. An empty digest means
	// "no password set" and can never authenticate.
	secret() (digest, salt string)
}

// AdminCredential is a global administrator account.
type AdminCredential struct {
	ID    string
	Email string
	Name  string

	// PasswordHash is the base64 PBKDF2 digest; empty means no password
	// is set and the account cannot log in.
	PasswordHash string
	Salt         string

	Created time.Time
}

// Role identifies admin credentials.
func (a *AdminCredential) Role() Role { return RoleAdmin }

func (a *AdminCredential) tokenClaims(now time.Time, ttl time.Duration) *Claims {
	c := newClaims(a.ID, a.Name, RoleAdmin, now, ttl)
	c.Username = a.Email
	return c
}

func (a *AdminCredential) secret() (string, string) {
	return a.PasswordHash, a.Salt
}

// UserCredential is a location-scoped account.
type UserCredential struct {
	ID       string
	Location string
	Name     string

	// PasswordHash is the base64 PBKDF2 digest; empty means no password
	// is set and the account cannot log in.
	PasswordHash string
	Salt         string

	Created time.Time
}

// Role identifies user credentials.
func (u *UserCredential) Role() Role { return RoleUser }

func (u *UserCredential) tokenClaims(now time.Time, ttl time.Duration) *Claims {
	c := newClaims(u.ID, u.Name, RoleUser, now, ttl)
	c.Location = u.Location
	return c
}

func (u *UserCredential) secret() (string, string) {
	return u.PasswordHash, u.Salt
}
