package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Fixed: changing any of these invalidates every
// stored credential, so they are constants rather than configuration.
const (
	saltBytes        = 32     // random salt length before base64
	pbkdf2Iterations = 100000 // HMAC-SHA512 rounds
	digestBytes      = 128    // derived key length before base64
)

// minSaltLength is the shortest stored salt accepted at login time.
// A 32-byte salt encodes to 44 base64 characters; anything shorter
// means the credential record predates this scheme or is damaged.
const minSaltLength = 40

// PasswordHash is the result of hashing a password.
type PasswordHash struct {
	// Salt is the base64-encoded salt used, generated when none was supplied.
	Salt string

	// Digest is the base64 PBKDF2 digest, or empty when no password was
	// supplied. An empty digest marks an account with no password set,
	// which is distinct from any verification failure.
	Digest string
}

// GenerateSalt returns a fresh base64-encoded 32-byte random salt.
func GenerateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HashPassword derives the storable digest for a password.
//
// If salt is empty a fresh one is generated. An empty password yields
// an empty digest ("no password set") rather than an error, matching
// the account shapes that legitimately have no password material.
func HashPassword(password, salt string) (PasswordHash, error) {
	if salt == "" {
		generated, err := GenerateSalt()
		if err != nil {
			return PasswordHash{}, err
		}
		salt = generated
	}

	if password == "" {
		return PasswordHash{Salt: salt}, nil
	}

	return PasswordHash{
		Salt:   salt,
		Digest: deriveDigest(password, salt),
	}, nil
}

// VerifyPassword recomputes the digest with the stored salt and compares
// it to the stored digest in constant time.
//
// It returns false when the stored digest is empty: an account with no
// password set never authenticates, regardless of the presented password.
func VerifyPassword(password, salt, expectedDigest string) bool {
	if password == "" || expectedDigest == "" {
		return false
	}

	candidate := deriveDigest(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(expectedDigest)) == 1
}

// deriveDigest runs PBKDF2 over the password with the base64 salt string
// taken as raw bytes, which is how every stored credential was created.
func deriveDigest(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, digestBytes, sha512.New)
	return base64.StdEncoding.EncodeToString(key)
}
