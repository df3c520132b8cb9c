// Package auth implements the credential and token core for jidcore.
//
// It turns raw passwords into verifiable credentials, issues signed
// bearer tokens encoding identity and authorisation scope, and
// verifies those tokens on subsequent requests:
//   - PBKDF2-SHA512 password hashing (100k iterations, 128-byte digest)
//   - RS256 bearer tokens with a fixed 48-hour lifetime, stateless by
//     design (no server-side session record, no revocation before expiry)
//   - Lazily generated 4096-bit RSA key material, persisted once in the
//     durable config store and cached for the process lifetime
//   - Role scoping: admin identity is global (by email), user identity
//     exists only within a single location
//
// Verification failures are returned as structured results, never as
// errors crossing the package boundary; callers map them to protocol
// responses. Issuance failure is the single undifferentiated
// ErrIncorrectCredentials so callers cannot leak whether the identity
// or the password was wrong.
package auth
