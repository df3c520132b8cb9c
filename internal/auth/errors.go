package auth

import "errors"

// Sentinel errors for auth operations.
var (
	// ErrIncorrectCredentials covers both "unknown identity" and "wrong
	// password". Deliberately undifferentiated to prevent account
	// enumeration; callers must not distinguish the two either.
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	// ErrKeyMaterialCorrupt means persisted key material exists but
	// cannot be parsed. This is fatal: silently regenerating would
	// invalidate every outstanding token without notice.
	ErrKeyMaterialCorrupt = errors.New("stored key material is corrupt")

	ErrAdminNotFound = errors.New("admin not found")
	ErrUserNotFound  = errors.New("user not found")
)
