package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jidware/jidcore/internal/settings"
)

// KeyManager owns the token signing keypair.
//
// The durable settings store is the system of record; the manager holds
// the only in-memory copy. On first use it reads both halves from the
// store, generating and persisting a fresh pair if either is missing.
// Initialisation is mutex-guarded so concurrent first callers observe
// exactly one generated pair; two racing generations would silently
// invalidate every token signed with the losing key.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type KeyManager struct {
	store settings.Store
	bits  int

	mu      sync.Mutex
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewKeyManager creates a key manager over the given settings store.
// bits is the modulus size used only if generation is needed; pass 0
// for the deployment default of 4096.
func NewKeyManager(store settings.Store, bits int) *KeyManager {
	if bits == 0 {
		bits = 4096
	}
	return &KeyManager{store: store, bits: bits}
}

// SigningKey returns the private signing key, initialising key material
// on first call.
func (m *KeyManager) SigningKey(ctx context.Context) (*rsa.PrivateKey, error) {
	if _, err := m.Ensure(ctx); err != nil {
		return nil, err
	}
	return m.private, nil
}

// VerificationKey returns the public verification key, initialising key
// material on first call.
func (m *KeyManager) VerificationKey(ctx context.Context) (*rsa.PublicKey, error) {
	if _, err := m.Ensure(ctx); err != nil {
		return nil, err
	}
	return m.public, nil
}

// Ensure loads or generates key material, returning whether a new pair
// was generated. It is called lazily by SigningKey/VerificationKey and
// eagerly at startup so the (slow) 4096-bit generation happens before
// the first login rather than during it.
//
// Failure modes:
//   - store read/write errors propagate unchanged; the cache stays
//     empty so a later call retries (never a silent ephemeral key)
//   - unparseable stored PEM returns ErrKeyMaterialCorrupt; the pair is
//     never regenerated over corrupt data
func (m *KeyManager) Ensure(ctx context.Context) (generated bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.private != nil {
		return false, nil
	}

	privatePEM, privErr := m.store.Get(ctx, settings.KeyPrivateKey)
	if privErr != nil && !errors.Is(privErr, settings.ErrNotFound) {
		return false, fmt.Errorf("reading private key: %w", privErr)
	}

	publicPEM, pubErr := m.store.Get(ctx, settings.KeyPublicKey)
	if pubErr != nil && !errors.Is(pubErr, settings.ErrNotFound) {
		return false, fmt.Errorf("reading public key: %w", pubErr)
	}

	// If either half is missing, generate a fresh pair. The halves are
	// persisted together; a partial pair means a previous generation
	// never completed.
	if errors.Is(privErr, settings.ErrNotFound) || errors.Is(pubErr, settings.ErrNotFound) {
		return true, m.generate(ctx)
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return false, fmt.Errorf("%w: private key: %v", ErrKeyMaterialCorrupt, err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return false, fmt.Errorf("%w: public key: %v", ErrKeyMaterialCorrupt, err)
	}

	m.private = private
	m.public = public
	return false, nil
}

// generate creates a fresh keypair, persists both halves, and caches
// them. Called with m.mu held.
func (m *KeyManager) generate(ctx context.Context) error {
	private, err := rsa.GenerateKey(rand.Reader, m.bits)
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return fmt.Errorf("encoding private key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return fmt.Errorf("encoding public key: %w", err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER})
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	// Persist both halves before caching anything. If either write
	// fails the cache stays empty and the whole pair is regenerated on
	// retry - an unpersisted key must never sign a token, because other
	// replicas could not verify it.
	if err := m.store.Set(ctx, settings.KeyPrivateKey, string(privatePEM)); err != nil {
		return fmt.Errorf("persisting private key: %w", err)
	}
	if err := m.store.Set(ctx, settings.KeyPublicKey, string(publicPEM)); err != nil {
		return fmt.Errorf("persisting public key: %w", err)
	}

	m.private = private
	m.public = &private.PublicKey
	return nil
}
