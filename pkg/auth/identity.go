// Package auth verifies bearer credentials and carries the verified caller
// through the request context.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrUnauthenticated is returned for every verification failure: malformed,
// expired or revoked credentials and an unreachable identity provider alike.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("could not validate credentials")

// Identity is the verified caller. It is read-only and never persisted.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Verifier turns an opaque bearer token into a verified Identity.
// Implementations must wrap every failure with ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// HashToken computes the SHA-256 hash of a token and returns it as a hex string.
// Tokens are only ever used as cache keys in hashed form.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
