package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ghuser/stockhub/pkg/logger"
)

// IdentityCache stores verified identities keyed by token hash.
// pkg/cache provides the Redis implementation.
type IdentityCache interface {
	Get(ctx context.Context, tokenHash string) (Identity, bool, error)
	Set(ctx context.Context, tokenHash string, id Identity, ttl time.Duration) error
}

// CachingVerifier remembers successful verifications of next for ttl, capped
// at the token's own exp claim. Tokens without a readable exp are never
// cached. Failures are never cached, and cache errors fall through to next.
type CachingVerifier struct {
	next  Verifier
	cache IdentityCache
	ttl   time.Duration
	log   logger.Logger
}

// NewCachingVerifier wraps next with cache. A ttl <= 0 disables caching.
func NewCachingVerifier(next Verifier, cache IdentityCache, ttl time.Duration, log logger.Logger) Verifier {
	if cache == nil || ttl <= 0 {
		return next
	}
	return &CachingVerifier{next: next, cache: cache, ttl: ttl, log: log}
}

// Verify implements Verifier.
func (v *CachingVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	key := HashToken(token)

	if v.entryTTL(token, time.Now()) > 0 {
		id, ok, err := v.cache.Get(ctx, key)
		if err != nil {
			v.log.WarnContext(ctx, "identity cache read failed", "error", err)
		} else if ok {
			return id, nil
		}
	}

	id, err := v.next.Verify(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	ttl := v.entryTTL(token, time.Now())
	if ttl <= 0 {
		return id, nil
	}
	if err := v.cache.Set(ctx, key, id, ttl); err != nil {
		v.log.WarnContext(ctx, "identity cache write failed", "error", err)
	}
	return id, nil
}

// entryTTL is how long a verified token may be served from cache at now.
// Zero means do not cache.
func (v *CachingVerifier) entryTTL(token string, now time.Time) time.Duration {
	exp, ok := tokenExpiry(token)
	if !ok {
		return 0
	}
	return max(min(v.ttl, exp.Sub(now)), 0)
}

// tokenExpiry reads exp without checking the signature. It is only called
// after next has verified the token.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
