package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/stockhub/pkg/auth"
)

const identityKeyPrefix = "auth:identity"

// IdentityCache stores verified identities as Redis hashes keyed by token hash.
// Key format: "auth:identity:{sha256(token)}"
type IdentityCache struct {
	client redis.Cmdable
}

// NewIdentityCache creates an IdentityCache backed by the given client.
func NewIdentityCache(r *RedisClient) *IdentityCache {
	return &IdentityCache{client: r.Client()}
}

// Get returns the cached identity for tokenHash. ok is false when the key does
// not exist or has expired.
func (c *IdentityCache) Get(ctx context.Context, tokenHash string) (auth.Identity, bool, error) {
	vals, err := c.client.HGetAll(ctx, c.key(tokenHash)).Result()
	if err != nil {
		return auth.Identity{}, false, fmt.Errorf("identity cache get: %w", err)
	}
	if len(vals) == 0 {
		return auth.Identity{}, false, nil
	}

	id := auth.Identity{ID: vals["id"], Email: vals["email"]}
	if raw := vals["created_at"]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return auth.Identity{}, false, fmt.Errorf("identity cache parse created_at: %w", err)
		}
		id.CreatedAt = createdAt
	}
	if id.ID == "" {
		return auth.Identity{}, false, nil
	}
	return id, true, nil
}

// Set writes id with the given TTL at millisecond precision. Fields and TTL
// go in one pipeline.
func (c *IdentityCache) Set(ctx context.Context, tokenHash string, id auth.Identity, ttl time.Duration) error {
	createdAt := ""
	if !id.CreatedAt.IsZero() {
		createdAt = id.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	key := c.key(tokenHash)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key,
		"id", id.ID,
		"email", id.Email,
		"created_at", createdAt,
	)
	pipe.PExpire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}

func (c *IdentityCache) key(tokenHash string) string {
	return fmt.Sprintf("%s:%s", identityKeyPrefix, tokenHash)
}
