package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCursorCache is a CursorCache for multi-instance deployments, letting
// any replica resolve a logical page from a cursor chain another replica
// traversed. Expiry is delegated to Redis key TTLs. Backend failures are
// logged and reported as misses so a Redis outage degrades to InvalidPage
// instead of failing requests outright.
type RedisCursorCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisCursorCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCursorCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCursorCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCursorCache) Get(ctx context.Context, scope string, page int) (string, bool) {
	token, err := c.client.Get(ctx, redisCursorKey(scope, page)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.log.Warn().Err(err).Int("page", page).Msg("cursor cache read failed")
		return "", false
	}
	return token, true
}

func (c *RedisCursorCache) Put(ctx context.Context, scope string, page int, token string) {
	if err := c.client.Set(ctx, redisCursorKey(scope, page), token, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int("page", page).Msg("cursor cache write failed")
	}
}

func redisCursorKey(scope string, page int) string {
	return fmt.Sprintf("cursor:%s:%s", scope, strconv.Itoa(page))
}
