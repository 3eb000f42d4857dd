package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "forumcache:q:"
	redisVersionPrefix = "forumcache:ver:"

	// Entries expire on their own as a backstop; explicit invalidation is the
	// primary mechanism.
	redisEntryTTL = time.Hour
)

// RedisCache is the production QueryCache. Each table has a version counter;
// stored keys embed the version, so invalidating a table is a single INCR and
// concurrent readers see either the old value or a fresh load, never a torn
// write.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Fetch(ctx context.Context, sig Signature, dest any, load func() error) error {
	version, err := c.client.Get(ctx, redisVersionPrefix+sig.Table).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("cache version lookup failed: %w", err)
	}

	key := redisKeyPrefix + sig.Key(version)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, dest)
	}
	if err != redis.Nil {
		return fmt.Errorf("cache read failed: %w", err)
	}

	if err := load(); err != nil {
		return err
	}

	encoded, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, encoded, redisEntryTTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, tables ...string) error {
	pipe := c.client.Pipeline()
	for _, table := range tables {
		pipe.Incr(ctx, redisVersionPrefix+table)
	}
	_, err := pipe.Exec(ctx)
	return err
}
