package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by a shared Redis instance, letting multiple
// backend processes reuse each other's provider lookups. All errors degrade to
// a miss; the job runner never sees them.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache for the given connection settings.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies connectivity at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached value, treating any Redis error as a miss.
func (c *RedisCache) Get(ctx context.Context, provider, key string) (string, bool) {
	value, err := c.client.Get(ctx, redisKey(provider, key)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("provider cache read failed for %s:%s: %v", provider, key, err)
		}
		return "", false
	}
	return value, true
}

// Set stores a value with the given TTL. Failures are logged and dropped.
func (c *RedisCache) Set(ctx context.Context, provider, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, redisKey(provider, key), value, ttl).Err(); err != nil {
		log.Printf("provider cache write failed for %s:%s: %v", provider, key, err)
	}
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func redisKey(provider, key string) string {
	return "enrichment:" + provider + ":" + key
}

var _ Cache = (*RedisCache)(nil)
