package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"agency_portal_backend/platform/logger"
)

// RedisStatsCache backs the stats cache with Redis. Cache failures are
// logged and treated as misses; stats are always recomputable.
type RedisStatsCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisStatsCache(client *redis.Client, log *logger.Logger) *RedisStatsCache {
	return &RedisStatsCache{client: client, log: log}
}

func (c *RedisStatsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.SideEffectError("stats_cache_get", err)
		return nil, false
	}
	return value, true
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.SideEffectError("stats_cache_set", err)
	}
}

var _ StatsCache = (*RedisStatsCache)(nil)
