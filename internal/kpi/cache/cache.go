// Package cache keeps recently computed trend results in redis. The cache
// is strictly optional: a nil cache (no redis configured) degrades to
// recomputing every request, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type TrendCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New returns nil when no client is configured or the TTL disables caching.
func New(client *redis.Client, ttl time.Duration, log *zap.Logger) *TrendCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &TrendCache{client: client, ttl: ttl, log: log.Named("kpi.cache")}
}

// Key builds the cache key. The client id leads so keys from different
// tenants can never collide.
func Key(clientID snowflake.ID, from, to time.Time, interval string) string {
	return fmt.Sprintf("kpi:trend:%d:%s:%s:%s", clientID, from.Format("2006-01-02"), to.Format("2006-01-02"), interval)
}

// Get unmarshals a cached value into dst. A miss, a decode failure, or a
// redis error all report false; the caller recomputes.
func (c *TrendCache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a value best-effort. Failures are logged and swallowed.
func (c *TrendCache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
