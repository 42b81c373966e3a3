package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.CacheStore = (*ResultCache)(nil)

// ResultCache is the flat per-IP response cache of §4.G.
type ResultCache struct {
	rdb *redis.Client
}

func NewResultCache(rdb *redis.Client) *ResultCache {
	return &ResultCache{rdb: rdb}
}

func (c *ResultCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *ResultCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// FlushAll deletes every cache entry under keyPrefix. Used by
// adapters/datasetnotify's invalidate-on-swap mode; the default TTL-only
// mode never calls this.
func (c *ResultCache) FlushAll(ctx context.Context, keyPrefix string) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
