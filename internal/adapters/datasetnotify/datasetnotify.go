// Package datasetnotify resolves spec.md §9's cache-invalidation open
// question: whether a cache entry survives a dataset swap or only
// expires by TTL. A Publisher fires once the update coordinator's
// atomic rename completes; a Subscriber flushes the result cache in
// response. Adapted from the teacher's subnetupdatepublisher/
// redissubscriber pair, which did the analogous "subnets changed,
// reload" broadcast for its in-process subnet list.
package datasetnotify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher announces that the live dataset was swapped.
type Publisher interface {
	PublishDatasetSwapped(ctx context.Context) error
}

// Flusher discards cached entries under a key prefix. Both the Redis and
// in-memory result cache implementations provide FlushAll, but it is
// intentionally not part of ports.CacheStore: most deployments run in
// the default TTL-only mode and never need it.
type Flusher interface {
	FlushAll(ctx context.Context, keyPrefix string) error
}

// LocalPublisher is a no-op: in TTL-only mode (the spec's literal
// default), cache entries simply expire after 48h and no swap
// notification is needed.
type LocalPublisher struct{}

func NewLocalPublisher() LocalPublisher { return LocalPublisher{} }

func (LocalPublisher) PublishDatasetSwapped(context.Context) error { return nil }

// RedisPublisher broadcasts a swap notification on a Redis pub/sub
// channel, mirroring the teacher's RedisSubnetUpdatesPublisher.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) PublishDatasetSwapped(ctx context.Context) error {
	return p.rdb.Publish(ctx, p.channel, "swapped").Err()
}

// Subscriber listens for swap notifications and flushes the result
// cache's keyPrefix namespace in response, mirroring the teacher's
// SubnetUpdatesSubscriber.
type Subscriber struct {
	rdb       *redis.Client
	channel   string
	cache     Flusher
	keyPrefix string
}

func NewSubscriber(rdb *redis.Client, channel string, cache Flusher, keyPrefix string) *Subscriber {
	return &Subscriber{rdb: rdb, channel: channel, cache: cache, keyPrefix: keyPrefix}
}

// Run subscribes and blocks, flushing the cache on every notification,
// until ctx is cancelled or the channel closes.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer pubsub.Close()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return fmt.Errorf("datasetnotify: pubsub channel closed")
			}
			if err := s.cache.FlushAll(ctx, s.keyPrefix); err != nil {
				return fmt.Errorf("datasetnotify: flush cache: %w", err)
			}
		}
	}
}
