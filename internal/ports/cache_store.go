package ports

import (
	"context"
	"time"
)

// CacheStore is the result cache namespace of §4.G: a flat key/value store
// with per-entry TTL. A missing or unparseable entry is a miss.
type CacheStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
