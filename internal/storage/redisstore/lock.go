package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.LockStore = (*Lock)(nil)

// releaseScript deletes key only if its current value still equals the
// caller's, so a holder can never release a lock it no longer owns (e.g.
// one that already expired and was re-acquired by someone else).
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Lock is a Redis-backed distributed single-writer lock (§4.F).
type Lock struct {
	rdb *redis.Client
}

func NewLock(rdb *redis.Client) *Lock {
	return &Lock{rdb: rdb}
}

func (l *Lock) Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (l *Lock) Release(ctx context.Context, key, value string) (bool, error) {
	res, err := l.rdb.Eval(ctx, releaseScript, []string{key}, value).Result()
	if err != nil {
		return false, err
	}
	n, ok := res.(int64)
	if !ok {
		return false, errors.New("redisstore: unexpected release script result")
	}
	return n == 1, nil
}

func (l *Lock) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := l.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (l *Lock) Delete(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, key).Err()
}
