package redisstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.IntervalStore = (*IntervalIndex)(nil)

// IntervalIndex is a ZSET-backed sorted interval index: members are
// canonical serialized interval strings, scored by their end_int.
type IntervalIndex struct {
	rdb *redis.Client
}

func NewIntervalIndex(rdb *redis.Client) *IntervalIndex {
	return &IntervalIndex{rdb: rdb}
}

func (idx *IntervalIndex) Insert(ctx context.Context, key string, score int64, member string) error {
	return idx.rdb.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: member}).Err()
}

func (idx *IntervalIndex) QueryFirstGE(ctx context.Context, key string, minScore int64) (string, bool, error) {
	res, err := idx.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:    strconv.FormatInt(minScore, 10),
		Max:    "+inf",
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		return "", false, err
	}
	if len(res) == 0 {
		return "", false, nil
	}
	return res[0], true, nil
}

// Rename atomically replaces toKey with fromKey's contents. RENAME
// overwrites toKey unconditionally, matching the "publish then swap"
// semantics the loader needs.
func (idx *IntervalIndex) Rename(ctx context.Context, fromKey, toKey string) error {
	err := idx.rdb.Rename(ctx, fromKey, toKey).Err()
	if errors.Is(err, redis.Nil) {
		return errors.New("redisstore: rename source key does not exist")
	}
	return err
}

func (idx *IntervalIndex) Cardinality(ctx context.Context, key string) (int64, error) {
	return idx.rdb.ZCard(ctx, key).Result()
}

func (idx *IntervalIndex) Delete(ctx context.Context, key string) error {
	return idx.rdb.Del(ctx, key).Err()
}
