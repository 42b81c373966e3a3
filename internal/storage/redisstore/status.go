package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.StatusStore = (*Status)(nil)

// Status persists the coordinator's UpdateStatus as JSON under a single
// key sibling to the lock.
type Status struct {
	rdb *redis.Client
	key string
}

func NewStatus(rdb *redis.Client, key string) *Status {
	return &Status{rdb: rdb, key: key}
}

func (s *Status) SetStatus(ctx context.Context, status ports.UpdateStatus) error {
	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, string(b), 0).Err()
}

func (s *Status) GetStatus(ctx context.Context) (ports.UpdateStatus, error) {
	v, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return ports.UpdateStatus{}, nil
	}
	if err != nil {
		return ports.UpdateStatus{}, err
	}
	var status ports.UpdateStatus
	if err := json.Unmarshal([]byte(v), &status); err != nil {
		return ports.UpdateStatus{}, err
	}
	return status, nil
}
