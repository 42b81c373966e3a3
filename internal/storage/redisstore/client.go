// Package redisstore implements the sorted interval index, result cache,
// and distributed lock/status contracts of ports against a Redis-compatible
// store, using sorted sets for the index and plain keys for everything
// else.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the underlying Redis client. cmd/ipcensusd builds a
// single client from it and shares that one pool between the lookup
// path's index reads and the update coordinator's writes and lock traffic.
type Options struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

func NewClient(opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
