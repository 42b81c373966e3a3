package ports

import (
	"context"
	"time"
)

// LockStore backs the update coordinator's distributed single-writer lock
// (§4.F). Acquire is "set if absent, with TTL"; Release is a
// compare-and-delete keyed on the caller's own value so one holder can
// never release a lock it does not own.
type LockStore interface {
	Acquire(ctx context.Context, key, value string, ttl time.Duration) (acquired bool, err error)
	Release(ctx context.Context, key, value string) (released bool, err error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Delete removes a lock unconditionally; used only after stale-lock
	// detection has independently confirmed the recorded holder is dead.
	Delete(ctx context.Context, key string) error
}
