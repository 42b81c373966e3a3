package update

import (
	"context"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// Health is the §6 health surface shape.
type Health struct {
	Status     string // healthy | degraded | unhealthy
	Timestamp  time.Time
	IndexReady bool
	Update     UpdateHealth
}

type UpdateHealth struct {
	InProgress bool
	LockStale  bool
	Status     ports.UpdatePhase
	LastUpdate time.Time
	DataSize   int64
}

// Health reports the current coordinator and index state for the health
// surface. liveKey is the index key lookups currently read from.
func (c *Coordinator) Health(ctx context.Context, liveKey string) (Health, error) {
	now := c.clock()
	status, err := c.status.GetStatus(ctx)
	if err != nil {
		return Health{}, err
	}

	var indexReady bool
	if c.index != nil {
		card, err := c.index.Cardinality(ctx, liveKey)
		indexReady = err == nil && card > 0
	}

	lockStale := c.lockIsStale(ctx)

	h := Health{
		Timestamp:  now,
		IndexReady: indexReady,
		Update: UpdateHealth{
			InProgress: status.Phase == ports.PhaseInProgress,
			LockStale:  lockStale,
			Status:     status.Phase,
			LastUpdate: status.LastUpdateAt,
			DataSize:   status.DataSize,
		},
	}

	switch {
	case !indexReady:
		h.Status = "unhealthy"
	case status.Phase == ports.PhaseFailed || lockStale:
		h.Status = "degraded"
	default:
		h.Status = "healthy"
	}
	return h, nil
}

func (c *Coordinator) lockIsStale(ctx context.Context) bool {
	existing, found, err := c.lock.Get(ctx, c.lockKey)
	if err != nil || !found {
		return false
	}
	pid, host, ok := parseLockValue(existing)
	if !ok || host != c.hostname {
		return false
	}
	return !c.prober.IsAlive(pid)
}
