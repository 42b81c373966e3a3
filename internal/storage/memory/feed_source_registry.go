package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.FeedSourceRegistry = (*FeedSourceRegistry)(nil)

var errFeedSourceEmptyName = errors.New("memory: feed source name is empty")

// FeedSourceRegistry is an in-process FeedSourceRegistry for local/test
// workmode, so a single-process deployment can run the update pipeline
// without a Postgres dependency.
type FeedSourceRegistry struct {
	mu   sync.Mutex
	rows map[string]ports.FeedSourceConfig
}

func NewFeedSourceRegistry() *FeedSourceRegistry {
	return &FeedSourceRegistry{rows: make(map[string]ports.FeedSourceConfig)}
}

func (r *FeedSourceRegistry) ListEnabled(_ context.Context) ([]ports.FeedSourceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.FeedSourceConfig, 0, len(r.rows))
	for _, cfg := range r.rows {
		if cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (r *FeedSourceRegistry) Create(_ context.Context, cfg ports.FeedSourceConfig) error {
	if cfg.Name == "" {
		return errFeedSourceEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[cfg.Name] = cfg
	return nil
}

func (r *FeedSourceRegistry) Update(_ context.Context, cfg ports.FeedSourceConfig) error {
	if cfg.Name == "" {
		return errFeedSourceEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[cfg.Name] = cfg
	return nil
}

func (r *FeedSourceRegistry) Delete(_ context.Context, name string) error {
	if name == "" {
		return errFeedSourceEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, name)
	return nil
}
