// Package memory provides in-process IntervalStore, CacheStore, LockStore
// and StatusStore implementations for tests and single-process local-mode
// deployments, where a real Redis is unavailable or unnecessary.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.IntervalStore = (*IntervalIndex)(nil)

// IntervalIndex emulates the sorted-set contract with a plain map and a
// linear scan on query. Adequate for tests and small local datasets; not
// intended to replace redisstore at production scale.
type IntervalIndex struct {
	mu   sync.Mutex
	sets map[string]map[string]int64 // key -> member -> score
}

func NewIntervalIndex() *IntervalIndex {
	return &IntervalIndex{sets: make(map[string]map[string]int64)}
}

func (idx *IntervalIndex) Insert(_ context.Context, key string, score int64, member string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	set, ok := idx.sets[key]
	if !ok {
		set = make(map[string]int64)
		idx.sets[key] = set
	}
	set[member] = score
	return nil
}

func (idx *IntervalIndex) QueryFirstGE(_ context.Context, key string, minScore int64) (string, bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	set, ok := idx.sets[key]
	if !ok {
		return "", false, nil
	}
	bestMember := ""
	bestScore := int64(0)
	found := false
	for member, score := range set {
		if score < minScore {
			continue
		}
		if !found || score < bestScore || (score == bestScore && member < bestMember) {
			bestMember, bestScore, found = member, score, true
		}
	}
	return bestMember, found, nil
}

func (idx *IntervalIndex) Rename(_ context.Context, fromKey, toKey string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	set, ok := idx.sets[fromKey]
	if !ok {
		return fmt.Errorf("memory: rename source key %q does not exist", fromKey)
	}
	idx.sets[toKey] = set
	delete(idx.sets, fromKey)
	return nil
}

func (idx *IntervalIndex) Cardinality(_ context.Context, key string) (int64, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return int64(len(idx.sets[key])), nil
}

func (idx *IntervalIndex) Delete(_ context.Context, key string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.sets, key)
	return nil
}
