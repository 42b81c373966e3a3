package memory

import (
	"context"
	"sync"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.LockStore = (*Lock)(nil)

type lockEntry struct {
	value    string
	deadline time.Time
}

// Lock is an in-process stand-in for the distributed lock, used by tests
// and single-process local mode where there is only ever one writer.
type Lock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	now     func() time.Time
}

func NewLock() *Lock {
	return &Lock{entries: make(map[string]lockEntry), now: time.Now}
}

func (l *Lock) Acquire(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok && l.now().Before(e.deadline) {
		return false, nil
	}
	l.entries[key] = lockEntry{value: value, deadline: l.now().Add(ttl)}
	return true, nil
}

func (l *Lock) Release(_ context.Context, key, value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok || e.value != value {
		return false, nil
	}
	delete(l.entries, key)
	return true, nil
}

func (l *Lock) Get(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok || l.now().After(e.deadline) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (l *Lock) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
