package memory

import (
	"context"
	"sync"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.StatusStore = (*Status)(nil)

// Status is an in-process holder of the coordinator's UpdateStatus.
type Status struct {
	mu     sync.Mutex
	status ports.UpdateStatus
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) SetStatus(_ context.Context, status ports.UpdateStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return nil
}

func (s *Status) GetStatus(_ context.Context) (ports.UpdateStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}
