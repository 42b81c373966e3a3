package ports

import (
	"context"
	"time"
)

// UpdateStage names a transitional state an in-progress update can report.
type UpdateStage string

const (
	StageFetching   UpdateStage = "fetching"
	StageMerging    UpdateStage = "merging"
	StageFlattening UpdateStage = "flattening"
)

// UpdatePhase is the coarse-grained outcome of an update cycle, exposed to
// the health surface.
type UpdatePhase string

const (
	PhaseInProgress UpdatePhase = "in_progress"
	PhaseCompleted  UpdatePhase = "completed"
	PhaseFailed     UpdatePhase = "failed"
	PhaseSkipped    UpdatePhase = "skipped"
)

// UpdateStatus is the sibling status key the coordinator writes alongside
// the lock (§4.F): phase, the in-progress stage if applicable, the error
// or skip reason, and when the status was last written.
type UpdateStatus struct {
	Phase        UpdatePhase
	Stage        UpdateStage
	Error        string
	SkipReason   string
	LastUpdateAt time.Time
	DataSize     int64
}

// StatusStore persists and retrieves the coordinator's current UpdateStatus.
type StatusStore interface {
	SetStatus(ctx context.Context, status UpdateStatus) error
	GetStatus(ctx context.Context) (UpdateStatus, error)
}
