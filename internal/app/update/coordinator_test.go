package update

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/logger"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
	"github.com/snisarenko-labs/ipcensus/internal/storage/memory"
)

type fakeFetcher struct{ err error }

func (f *fakeFetcher) Fetch(context.Context, string) error { return f.err }

type fakeMerger struct{ err error }

func (f *fakeMerger) Merge(context.Context, string, string) error { return f.err }

type fakeLoader struct {
	count int64
	err   error
}

func (f *fakeLoader) Load(context.Context, string) (int64, error) { return f.count, f.err }

type alwaysAliveProber struct{}

func (alwaysAliveProber) IsAlive(int) bool { return true }

type neverAliveProber struct{}

func (neverAliveProber) IsAlive(int) bool { return false }

func newTestCoordinator(t *testing.T) (*Coordinator, *memory.Lock, *memory.Status) {
	t.Helper()
	lock := memory.NewLock()
	status := memory.NewStatus()
	index := memory.NewIntervalIndex()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "debug"})

	tmp, err := os.CreateTemp(t.TempDir(), "merged-*.csv")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	tmp.Close()

	c := NewCoordinator(
		lock, status, index,
		&fakeFetcher{}, &fakeMerger{}, &fakeLoader{count: 5},
		log,
		Config{
			LockKey:        "lock:update",
			TmpKey:         "tmp:live",
			StagingDir:     t.TempDir(),
			MergedPath:     tmp.Name() + ".tmp",
			MergedLivePath: tmp.Name(),
			LockTTL:        time.Minute,
			UpdateTimeout:  time.Minute,
		},
	)
	return c, lock, status
}

func TestRunUpdateSucceeds(t *testing.T) {
	c, _, status := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.RunUpdate(ctx); err != nil {
		t.Fatalf("RunUpdate: %v", err)
	}

	got, err := status.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if got.Phase != ports.PhaseCompleted || got.DataSize != 5 {
		t.Fatalf("status = %+v, want Completed with DataSize=5", got)
	}
}

func TestRunUpdateSkippedWhenLockHeld(t *testing.T) {
	c, lock, status := newTestCoordinator(t)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "lock:update", "999@"+c.hostname+"-1", time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	c.prober = alwaysAliveProber{}

	err := c.RunUpdate(ctx)
	if !errors.Is(err, ErrSkipped) {
		t.Fatalf("RunUpdate = %v, want ErrSkipped", err)
	}

	got, err := status.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if got.Phase != ports.PhaseSkipped {
		t.Fatalf("status.Phase = %v, want Skipped", got.Phase)
	}
}

func TestRunUpdateRecoversStaleLockOnSameHost(t *testing.T) {
	c, lock, _ := newTestCoordinator(t)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "lock:update", "999@"+c.hostname+"-1", time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	c.prober = neverAliveProber{}

	if err := c.RunUpdate(ctx); err != nil {
		t.Fatalf("RunUpdate: %v", err)
	}
}

func TestRunUpdateTreatsForeignHostAsBusy(t *testing.T) {
	c, lock, _ := newTestCoordinator(t)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "lock:update", "999@some-other-host-1", time.Minute); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	c.prober = neverAliveProber{} // even a dead-looking PID is not ours to judge cross-host

	err := c.RunUpdate(ctx)
	if !errors.Is(err, ErrSkipped) {
		t.Fatalf("RunUpdate = %v, want ErrSkipped for foreign-host lock", err)
	}
}

func TestRunUpdateFailureCleansUpAndReportsStatus(t *testing.T) {
	c, _, status := newTestCoordinator(t)
	c.loader = &fakeLoader{err: errors.New("flatten boom")}
	ctx := context.Background()

	err := c.RunUpdate(ctx)
	if err == nil {
		t.Fatalf("expected RunUpdate to fail")
	}

	got, getErr := status.GetStatus(ctx)
	if getErr != nil {
		t.Fatalf("GetStatus: %v", getErr)
	}
	if got.Phase != ports.PhaseFailed {
		t.Fatalf("status.Phase = %v, want Failed", got.Phase)
	}
	if _, err := os.Stat(c.mergedPath); !os.IsNotExist(err) {
		t.Fatalf("expected merged path to be removed on failure")
	}
}

func TestRunUpdateMutualExclusionConcurrent(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	c.fetcher = &fakeFetcher{}
	// Simulate a slow merge so the second RunUpdate call observes the lock
	// held by the first.
	blocking := make(chan struct{})
	c.merger = &blockingMerger{unblock: blocking}

	ctx := context.Background()
	resultCh := make(chan error, 2)

	go func() { resultCh <- c.RunUpdate(ctx) }()

	// Give the first call time to acquire the lock before firing the second.
	time.Sleep(20 * time.Millisecond)
	second := c.RunUpdate(ctx)
	close(blocking)

	first := <-resultCh

	if !errors.Is(second, ErrSkipped) {
		t.Fatalf("second RunUpdate = %v, want ErrSkipped", second)
	}
	if first != nil {
		t.Fatalf("first RunUpdate = %v, want nil", first)
	}
}

type blockingMerger struct{ unblock <-chan struct{} }

func (m *blockingMerger) Merge(ctx context.Context, _, _ string) error {
	select {
	case <-m.unblock:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
