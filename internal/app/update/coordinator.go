// Package update implements the coordinator that runs the fetch->merge->
// flatten pipeline under a distributed single-writer lock (§4.F),
// publishing status and recovering cleanly from partial failure.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/logger"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// ErrSkipped is returned by RunUpdate when another updater holds the lock;
// callers (notably the scheduler) treat this as routine, not an error to
// surface.
var ErrSkipped = errors.New("update: skipped, lock held by another updater")

// Fetcher runs every configured feed plugin, writing canonical lines to
// files under stagingDir. A plugin declared abort_on_fail that fails
// fetch returns an error here; other plugin failures are its own concern
// to log and omit.
type Fetcher interface {
	Fetch(ctx context.Context, stagingDir string) error
}

// Merger concatenates the staging files under stagingDir into mergedPath
// and validates the result (§4.B).
type Merger interface {
	Merge(ctx context.Context, stagingDir, mergedPath string) error
}

// Loader parses mergedPath, flattens it, and publishes the result to the
// live index, returning the final record count (§4.C).
type Loader interface {
	Load(ctx context.Context, mergedPath string) (recordCount int64, err error)
}

// Clock exists so tests can control time without the wall clock.
type Clock func() time.Time

// DatasetPublisher announces a completed dataset swap, so subscribers
// (notably the result cache's invalidate-on-swap mode) can react.
// Optional: a Coordinator with no publisher set simply skips the
// notification, matching the TTL-only default of spec.md §9.
type DatasetPublisher interface {
	PublishDatasetSwapped(ctx context.Context) error
}

// Coordinator runs one update cycle end to end.
type Coordinator struct {
	lock   ports.LockStore
	status ports.StatusStore
	index  ports.IntervalStore // used only for defensive temp-key cleanup

	fetcher Fetcher
	merger  Merger
	loader  Loader
	prober  ProcessProber

	lockKey        string
	tmpKey         string
	stagingDir     string
	mergedPath     string // merger's working/temp output, passed to Merger.Merge
	mergedLivePath string // merger's published destination, passed to Loader.Load
	lockTTL        time.Duration
	updateTimeout  time.Duration

	log *logger.Logger

	clock     Clock
	pid       int
	hostname  string
	publisher DatasetPublisher
}

// SetPublisher attaches a DatasetPublisher the coordinator notifies
// after every successful publish to the live index.
func (c *Coordinator) SetPublisher(p DatasetPublisher) { c.publisher = p }

// Config's MergedPath and MergedLivePath mirror merger.Merge's own
// temp-write/publish-by-rename split (adapters/merger.Merge): the merger
// writes and validates at MergedPath, then renames it into MergedLivePath,
// which is the path the Loader must read.
type Config struct {
	LockKey        string
	TmpKey         string
	StagingDir     string
	MergedPath     string
	MergedLivePath string
	LockTTL        time.Duration
	UpdateTimeout  time.Duration
}

func NewCoordinator(
	lock ports.LockStore,
	status ports.StatusStore,
	index ports.IntervalStore,
	fetcher Fetcher,
	merger Merger,
	loader Loader,
	log *logger.Logger,
	cfg Config,
) *Coordinator {
	host, _ := os.Hostname()
	return &Coordinator{
		lock:          lock,
		status:        status,
		index:         index,
		fetcher:       fetcher,
		merger:        merger,
		loader:        loader,
		prober:        NewOSProber(),
		lockKey:        cfg.LockKey,
		tmpKey:         cfg.TmpKey,
		stagingDir:     cfg.StagingDir,
		mergedPath:     cfg.MergedPath,
		mergedLivePath: cfg.MergedLivePath,
		lockTTL:        cfg.LockTTL,
		updateTimeout:  cfg.UpdateTimeout,
		log:           log,
		clock:         time.Now,
		pid:           os.Getpid(),
		hostname:      host,
	}
}

// RunUpdate acquires the lock, runs fetch->merge->load, and reports
// status. It returns ErrSkipped (not a pipeline error) when another
// updater already holds the lock.
func (c *Coordinator) RunUpdate(ctx context.Context) error {
	value := c.lockValue()

	acquired, err := c.tryAcquire(ctx, value)
	if err != nil {
		return fmt.Errorf("update: acquire lock: %w", err)
	}
	if !acquired {
		_ = c.status.SetStatus(ctx, ports.UpdateStatus{
			Phase:        ports.PhaseSkipped,
			SkipReason:   "lock held by another updater",
			LastUpdateAt: c.clock(),
		})
		c.log.InfoContext(ctx, "update skipped: lock held")
		return ErrSkipped
	}
	defer func() {
		if _, err := c.lock.Release(ctx, c.lockKey, value); err != nil {
			c.log.ErrorContext(ctx, "release lock failed", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, c.updateTimeout)
	defer cancel()

	if err := c.setStage(runCtx, ports.StageFetching); err != nil {
		return err
	}
	if err := c.fetcher.Fetch(runCtx, c.stagingDir); err != nil {
		return c.fail(ctx, fmt.Errorf("update: fetch: %w", err))
	}

	if err := c.setStage(runCtx, ports.StageMerging); err != nil {
		return err
	}
	if err := c.merger.Merge(runCtx, c.stagingDir, c.mergedPath); err != nil {
		return c.fail(ctx, fmt.Errorf("update: merge: %w", err))
	}

	if err := c.setStage(runCtx, ports.StageFlattening); err != nil {
		return err
	}
	card, err := c.loader.Load(runCtx, c.mergedLivePath)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("update: load: %w", err))
	}

	_ = c.status.SetStatus(ctx, ports.UpdateStatus{
		Phase:        ports.PhaseCompleted,
		LastUpdateAt: c.clock(),
		DataSize:     card,
	})
	if c.publisher != nil {
		if err := c.publisher.PublishDatasetSwapped(ctx); err != nil {
			c.log.ErrorContext(ctx, "publish dataset swapped failed", "error", err)
		}
	}
	c.log.InfoContext(ctx, "update completed", "records", card)
	return nil
}

func (c *Coordinator) setStage(ctx context.Context, stage ports.UpdateStage) error {
	if err := c.status.SetStatus(ctx, ports.UpdateStatus{Phase: ports.PhaseInProgress, Stage: stage}); err != nil {
		c.log.ErrorContext(ctx, "set status failed", "error", err, "stage", stage)
	}
	return nil
}

// fail records a failed status and performs best-effort cleanup of the
// temp merged file and temp index key, leaving the live dataset untouched.
func (c *Coordinator) fail(ctx context.Context, cause error) error {
	_ = os.Remove(c.mergedPath)
	if c.index != nil && c.tmpKey != "" {
		_ = c.index.Delete(ctx, c.tmpKey)
	}
	_ = c.status.SetStatus(ctx, ports.UpdateStatus{
		Phase:        ports.PhaseFailed,
		Error:        cause.Error(),
		LastUpdateAt: c.clock(),
	})
	c.log.ErrorContext(ctx, "update failed", "error", cause)
	return cause
}

func (c *Coordinator) lockValue() string {
	return fmt.Sprintf("%d@%s-%d", c.pid, c.hostname, c.clock().UnixNano())
}

// tryAcquire attempts the lock, and on contention applies stale-lock
// detection: a dead holder on this host is deleted and acquisition is
// retried once; a live holder or one on a different host is busy.
func (c *Coordinator) tryAcquire(ctx context.Context, value string) (bool, error) {
	ok, err := c.lock.Acquire(ctx, c.lockKey, value, c.lockTTL)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	existing, found, err := c.lock.Get(ctx, c.lockKey)
	if err != nil {
		return false, err
	}
	if !found {
		// Lock expired/released between our failed Acquire and this Get;
		// retry once.
		return c.lock.Acquire(ctx, c.lockKey, value, c.lockTTL)
	}

	pid, host, ok := parseLockValue(existing)
	if !ok || host != c.hostname {
		return false, nil // unparseable or foreign host: busy, TTL is the backstop
	}
	if c.prober.IsAlive(pid) {
		return false, nil // live holder on this host: busy
	}

	// Stale: same host, holder process is gone.
	if err := c.lock.Delete(ctx, c.lockKey); err != nil {
		return false, err
	}
	return c.lock.Acquire(ctx, c.lockKey, value, c.lockTTL)
}

func parseLockValue(value string) (pid int, host string, ok bool) {
	dash := strings.LastIndexByte(value, '-')
	if dash < 0 {
		return 0, "", false
	}
	head := value[:dash]
	at := strings.IndexByte(head, '@')
	if at < 0 {
		return 0, "", false
	}
	pidStr, host := head[:at], head[at+1:]
	n, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, "", false
	}
	return n, host, true
}
