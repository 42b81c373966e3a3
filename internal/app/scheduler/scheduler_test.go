package scheduler

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/logger"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) RunUpdate(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func newTestLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.NewWithWriter(&buf, &logger.Config{Level: "debug"})
}

func TestSchedulerRunsOnceAtStartup(t *testing.T) {
	runner := &countingRunner{}
	s, err := New(runner, newTestLogger(), "0 0 1 1 *", "UTC") // once a year, never fires on its own
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	if runner.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (startup run only)", runner.calls.Load())
	}
}

func TestSchedulerRejectsBadCronExpression(t *testing.T) {
	runner := &countingRunner{}
	if _, err := New(runner, newTestLogger(), "not a cron expr", "UTC"); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestSchedulerRejectsUnknownTimezone(t *testing.T) {
	runner := &countingRunner{}
	if _, err := New(runner, newTestLogger(), "0 0 1 1 *", "Not/AZone"); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
