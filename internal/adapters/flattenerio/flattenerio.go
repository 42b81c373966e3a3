// Package flattenerio drives the sweep-line flattener over a merged
// staging CSV and publishes its output to the sorted interval index,
// per spec.md §4.C's batching, integrity-check and failure-cleanup
// rules.
package flattenerio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feedutil"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/merger"
	"github.com/snisarenko-labs/ipcensus/internal/domain/flatten"
	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// ErrEmptyIndex means flattening produced no records to publish.
var ErrEmptyIndex = errors.New("flattenerio: temporary index is empty after load")

// ErrCardinalityMismatch means the live index's record count didn't
// match the temporary index's count right after the rename, implying a
// concurrent mutator interfered.
var ErrCardinalityMismatch = errors.New("flattenerio: live index cardinality mismatch after rename")

// DefaultBatchSize is the number of records between optional GC cycles.
// Records are still written to the index one Insert call at a time; the
// batch size does not group index writes.
const DefaultBatchSize = 100_000

// Config controls one Load run.
type Config struct {
	CSVPath        string
	TempKey        string
	LiveKey        string
	BatchSize      int  // 0 defaults to DefaultBatchSize
	GCBetweenBatch bool // force a GC cycle after each batch to cap resident memory
}

// Loader parses a merged CSV, flattens its intervals, and publishes the
// result to an ports.IntervalStore behind a temporary key before an
// atomic rename over the live key.
type Loader struct {
	store ports.IntervalStore
}

func New(store ports.IntervalStore) *Loader {
	return &Loader{store: store}
}

// Load reads cfg.CSVPath, flattens its contents, writes the result to
// cfg.TempKey one record per Insert call (optionally running a GC cycle
// every cfg.BatchSize records), verifies it, and atomically publishes it as
// cfg.LiveKey. Any failure along the way deletes cfg.TempKey and
// returns a wrapped error; the live key is left untouched.
func (l *Loader) Load(ctx context.Context, cfg Config) error {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	raws, err := readRaws(cfg.CSVPath)
	if err != nil {
		_ = l.store.Delete(ctx, cfg.TempKey)
		return fmt.Errorf("flattenerio: %w", err)
	}

	records, err := flatten.Flatten(raws)
	if err != nil {
		_ = l.store.Delete(ctx, cfg.TempKey)
		return fmt.Errorf("flattenerio: flatten: %w", err)
	}

	if err := l.publish(ctx, cfg, records); err != nil {
		_ = l.store.Delete(ctx, cfg.TempKey)
		return err
	}
	return nil
}

func (l *Loader) publish(ctx context.Context, cfg Config, records []interval.Record) error {
	written := 0
	for i, rec := range records {
		member, err := rec.Serialize()
		if err != nil {
			return fmt.Errorf("flattenerio: serialize record: %w", err)
		}
		if err := l.store.Insert(ctx, cfg.TempKey, int64(rec.End), member); err != nil {
			return fmt.Errorf("flattenerio: insert record: %w", err)
		}
		written++

		if written%cfg.BatchSize == 0 && i != len(records)-1 {
			if cfg.GCBetweenBatch {
				runtime.GC()
			}
		}
	}

	tempCard, err := l.store.Cardinality(ctx, cfg.TempKey)
	if err != nil {
		return fmt.Errorf("flattenerio: temp cardinality: %w", err)
	}
	if tempCard == 0 {
		return ErrEmptyIndex
	}

	if err := l.store.Rename(ctx, cfg.TempKey, cfg.LiveKey); err != nil {
		return fmt.Errorf("flattenerio: rename: %w", err)
	}

	liveCard, err := l.store.Cardinality(ctx, cfg.LiveKey)
	if err != nil {
		return fmt.Errorf("flattenerio: live cardinality: %w", err)
	}
	if liveCard != tempCard {
		return ErrCardinalityMismatch
	}
	return nil
}

// readRaws parses a merger-produced CSV (header line + canonical
// "<start>|<end>|<tag_json>" data lines) into interval.Raw values.
func readRaws(path string) ([]interval.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open merged csv: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("merged csv %s has no header line", path)
	}
	if scanner.Text()+"\n" != merger.Header {
		return nil, fmt.Errorf("merged csv %s: unexpected header %q", path, scanner.Text())
	}

	var raws []interval.Raw
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		start, end, tag, err := feedutil.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("parse line %q: %w", line, err)
		}
		raws = append(raws, interval.Raw{Start: start, End: end, Tag: tag})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan merged csv: %w", err)
	}
	return raws, nil
}
