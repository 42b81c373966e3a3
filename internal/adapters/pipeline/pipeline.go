// Package pipeline wires the feed source registry, merger and flattener
// into the three small interfaces app/update.Coordinator depends on
// (Fetcher, Merger, Loader), so the coordinator itself never knows about
// plugin construction, file layout or the sorted index's cardinality
// check.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feeds/simplelist"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/feeds/structuredjson"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/feeds/zipcsv"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/flattenerio"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/merger"
	"github.com/snisarenko-labs/ipcensus/internal/logger"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// BuildPlugin constructs the ports.FeedPlugin named by cfg.Kind from its
// generic Params map. Kinds are the ones adapters/feeds implements;
// unrecognized kinds are a registry configuration error, not a crash.
func BuildPlugin(cfg ports.FeedSourceConfig, client *http.Client) (ports.FeedPlugin, error) {
	switch cfg.Kind {
	case "simplelist":
		return simplelist.New(
			cfg.Name, cfg.Params["version"], cfg.Params["description"],
			cfg.Params["url"], cfg.Params["tag_type"], cfg.AbortOnFail, client,
		), nil
	case "structuredjson":
		fields := structuredjson.FieldMap{
			ArrayPath: splitPath(cfg.Params["array_path"]),
			PrefixKey: cfg.Params["prefix_key"],
			Service:   cfg.Params["service_key"],
			Region:    cfg.Params["region_key"],
		}
		return structuredjson.New(
			cfg.Name, cfg.Params["version"], cfg.Params["description"],
			cfg.Params["url"], cfg.Params["tag_type"], cfg.Params["provider"],
			fields, cfg.AbortOnFail, client,
		), nil
	case "zipcsv":
		return zipcsv.New(
			cfg.Name, cfg.Params["version"], cfg.Params["description"],
			cfg.Params["url"], cfg.Params["csv_entry_name"], cfg.AbortOnFail, client,
		), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown feed plugin kind %q for source %q", cfg.Kind, cfg.Name)
	}
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// Fetcher runs every enabled registry plugin against its own staging
// file under stagingDir, named after the source. A plugin declared
// abort_on_fail that fails aborts the whole fetch; other plugin
// failures are logged and that source simply contributes nothing this
// cycle, matching spec.md §4.A's per-source failure policy.
type Fetcher struct {
	registry ports.FeedSourceRegistry
	client   *http.Client
	log      *logger.Logger
}

func NewFetcher(registry ports.FeedSourceRegistry, client *http.Client, log *logger.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{registry: registry, client: client, log: log}
}

func (f *Fetcher) Fetch(ctx context.Context, stagingDir string) error {
	cfgs, err := f.registry.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list enabled feed sources: %w", err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("pipeline: create staging dir: %w", err)
	}

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		plugin, err := BuildPlugin(cfg, f.client)
		if err != nil {
			return err
		}
		stagingPath := filepath.Join(stagingDir, cfg.Name+".csv")
		if err := plugin.Load(ctx, stagingPath); err != nil {
			if cfg.AbortOnFail {
				return fmt.Errorf("pipeline: fetch %q (abort_on_fail): %w", cfg.Name, err)
			}
			f.log.ErrorContext(ctx, "feed source fetch failed, skipping", "source", cfg.Name, "error", err)
			_ = os.Remove(stagingPath)
			continue
		}
		if err := plugin.Validate(stagingPath); err != nil {
			if cfg.AbortOnFail {
				return fmt.Errorf("pipeline: validate %q (abort_on_fail): %w", cfg.Name, err)
			}
			f.log.ErrorContext(ctx, "feed source output invalid, skipping", "source", cfg.Name, "error", err)
			_ = os.Remove(stagingPath)
		}
	}
	return nil
}

// Merger adapts adapters/merger's package-level Merge function to the
// app/update.Merger interface.
type Merger struct {
	LivePath string
}

func (m Merger) Merge(_ context.Context, stagingDir, mergedPath string) error {
	return merger.Merge(stagingDir, mergedPath, m.LivePath)
}

// Loader adapts adapters/flattenerio.Loader to app/update.Loader,
// answering with the post-publish record count the coordinator reports
// in its status.
type Loader struct {
	loader    *flattenerio.Loader
	store     ports.IntervalStore
	tempKey   string
	liveKey   string
	batchSize int
	gc        bool
}

func NewLoader(store ports.IntervalStore, tempKey, liveKey string, batchSize int, gcBetweenBatch bool) *Loader {
	return &Loader{
		loader: flattenerio.New(store), store: store,
		tempKey: tempKey, liveKey: liveKey, batchSize: batchSize, gc: gcBetweenBatch,
	}
}

func (l *Loader) Load(ctx context.Context, mergedPath string) (int64, error) {
	cfg := flattenerio.Config{
		CSVPath: mergedPath, TempKey: l.tempKey, LiveKey: l.liveKey,
		BatchSize: l.batchSize, GCBetweenBatch: l.gc,
	}
	if err := l.loader.Load(ctx, cfg); err != nil {
		return 0, err
	}
	return l.store.Cardinality(ctx, l.liveKey)
}
