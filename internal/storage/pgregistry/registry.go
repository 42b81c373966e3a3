// Package pgregistry implements ports.FeedSourceRegistry against
// PostgreSQL, adapted from the teacher's postgresdb.SubnetListDB: same
// sqlx+pgx driver registration, connection-pool tuning and named-query
// idiom, repurposed from subnet CIDR rows to feed source configuration
// rows.
package pgregistry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // register pgx driver
	"github.com/jmoiron/sqlx"

	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// ErrEmptyName is returned when a caller supplies an empty feed source name.
var ErrEmptyName = errors.New("pgregistry: feed source name is empty")

// Pool holds tunable connection pool parameters, mirroring the teacher's
// config.Database.Postgresql.Pool shape.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int64 // seconds
	ConnMaxIdleTime int64 // seconds
}

// Config is the DSN and pool tuning the registry needs to connect.
type Config struct {
	DSN  string
	Pool Pool
}

// Registry implements ports.FeedSourceRegistry.
type Registry struct {
	db *sqlx.DB
}

var _ ports.FeedSourceRegistry = (*Registry)(nil)

// feedSourceRow is the wire shape of one registry row; Params is stored
// as a JSONB column.
type feedSourceRow struct {
	Name        string `db:"name"`
	Kind        string `db:"kind"`
	Enabled     bool   `db:"enabled"`
	AbortOnFail bool   `db:"abort_on_fail"`
	Params      []byte `db:"params"`
}

func (r feedSourceRow) toConfig() (ports.FeedSourceConfig, error) {
	var params map[string]string
	if len(r.Params) > 0 {
		if err := json.Unmarshal(r.Params, &params); err != nil {
			return ports.FeedSourceConfig{}, fmt.Errorf("unmarshal params for %q: %w", r.Name, err)
		}
	}
	return ports.FeedSourceConfig{
		Name:        r.Name,
		Kind:        r.Kind,
		Enabled:     r.Enabled,
		AbortOnFail: r.AbortOnFail,
		Params:      params,
	}, nil
}

func fromConfig(cfg ports.FeedSourceConfig) (feedSourceRow, error) {
	params, err := json.Marshal(cfg.Params)
	if err != nil {
		return feedSourceRow{}, fmt.Errorf("marshal params for %q: %w", cfg.Name, err)
	}
	return feedSourceRow{
		Name:        cfg.Name,
		Kind:        cfg.Kind,
		Enabled:     cfg.Enabled,
		AbortOnFail: cfg.AbortOnFail,
		Params:      params,
	}, nil
}

// New opens a connection pool against cfg and pings it before returning.
func New(cfg Config) (*Registry, error) {
	db, err := OpenDB(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	return &Registry{db: db}, nil
}

// OpenDB opens and pings a pgx-backed sqlx.DB for dsn.
func OpenDB(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("pgregistry: empty DSN")
	}
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("pgregistry: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgregistry: ping: %w", err)
	}
	return db, nil
}

func (r *Registry) ListEnabled(ctx context.Context) ([]ports.FeedSourceConfig, error) {
	const query = `
	SELECT name, kind, enabled, abort_on_fail, params
	FROM feed_sources
	WHERE enabled = true
	ORDER BY name`
	var rows []feedSourceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("pgregistry: list enabled: %w", err)
	}
	cfgs := make([]ports.FeedSourceConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toConfig()
		if err != nil {
			return nil, fmt.Errorf("pgregistry: %w", err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func (r *Registry) Create(ctx context.Context, cfg ports.FeedSourceConfig) error {
	if cfg.Name == "" {
		return ErrEmptyName
	}
	row, err := fromConfig(cfg)
	if err != nil {
		return fmt.Errorf("pgregistry: %w", err)
	}
	const query = `
	INSERT INTO feed_sources (name, kind, enabled, abort_on_fail, params)
	VALUES (:name, :kind, :enabled, :abort_on_fail, :params)
	ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("pgregistry: create: %w", err)
	}
	return nil
}

func (r *Registry) Update(ctx context.Context, cfg ports.FeedSourceConfig) error {
	if cfg.Name == "" {
		return ErrEmptyName
	}
	row, err := fromConfig(cfg)
	if err != nil {
		return fmt.Errorf("pgregistry: %w", err)
	}
	const query = `
	UPDATE feed_sources
	SET kind = :kind, enabled = :enabled, abort_on_fail = :abort_on_fail, params = :params
	WHERE name = :name`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("pgregistry: update: %w", err)
	}
	return nil
}

func (r *Registry) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	const query = `DELETE FROM feed_sources WHERE name = $1`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("pgregistry: delete: %w", err)
	}
	return nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}
