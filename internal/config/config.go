// Package config loads ipcensusd's configuration from an optional YAML
// file plus environment variables, adapted from the teacher's
// viper+mapstructure setup: env prefix IPCENSUS_, nested keys joined
// with "__", code-set defaults so a config file is never required.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/snisarenko-labs/ipcensus/internal/logger"
)

var ErrFileNotFound = errors.New("config file not found")

type App struct {
	Name string `mapstructure:"name"`
}

// Logger reuses the logger package's own config shape rather than
// redeclaring Level/File here.
type Logger = logger.Config

type Server struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	TLS     struct {
		Enabled  bool   `mapstructure:"enabled"`
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
	} `mapstructure:"tls"`
}

// Store holds the keys the interval index, result cache and lock/status
// records live under in the backing key/value store, plus the pool
// connection settings to reach it.
type Store struct {
	Workmode string `mapstructure:"workmode"` // local/external: memory vs redisstore
	Redis    struct {
		Address      string        `mapstructure:"address"`
		Password     string        `mapstructure:"password"`
		DB           int           `mapstructure:"db"`
		PoolSize     int           `mapstructure:"pool_size"`
		DialTimeout  time.Duration `mapstructure:"dial_timeout"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"redis"`
	IndexKey     string        `mapstructure:"index_key"`      // live sorted interval index key
	IndexTempKey string        `mapstructure:"index_temp_key"` // staging key during a load
	LockKey      string        `mapstructure:"lock_key"`       // update coordinator's distributed lock
	StatusKey    string        `mapstructure:"status_key"`     // update coordinator's status record
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	CachePrefix  string        `mapstructure:"cache_prefix"` // result cache key prefix, e.g. "cache:"
}

type PostgresPool struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// Postgres backs the feed source registry (storage/pgregistry).
type Postgres struct {
	Dsn      string       `mapstructure:"dsn"`
	User     string       `mapstructure:"user"`
	Password string       `mapstructure:"password"`
	Host     string       `mapstructure:"host"`
	Port     int          `mapstructure:"port"`
	Name     string       `mapstructure:"name"`
	Pool     PostgresPool `mapstructure:"pool"`
}

// Pipeline tunes the update pipeline: staging/merged paths, the feed fetch
// timeout and the flattener's batching behavior.
type Pipeline struct {
	StagingDir       string        `mapstructure:"staging_dir"`
	MergedCSVPath    string        `mapstructure:"merged_csv_path"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	BatchSize        int           `mapstructure:"batch_size"`
	GCBetweenBatches bool          `mapstructure:"gc_between_batches"`
}

// Scheduler configures the update coordinator's cron trigger.
type Scheduler struct {
	CronExpr string `mapstructure:"cron_expr"`
	Timezone string `mapstructure:"timezone"`
}

// Cache configures the result cache's invalidation behavior. TTL is
// decoded but not applied: the lookup service stores every entry for a
// fixed 48h.
type Cache struct {
	TTL              time.Duration `mapstructure:"ttl"`
	InvalidateOnSwap bool          `mapstructure:"invalidate_on_swap"`
	SwapChannel      string        `mapstructure:"swap_channel"`
}

// DNSBL configures the optional external DNSBL lookup of §4.E step 6.
type DNSBL struct {
	Enabled    bool          `mapstructure:"enabled"`
	Provider   string        `mapstructure:"provider"`
	Nameserver string        `mapstructure:"nameserver"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Config struct {
	App       App       `mapstructure:"app"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Store     Store     `mapstructure:"store"`
	Postgres  Postgres  `mapstructure:"postgres"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Cache     Cache     `mapstructure:"cache"`
	DNSBL     DNSBL     `mapstructure:"dnsbl"`
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ipcensusd")

	v.SetDefault("logger.level", "info")

	v.SetDefault("server.port", 50061)

	v.SetDefault("store.workmode", "local") // local: in-memory IntervalStore/CacheStore/LockStore/StatusStore
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.pool_size", 50)
	v.SetDefault("store.redis.dial_timeout", "5s")
	v.SetDefault("store.redis.read_timeout", "3s")
	v.SetDefault("store.redis.write_timeout", "3s")
	v.SetDefault("store.index_key", "ipcensus:index")
	v.SetDefault("store.index_temp_key", "ipcensus:index:tmp")
	v.SetDefault("store.lock_key", "ipcensus:update:lock")
	v.SetDefault("store.status_key", "ipcensus:update:status")
	v.SetDefault("store.lock_ttl", "3600s")
	v.SetDefault("store.cache_prefix", "cache:")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.name", "ipcensus")
	v.SetDefault("postgres.pool.max_open_conns", 20)
	v.SetDefault("postgres.pool.max_idle_conns", 10)
	v.SetDefault("postgres.pool.conn_max_lifetime", "1h")
	v.SetDefault("postgres.pool.conn_max_idle_time", "10m")

	v.SetDefault("pipeline.staging_dir", "./data/staging")
	v.SetDefault("pipeline.merged_csv_path", "./data/merged.csv")
	v.SetDefault("pipeline.fetch_timeout", "30s")
	v.SetDefault("pipeline.batch_size", 100000)
	v.SetDefault("pipeline.gc_between_batches", false)

	v.SetDefault("scheduler.cron_expr", "0 0 * * *") // daily at midnight
	v.SetDefault("scheduler.timezone", "UTC")

	v.SetDefault("cache.ttl", "48h")
	v.SetDefault("cache.invalidate_on_swap", false)
	v.SetDefault("cache.swap_channel", "ipcensus.dataset.swapped")

	v.SetDefault("dnsbl.enabled", false)
	v.SetDefault("dnsbl.nameserver", "8.8.8.8:53")
	v.SetDefault("dnsbl.timeout", "2s")
}

// LoadConfig loads configuration from cfgFilePath (or the standard
// search paths if empty), layering environment variables under the
// IPCENSUS_ prefix over code-set defaults. Unlike the teacher, a missing
// config file is tolerated when no explicit path was requested: defaults
// and environment variables alone are a valid configuration.
func LoadConfig(cfgFilePath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("IPCENSUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFilePath == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/ipcensus")
	} else {
		if !fileExists(cfgFilePath) {
			return nil, ErrFileNotFound
		}
		v.SetConfigFile(cfgFilePath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFilePath != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	decoderCfg := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
	dec, err := mapstructure.NewDecoder(decoderCfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
