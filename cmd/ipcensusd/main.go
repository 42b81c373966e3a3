package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/datasetnotify"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/dnsbl"
	"github.com/snisarenko-labs/ipcensus/internal/adapters/pipeline"
	"github.com/snisarenko-labs/ipcensus/internal/app/lookup"
	"github.com/snisarenko-labs/ipcensus/internal/app/scheduler"
	"github.com/snisarenko-labs/ipcensus/internal/app/update"
	"github.com/snisarenko-labs/ipcensus/internal/config"
	grpcserver "github.com/snisarenko-labs/ipcensus/internal/delivery/grpc"
	"github.com/snisarenko-labs/ipcensus/internal/delivery/grpc/interceptors"
	"github.com/snisarenko-labs/ipcensus/internal/logger"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
	"github.com/snisarenko-labs/ipcensus/internal/storage/memory"
	"github.com/snisarenko-labs/ipcensus/internal/storage/pgregistry"
	"github.com/snisarenko-labs/ipcensus/internal/storage/redisstore"
	"github.com/snisarenko-labs/ipcensus/internal/version"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "", "Path to configuration file")
}

func main() {
	flag.Parse()

	if flag.Arg(0) == "version" {
		version.PrintVersion()
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ipcensusd exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logg := newLogger(cfg)

	var (
		index    ports.IntervalStore
		cache    ports.CacheStore
		lock     ports.LockStore
		status   ports.StatusStore
		flusher  datasetnotify.Flusher
		notifier update.DatasetPublisher = datasetnotify.NewLocalPublisher()
		registry ports.FeedSourceRegistry
	)

	localMode := cfg.Store.Workmode == "local"
	if localMode {
		index = memory.NewIntervalIndex()
		cache = memory.NewCache()
		lock = memory.NewLock()
		status = memory.NewStatus()
		registry = memory.NewFeedSourceRegistry()
	} else {
		rdb, err := redisstore.NewClient(redisstore.Options{
			Addr: cfg.Store.Redis.Address, Password: cfg.Store.Redis.Password, DB: cfg.Store.Redis.DB,
			DialTimeout: cfg.Store.Redis.DialTimeout, ReadTimeout: cfg.Store.Redis.ReadTimeout,
			WriteTimeout: cfg.Store.Redis.WriteTimeout, PoolSize: cfg.Store.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		index = redisstore.NewIntervalIndex(rdb)
		resultCache := redisstore.NewResultCache(rdb)
		cache = resultCache
		flusher = resultCache
		lock = redisstore.NewLock(rdb)
		status = redisstore.NewStatus(rdb, cfg.Store.StatusKey)

		if cfg.Cache.InvalidateOnSwap {
			publisher := datasetnotify.NewRedisPublisher(rdb, cfg.Cache.SwapChannel)
			notifier = publisher
			subscriber := datasetnotify.NewSubscriber(rdb, cfg.Cache.SwapChannel, flusher, cfg.Store.CachePrefix)
			go func() {
				if err := subscriber.Run(context.Background()); err != nil {
					logg.Error("dataset swap subscriber stopped", "error", err)
				}
			}()
		}

		registry, err = pgregistry.New(pgregistry.Config{
			DSN: cfg.Postgres.Dsn,
			Pool: pgregistry.Pool{
				MaxOpenConns: cfg.Postgres.Pool.MaxOpenConns, MaxIdleConns: cfg.Postgres.Pool.MaxIdleConns,
			},
		})
		if err != nil {
			return fmt.Errorf("init feed source registry: %w", err)
		}
	}

	var dnsblResolver ports.DNSBLResolver
	if cfg.DNSBL.Enabled {
		dnsblResolver = dnsbl.New(cfg.DNSBL.Provider, cfg.DNSBL.Nameserver, cfg.DNSBL.Timeout)
	}

	lookupSvc := lookup.NewLookupService(index, cache, dnsblResolver, cfg.Store.IndexKey)

	coordinator := update.NewCoordinator(
		lock, status, index,
		pipeline.NewFetcher(registry, http.DefaultClient, logg),
		pipeline.Merger{LivePath: cfg.Pipeline.MergedCSVPath},
		pipeline.NewLoader(index, cfg.Store.IndexTempKey, cfg.Store.IndexKey, cfg.Pipeline.BatchSize, cfg.Pipeline.GCBetweenBatches),
		logg,
		update.Config{
			LockKey: cfg.Store.LockKey, TmpKey: cfg.Store.IndexTempKey,
			StagingDir:     cfg.Pipeline.StagingDir,
			MergedPath:     cfg.Pipeline.MergedCSVPath + ".tmp",
			MergedLivePath: cfg.Pipeline.MergedCSVPath,
			LockTTL:        cfg.Store.LockTTL, UpdateTimeout: cfg.Pipeline.FetchTimeout * 10,
		},
	)
	coordinator.SetPublisher(notifier)

	sched, err := scheduler.New(coordinator, logg, cfg.Scheduler.CronExpr, cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	addr := net.JoinHostPort(cfg.Server.Address, fmt.Sprint(cfg.Server.Port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors.UnaryRequestIDInterceptor(), interceptors.UnaryLoggingInterceptor(logg)),
	)
	pbv1.RegisterIPCensusServer(grpcSrv, grpcserver.NewServer(lookupSvc, coordinator, registry, cfg.Store.IndexKey))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		<-ctx.Done()
		logg.Info("shutting down gRPC server...")
		done := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
			logg.Info("gRPC server stopped gracefully")
		case <-time.After(5 * time.Second):
			logg.Info("gRPC server force stop")
			grpcSrv.Stop()
		}
		return ctx.Err()
	})

	g.Go(func() error {
		logg.Info("scheduler starting")
		return sched.Run(ctx)
	})

	g.Go(func() error {
		logg.Info("gRPC server listening", "addr", addr)
		return grpcSrv.Serve(lis)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("error from goroutines", "error", err)
		return err
	}

	logg.Info("application stopped gracefully")
	return nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	if cfg.Logger.File == "" {
		return logger.New(&cfg.Logger)
	}
	f, err := os.OpenFile(cfg.Logger.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return logger.New(&cfg.Logger)
	}
	return logger.NewWithWriter(f, &cfg.Logger)
}
