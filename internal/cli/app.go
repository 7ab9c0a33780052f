package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/config"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/engine"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/lock"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/observability"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/breaker"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/memory"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage/sqlite"
)

// app holds the long-lived dependencies built from the configuration.
type app struct {
	store   storage.Store
	engine  *engine.Engine
	metrics *observability.Collector
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{metrics: observability.NewCollector("seating")}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	logger.Info("Storage initialized", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	if cfg.Breaker.Enabled {
		bc := breaker.DefaultConfig()
		bc.Timeout = cfg.Breaker.Timeout
		bc.FailureThreshold = cfg.Breaker.FailureThreshold
		bc.MinRequests = cfg.Breaker.MinRequests
		store = breaker.Wrap(store, bc, logger)
	}
	a.store = store

	lockOpts := []lock.Option{
		lock.WithPolicy(cfg.Lock.Policy),
		lock.WithLogger(logger),
	}
	if cfg.Lock.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Lock.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		lockOpts = append(lockOpts, lock.WithLocker(lock.NewRedisLocker(client, cfg.Lock.KeyPrefix), cfg.Lock.TTL))
		logger.Info("Distributed locking enabled", "redis", cfg.Lock.RedisAddr)
	}

	a.engine = engine.New(store, engine.Options{
		RunTimeout: cfg.Engine.RunTimeout,
		Weights:    cfg.Engine.Weights,
		Locks:      lock.NewManager(lockOpts...),
		Metrics:    a.metrics,
		Logger:     logger,
	})
	return a, nil
}

func openStore(cfg config.Storage) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
