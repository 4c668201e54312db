package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/internal/config"
	"github.com/aretw0/journey/pkg/adapters/file"
	loamAdapter "github.com/aretw0/journey/pkg/adapters/loam"
	"github.com/aretw0/journey/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/journey/pkg/adapters/redis"
	"github.com/aretw0/journey/pkg/adapters/sqlite"
	"github.com/aretw0/journey/pkg/observability"
	"github.com/aretw0/journey/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Backend is an Engine wired from configuration, plus the resources it owns.
type Backend struct {
	Engine  *journey.Engine
	Store   ports.JourneyStore
	Catalog ports.JourneyReader
	Metrics *observability.Collector

	closers []io.Closer
}

// Close releases store connections.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

// NewBackend builds the store, optional catalog, metrics and Engine described by cfg.
// A nil reg uses the default Prometheus registry.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Backend, error) {
	store, locker, closers, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	b := &Backend{Store: store, closers: closers}

	metrics, err := observability.NewCollector(reg)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	b.Metrics = metrics

	opts := []journey.Option{
		journey.WithStore(store),
		journey.WithLocker(locker),
		journey.WithLogger(logger),
		journey.WithObserver(metrics),
	}
	if cfg.CatalogDir != "" {
		catalog, err := loamAdapter.Open(cfg.CatalogDir, loamAdapter.WithLogger(logger))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open catalog %s: %w", cfg.CatalogDir, err)
		}
		b.Catalog = catalog
		opts = append(opts, journey.WithCatalog(catalog))
	}

	b.Engine = journey.New(opts...)
	return b, nil
}

// OpenStore creates the configured store and a matching lock. Redis stores
// share their client with a distributed lock; the others lock in-process.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.JourneyStore, ports.DistributedLocker, []io.Closer, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), memory.NewLocker(), nil, nil

	case config.StoreFile:
		logger.Debug("using file store", "path", cfg.JourneysDir())
		return file.New(cfg.JourneysDir()), memory.NewLocker(), nil, nil

	case config.StoreRedis:
		store := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Debug("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		locker := redisAdapter.NewLocker(store.Client(), redisAdapter.DefaultPrefix)
		return store, locker, []io.Closer{store}, nil

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		logger.Debug("using sqlite store", "path", cfg.SQLitePath)
		return store, memory.NewLocker(), []io.Closer{store}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// ChannelUsage counts transitions per channel across every known journey.
// Stores that aggregate natively (sqlite) are asked directly when no catalog
// contributes journeys of its own.
func ChannelUsage(ctx context.Context, b *Backend) (map[string]int, error) {
	type channelCounter interface {
		ChannelUsage(ctx context.Context) (map[string]int, error)
	}
	if cc, ok := b.Store.(channelCounter); ok && b.Catalog == nil {
		return cc.ChannelUsage(ctx)
	}

	list, err := b.Engine.List(ctx)
	if err != nil {
		return nil, err
	}
	usage := make(map[string]int)
	for _, s := range list {
		tp, err := b.Engine.MapTouchpoints(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for ch, n := range tp.TouchpointsPerChannel {
			usage[ch] += n
		}
	}
	return usage, nil
}
