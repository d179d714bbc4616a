// Package memoryassetcachefx provides an fx module for an asset cache client
// backed by an in-memory source. Useful for testing.
package memoryassetcachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/assetcache"
	"github.com/discochess/assetcache/internal/config"
	"github.com/discochess/assetcache/internal/source/memsource"
	"github.com/discochess/assetcache/internal/stats"
	"github.com/discochess/assetcache/internal/stats/logger"
)

// Module provides an asset cache client over a memsource.Source.
// Requires a *zap.Logger to be provided. A config.Config may be supplied
// with fx.Supply; otherwise the defaults are used.
var Module = fx.Module("memoryassetcache",
	fx.Provide(
		newStatsCollector,
		newMemSource,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("assetcache.stats"))
}

func newMemSource() *memsource.Source {
	return memsource.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Source    *memsource.Source
	Config    *config.Config `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result holds the provided client and source.
type Result struct {
	fx.Out

	Client *assetcache.Client
	Source *memsource.Source // Exposed for test setup
}

func newClient(p Params) (Result, error) {
	cfg := config.Default()
	if p.Config != nil {
		cfg = *p.Config
	}

	client, err := assetcache.New(
		assetcache.WithSource(p.Source),
		assetcache.WithConfig(cfg),
		assetcache.WithStats(p.Collector),
		assetcache.WithLogger(p.Logger.Named("assetcache")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{
		Client: client,
		Source: p.Source,
	}, nil
}
