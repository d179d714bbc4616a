// Package diskassetcachefx provides an fx module for an asset cache client
// reading from a local game directory.
package diskassetcachefx

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/assetcache"
	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/codec/noopcodec"
	"github.com/discochess/assetcache/internal/config"
	"github.com/discochess/assetcache/internal/source/disksource"
	"github.com/discochess/assetcache/internal/stats"
	"github.com/discochess/assetcache/internal/stats/logger"
)

// Config holds configuration for the disk-backed client.
type Config struct {
	// DataDir is the directory containing the game assets.
	DataDir string

	// GameType selects the cache configuration file "<GameType>_cache.cfg".
	// Ignored when ConfigFile is set.
	GameType string

	// ConfigFile overrides the cache configuration path.
	ConfigFile string

	// Codec decodes stored assets. Default is no compression.
	Codec codec.Codec
}

func (c Config) configPath() string {
	switch {
	case c.ConfigFile != "":
		return c.ConfigFile
	case c.GameType != "":
		return filepath.Join(c.DataDir, config.FileName(c.GameType))
	default:
		return ""
	}
}

// Module provides a disk-backed asset cache client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskassetcache",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("assetcache.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *assetcache.Client
}

func newClient(p Params) (Result, error) {
	c := p.Config.Codec
	if c == nil {
		c = noopcodec.New()
	}

	src, err := disksource.New(p.Config.DataDir, c)
	if err != nil {
		return Result{}, fmt.Errorf("creating disk source: %w", err)
	}

	opts := []assetcache.Option{
		assetcache.WithSource(src),
		assetcache.WithStats(p.Collector),
		assetcache.WithLogger(p.Logger.Named("assetcache")),
	}
	if path := p.Config.configPath(); path != "" {
		opts = append(opts, assetcache.WithConfigFile(path))
	}

	client, err := assetcache.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
