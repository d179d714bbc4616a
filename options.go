package assetcache

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/assetcache/internal/codec/noopcodec"
	"github.com/discochess/assetcache/internal/config"
	"github.com/discochess/assetcache/internal/source"
	"github.com/discochess/assetcache/internal/source/disksource"
	"github.com/discochess/assetcache/internal/stats"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	source     source.Source
	config     config.Config
	configFile string
	stats      stats.Collector
	logger     *zap.Logger
	now        func() time.Time
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		config: config.Default(),
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithSource sets the storage backend files are read from.
func WithSource(s source.Source) Option {
	return optionFunc(func(o *options) {
		o.source = s
	})
}

// WithConfig sets the cache configuration.
// If not set, config.Default is used.
func WithConfig(cfg config.Config) Option {
	return optionFunc(func(o *options) {
		o.config = cfg
		o.configFile = ""
	})
}

// WithConfigFile loads the cache configuration from a key=value file when
// the client is created. A missing file means the defaults.
func WithConfigFile(path string) Option {
	return optionFunc(func(o *options) {
		o.configFile = path
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithClock sets the time source used for access times and read latency.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		o.now = now
	})
}

// WithDataDir reads uncompressed assets from a game directory and loads the
// cache configuration for gameType from the same directory.
func WithDataDir(dir, gameType string) (Option, error) {
	src, err := disksource.New(dir, noopcodec.New())
	if err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName(gameType))
	return optionFunc(func(o *options) {
		o.source = src
		o.configFile = cfgPath
	}), nil
}
