// Package assetcache serves read-only asset files from a storage Source
// through a byte-bounded, reference-counted in-memory cache.
//
// Example usage:
//
//	src, err := disksource.New("/path/to/game", noopcodec.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := assetcache.New(
//	    assetcache.WithSource(src),
//	    assetcache.WithConfigFile("bg2_cache.cfg"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	f, err := client.Open(ctx, "data/AREA000A.bif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
package assetcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/discochess/assetcache/internal/config"
	"github.com/discochess/assetcache/internal/filecache"
	"github.com/discochess/assetcache/internal/source"
	"github.com/discochess/assetcache/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates the file does not exist in the source.
	ErrNotFound = errors.New("assetcache: file not found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("assetcache: client closed")

	// ErrNoSource indicates no source was provided.
	ErrNoSource = errors.New("assetcache: no source provided")
)

// Client reads asset files, keeping them cached while the configuration
// allows it. A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	source source.Source
	config config.Config
	cache  *filecache.Store // nil when caching is disabled
	stats  stats.Collector
	logger *zap.Logger
	now    func() time.Time
	loads  singleflight.Group
	closed atomic.Bool
}

// New creates a new Client with the given options. A source is required;
// everything else has defaults.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	if o.source == nil {
		return nil, ErrNoSource
	}

	cfg := o.config
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile, o.logger.Named("config"))
		if err != nil {
			return nil, fmt.Errorf("loading cache config: %w", err)
		}
		cfg = loaded
	}

	c := &Client{
		source: o.source,
		config: cfg,
		stats:  o.stats,
		logger: o.logger,
		now:    o.now,
	}

	if cfg.Enabled {
		cache, err := filecache.New(cfg.MaxCacheSize, cfg.Classifier(),
			filecache.WithClock(o.now),
			filecache.WithStats(o.stats),
			filecache.WithLogger(o.logger.Named("filecache")),
		)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		c.cache = cache
	}

	c.logger.Debug("client initialized",
		zap.Bool("cacheEnabled", cfg.Enabled),
		zap.Int64("maxCacheSize", cfg.MaxCacheSize),
		zap.Int64("maxFileSize", cfg.MaxFileSize),
		zap.Strings("whiteList", cfg.WhiteList),
		zap.Strings("unloadList", cfg.UnloadList),
		zap.Strings("blackList", cfg.BlackList),
	)

	return c, nil
}

// Open returns a File over the named asset. A cached copy is used when
// present; otherwise the file is read from the source and admitted to the
// cache if the policy and the byte budget allow it. Files that cannot be
// cached are still served. The caller must Close the File.
//
// Names are slash separated paths relative to the source root; backslashes,
// repeated and leading slashes are normalized, so aliases of one file share
// a cache entry.
func (c *Client) Open(ctx context.Context, name string) (*File, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	name, err := source.CleanName(name)
	if err != nil {
		return nil, err
	}

	c.stats.IncCounter(stats.MetricOpens, 1)

	if c.cache != nil {
		if h, ok := c.cache.Lookup(name); ok {
			return newCachedFile(h), nil
		}
	}

	data, err := c.load(ctx, name)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if h, err := c.admit(name, data); err == nil {
			return newCachedFile(h), nil
		}
	}

	c.stats.IncCounter(stats.MetricUncachedReads, 1)
	return newUncachedFile(name, data), nil
}

// ReadFile returns a copy of the named asset's content.
func (c *Client) ReadFile(ctx context.Context, name string) ([]byte, error) {
	f, err := c.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bytes.Clone(f.data), nil
}

// Invalidate asks the cache to drop the named file. Open files keep their
// content; the entry goes away when the last one is closed. Until then later
// opens miss the cache and are served uncached from the source.
func (c *Client) Invalidate(name string) filecache.RemoveOutcome {
	if c.cache == nil {
		return filecache.RemoveMissing
	}
	name, err := source.CleanName(name)
	if err != nil {
		return filecache.RemoveMissing
	}
	outcome := c.cache.Remove(name)
	c.logger.Debug("invalidate", zap.String("name", name), zap.Stringer("outcome", outcome))
	return outcome
}

// Stats returns current cache statistics. A disabled cache reports zeros.
func (c *Client) Stats() filecache.Stats {
	if c.cache == nil {
		return filecache.Stats{}
	}
	return c.cache.Stats()
}

// Cache returns the underlying cache, or nil when caching is disabled.
func (c *Client) Cache() *filecache.Store {
	return c.cache
}

// Config returns the effective cache configuration.
func (c *Client) Config() config.Config {
	return c.config
}

// Source returns the storage backend used by this client.
func (c *Client) Source() source.Source {
	return c.source
}

// Close releases all resources associated with the client.
// Files opened before Close stay readable until they are closed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.source.Close(); err != nil {
		return fmt.Errorf("closing source: %w", err)
	}
	return nil
}

// load reads name from the source. Concurrent loads of one name share a
// single read, which is not cancelled with any one caller's context; each
// caller stops waiting when its own context is done.
func (c *Client) load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	readCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(name, func() (any, error) {
		c.stats.IncCounter(stats.MetricSourceReads, 1)
		start := c.now()
		data, err := c.source.ReadFile(readCtx, name)
		c.stats.ObserveHistogram(stats.MetricSourceReadSeconds, c.now().Sub(start).Seconds())
		return data, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		c.stats.IncCounter(stats.MetricSourceErrors, 1)
		c.logger.Warn("source read failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if shared {
		c.logger.Debug("shared source read", zap.String("name", name))
	}
	return v.([]byte), nil
}

// admit caches data under name. When another reader admitted the same name
// first, its entry is borrowed instead.
func (c *Client) admit(name string, data []byte) (*filecache.Handle, error) {
	h, err := c.cache.Admit(name, int64(len(data)), filecache.CopyFrom(data))
	if err == nil {
		return h, nil
	}
	if errors.Is(err, filecache.ErrExists) {
		if h, ok := c.cache.Lookup(name); ok {
			return h, nil
		}
	}
	c.logger.Debug("serving uncached",
		zap.String("name", name),
		zap.Int("size", len(data)),
		zap.Error(err),
	)
	return nil, err
}
