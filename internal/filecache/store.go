// Package filecache implements a byte-bounded, reference-counted cache of
// whole-file contents.
//
// Entries are admitted through a policy.Classifier, borrowed through Handles,
// and evicted least-recently-used first among those nobody holds. Entries
// that are borrowed, or whitelisted without being unload-listed, are never
// evicted.
//
// Example usage:
//
//	store, err := filecache.New(64<<20, policy.New(lists, 8<<20))
//	if err != nil {
//	    return err
//	}
//	h, ok := store.Lookup("data/AREA.bif")
//	if !ok {
//	    h, err = store.Admit("data/AREA.bif", int64(len(data)), filecache.CopyFrom(data))
//	}
//	if err == nil {
//	    defer h.Release()
//	}
package filecache

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/assetcache/internal/filecache/recency"
	"github.com/discochess/assetcache/internal/policy"
	"github.com/discochess/assetcache/internal/stats"
)

// Producer fills buf with the file content and returns the number of bytes
// written. It runs with the store locked and must not call back into the Store.
type Producer func(buf []byte) (int, error)

// CopyFrom returns a Producer that copies data.
func CopyFrom(data []byte) Producer {
	return func(buf []byte) (int, error) {
		return copy(buf, data), nil
	}
}

// RemoveOutcome reports what a removal request did.
type RemoveOutcome int

const (
	// RemoveMissing means no entry had the name.
	RemoveMissing RemoveOutcome = iota
	// Removed means the entry was destroyed.
	Removed
	// RemoveDeferred means the entry is borrowed and will be destroyed on
	// its last release.
	RemoveDeferred
	// RemovePinned means the entry is whitelisted without being
	// unload-listed and stays resident.
	RemovePinned
)

// String returns a short name for the outcome.
func (o RemoveOutcome) String() string {
	switch o {
	case RemoveMissing:
		return "missing"
	case Removed:
		return "removed"
	case RemoveDeferred:
		return "deferred"
	case RemovePinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// Stats contains cache statistics.
type Stats struct {
	Hits             int64
	Misses           int64
	Admissions       int64
	Rejections       int64
	Evictions        int64
	Removals         int64
	DeferredRemovals int64

	Entries int   // Current number of entries
	Size    int64 // Current resident bytes
	MaxSize int64
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for access times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(s *Store) {
		s.collector = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Store owns all cached entries. A Store is safe for concurrent use; a single
// mutex guards the entry map, the running size and every reference count, so
// eviction never observes a half-finished borrow or release.
type Store struct {
	maxSize    int64
	classifier *policy.Classifier
	now        func() time.Time
	collector  stats.Collector
	logger     *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	recency *recency.Index
	size    int64
	counts  Stats
}

// New creates a Store holding at most maxCacheSize bytes.
func New(maxCacheSize int64, classifier *policy.Classifier, opts ...Option) (*Store, error) {
	if maxCacheSize <= 0 {
		return nil, ErrInvalidLimit
	}
	if classifier == nil {
		return nil, ErrNoClassifier
	}

	idx, err := recency.New()
	if err != nil {
		return nil, fmt.Errorf("creating recency index: %w", err)
	}

	s := &Store{
		maxSize:    maxCacheSize,
		classifier: classifier,
		now:        time.Now,
		collector:  stats.NewNoop(),
		logger:     zap.NewNop(),
		entries:    make(map[string]*entry),
		recency:    idx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lookup borrows the named entry. The caller must release the returned
// handle. Entries waiting for removal are not returned.
func (s *Store) Lookup(name string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok || e.pendingRemoval {
		s.counts.Misses++
		s.collector.IncCounter(stats.MetricCacheMisses, 1)
		return nil, false
	}

	s.acquireLocked(e)
	s.counts.Hits++
	s.collector.IncCounter(stats.MetricCacheHits, 1)
	return newHandle(s, e), true
}

// Admit caches size bytes under name, filling them with produce. On success
// the entry is returned already borrowed once by the caller.
//
// Admission fails with ErrTooLarge, ErrBlacklisted, ErrExists or ErrCacheFull
// when the file may or can not be cached, and with ErrShortRead or the
// producer's error when the content could not be filled. The store is left
// unchanged by a failed producer, although entries evicted to make room stay
// evicted.
func (s *Store) Admit(name string, size int64, produce Producer) (*Handle, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if size > s.maxSize {
		return nil, s.rejectLocked(name, size, ErrTooLarge)
	}

	verdict := s.classifier.Classify(name, size)
	if !verdict.Admit {
		if verdict.Reason == policy.ReasonTooLarge {
			return nil, s.rejectLocked(name, size, ErrTooLarge)
		}
		return nil, s.rejectLocked(name, size, ErrBlacklisted)
	}

	if _, ok := s.entries[name]; ok {
		return nil, s.rejectLocked(name, size, ErrExists)
	}

	if s.size+size > s.maxSize {
		if !s.evictToLocked(s.maxSize - size) {
			return nil, s.rejectLocked(name, size, ErrCacheFull)
		}
	}

	content := make([]byte, size)
	n, err := produce(content)
	if err != nil {
		return nil, fmt.Errorf("filecache: producing %q: %w", name, err)
	}
	if int64(n) != size {
		return nil, fmt.Errorf("%w: %q produced %d of %d bytes", ErrShortRead, name, n, size)
	}

	e := &entry{
		name:      name,
		content:   content,
		bytes:     size,
		evictable: verdict.AllowUnload,
	}
	s.acquireLocked(e)
	s.entries[name] = e
	s.size += size

	s.counts.Admissions++
	s.collector.IncCounter(stats.MetricAdmissions, 1)
	s.reportSizeLocked()
	s.logger.Debug("admitted",
		zap.String("name", name),
		zap.Int64("size", size),
		zap.Bool("evictable", e.evictable),
		zap.Stringer("reason", verdict.Reason),
		zap.Int64("cacheSize", s.size),
	)

	return newHandle(s, e), nil
}

// EvictTo evicts unborrowed, evictable entries, least recently accessed first,
// until at most target bytes remain. It reports whether the target was
// reached. A negative target is treated as zero.
func (s *Store) EvictTo(target int64) bool {
	if target < 0 {
		target = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictToLocked(target)
}

// Remove asks for the named entry to be destroyed. A borrowed entry is
// destroyed when its last handle is released; a pinned entry is kept.
func (s *Store) Remove(name string) RemoveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return RemoveMissing
	}
	return s.requestRemovalLocked(e)
}

// Contains reports whether name is cached and not waiting for removal.
// It does not borrow the entry.
func (s *Store) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	return ok && !e.pendingRemoval
}

// TotalSize returns the number of resident bytes.
func (s *Store) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// MaxSize returns the configured byte budget.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Len returns the number of entries, including those waiting for removal.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a snapshot of all entries sorted by name.
func (s *Store) Entries() []EntryInfo {
	s.mu.Lock()
	infos := make([]EntryInfo, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, e.info())
	}
	s.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Stats returns current cache statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.counts
	st.Entries = len(s.entries)
	st.Size = s.size
	st.MaxSize = s.maxSize
	return st
}

// release returns one borrow of e.
func (s *Store) release(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.release()
	if e.pendingRemoval && e.unloadable() {
		s.destroyLocked(e)
		s.counts.Removals++
		s.collector.IncCounter(stats.MetricRemovals, 1)
		s.logger.Debug("removed on release", zap.String("name", e.name))
	}
}

// discard returns one borrow of e and requests its removal in one step.
func (s *Store) discard(e *entry) RemoveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.release()
	return s.requestRemovalLocked(e)
}

func (s *Store) acquireLocked(e *entry) {
	e.acquire(s.now())
	s.recency.Touch(e.name)
}

func (s *Store) requestRemovalLocked(e *entry) RemoveOutcome {
	switch {
	case !e.evictable:
		return RemovePinned
	case e.refs > 0:
		if !e.pendingRemoval {
			e.pendingRemoval = true
			s.counts.DeferredRemovals++
			s.collector.IncCounter(stats.MetricDeferredRemovals, 1)
			s.logger.Debug("removal deferred",
				zap.String("name", e.name),
				zap.Int("refs", e.refs),
			)
		}
		return RemoveDeferred
	default:
		s.destroyLocked(e)
		s.counts.Removals++
		s.collector.IncCounter(stats.MetricRemovals, 1)
		s.logger.Debug("removed", zap.String("name", e.name))
		return Removed
	}
}

func (s *Store) evictToLocked(target int64) bool {
	if s.size <= target {
		return true
	}

	for _, e := range s.victimsLocked() {
		if s.size <= target {
			break
		}
		s.destroyLocked(e)
		s.counts.Evictions++
		s.collector.IncCounter(stats.MetricEvictions, 1)
		s.logger.Debug("evicted",
			zap.String("name", e.name),
			zap.Int64("size", e.bytes),
			zap.Time("lastAccess", e.lastAccess),
		)
	}

	if s.size > target {
		s.logger.Debug("eviction target not reached",
			zap.Int64("target", target),
			zap.Int64("cacheSize", s.size),
		)
		return false
	}
	return true
}

// victimsLocked returns the unloadable entries ordered by last access time.
// Entries with equal access times keep the recency index order, which is the
// order in which they were last acquired.
func (s *Store) victimsLocked() []*entry {
	var victims []*entry
	for _, name := range s.recency.Keys() {
		if e := s.entries[name]; e != nil && e.unloadable() {
			victims = append(victims, e)
		}
	}
	slices.SortStableFunc(victims, func(a, b *entry) int {
		return a.lastAccess.Compare(b.lastAccess)
	})
	return victims
}

func (s *Store) destroyLocked(e *entry) {
	delete(s.entries, e.name)
	s.recency.Remove(e.name)
	s.size -= e.bytes
	e.destroyed = true
	e.content = nil
	s.reportSizeLocked()
}

func (s *Store) rejectLocked(name string, size int64, reason error) error {
	s.counts.Rejections++
	s.collector.IncCounter(stats.MetricRejections, 1)
	s.logger.Debug("admission rejected",
		zap.String("name", name),
		zap.Int64("size", size),
		zap.Error(reason),
	)
	return reason
}

func (s *Store) reportSizeLocked() {
	s.collector.SetGauge(stats.MetricCacheBytes, s.size)
	s.collector.SetGauge(stats.MetricCacheEntries, int64(len(s.entries)))
}
