// Package memsource provides an in-memory source for tests and examples.
package memsource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Source is an in-memory asset source. It counts reads per name so tests
// can tell cache hits from storage reads.
type Source struct {
	mu    sync.RWMutex
	files map[string][]byte
	reads map[string]int
	err   error
}

// New creates a new in-memory source.
func New() *Source {
	return &Source{
		files: make(map[string][]byte),
		reads: make(map[string]int),
	}
}

// SetFile sets the content for a name.
// The data is copied to prevent caller mutations from affecting the source.
func (s *Source) SetFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.files[name] = copied
}

// FailWith makes every subsequent read return err. A nil err clears it.
func (s *Source) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ReadFile returns a copy of the named file.
func (s *Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads[name]++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Reads returns how many times name was read.
func (s *Source) Reads(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[name]
}

// Names returns the stored names in sorted order.
func (s *Source) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close is a no-op for the memory source.
func (s *Source) Close() error {
	return nil
}
