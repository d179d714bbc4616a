// Package billysource reads asset files from a go-billy filesystem.
//
// Any billy.Filesystem works: osfs for a local tree, memfs for tests and
// for assets unpacked into memory, or a chroot of either.
package billysource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Source reads assets from a billy.Filesystem.
type Source struct {
	bfs   billy.Filesystem
	codec codec.Codec
}

// New wraps an existing filesystem.
func New(bfs billy.Filesystem, c codec.Codec) *Source {
	return &Source{bfs: bfs, codec: c}
}

// NewLocal creates a source over the local directory root.
func NewLocal(root string, c codec.Codec) *Source {
	return New(osfs.New(root), c)
}

// NewMemory creates a source over an empty in-memory filesystem. Use
// Filesystem to populate it.
func NewMemory(c codec.Codec) *Source {
	return New(memfs.New(), c)
}

// Filesystem returns the underlying filesystem.
func (s *Source) Filesystem() billy.Filesystem {
	return s.bfs
}

// ReadFile reads and decodes the named file.
func (s *Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := source.CleanName(name)
	if err != nil {
		return nil, err
	}

	raw, err := util.ReadFile(s.bfs, codec.StoredName(s.codec, cleaned))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	data, err := codec.Decode(s.codec, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return data, nil
}

// WriteFile encodes data and stores it under name.
func (s *Source) WriteFile(name string, data []byte) error {
	cleaned, err := source.CleanName(name)
	if err != nil {
		return err
	}
	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return util.WriteFile(s.bfs, codec.StoredName(s.codec, cleaned), encoded, 0o644)
}

// Close releases any resources held by the source.
func (s *Source) Close() error {
	return nil
}
