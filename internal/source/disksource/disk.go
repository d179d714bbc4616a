// Package disksource reads asset files from a local directory.
package disksource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Source is a disk-based asset source.
type Source struct {
	root  string
	codec codec.Codec
}

// New creates a new disk source rooted at the given directory.
// The directory must exist. The codec handles decompression.
func New(root string, c codec.Codec) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Source{
		root:  root,
		codec: c,
	}, nil
}

// ReadFile reads and decodes the named file.
func (s *Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p)
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

// Close releases any resources held by the source.
func (s *Source) Close() error {
	return nil
}

// Root returns the source directory.
func (s *Source) Root() string {
	return s.root
}

// path returns the filesystem path for an asset name.
func (s *Source) path(name string) (string, error) {
	cleaned, err := source.CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(codec.StoredName(s.codec, cleaned))), nil
}
