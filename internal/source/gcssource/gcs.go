// Package gcssource reads asset files from Google Cloud Storage.
package gcssource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// openFunc opens an object for reading.
type openFunc func(ctx context.Context, key string) (io.ReadCloser, error)

// Source is a Google Cloud Storage asset source.
type Source struct {
	client *storage.Client
	open   openFunc
	prefix string
	codec  codec.Codec
}

// New creates a new GCS source.
// The bucket must already exist.
// The codec handles decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Source, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	bucket := client.Bucket(bucketName)
	s := &Source{
		client: client,
		open: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return bucket.Object(key).NewReader(ctx)
		},
		codec: c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Source.
type Option func(*Source)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = source.NormalizePrefix(prefix)
	}
}

// ReadFile reads and decodes the named object.
func (s *Source) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := s.objectKey(name)
	if err != nil {
		return nil, err
	}

	reader, err := s.open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, name)
		}
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}
	defer reader.Close()

	data, err := codec.Decode(s.codec, reader)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return data, nil
}

// Close releases resources.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// objectKey returns the full object key for an asset name.
func (s *Source) objectKey(name string) (string, error) {
	cleaned, err := source.CleanName(name)
	if err != nil {
		return "", err
	}
	return s.prefix + codec.StoredName(s.codec, cleaned), nil
}
