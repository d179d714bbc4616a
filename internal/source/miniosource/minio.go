// Package miniosource reads asset files from MinIO or any other
// S3-compatible object server.
package miniosource

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Config holds connection settings.
type Config struct {
	Endpoint  string // host:port, without scheme
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	Prefix    string

	// Client, when set, is used instead of building one from the fields above.
	Client *minio.Client
}

func (c Config) validate() error {
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.Client == nil && c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	return nil
}

// Source is a MinIO asset source.
type Source struct {
	client *minio.Client
	bucket string
	prefix string
	codec  codec.Codec
}

// New creates a MinIO source. No request is made until the first read.
func New(cfg Config, c codec.Codec) (*Source, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("creating minio client: %w", err)
		}
	}

	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: source.NormalizePrefix(cfg.Prefix),
		codec:  c,
	}, nil
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

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(name, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	if _, err := obj.Stat(); err != nil {
		return nil, translate(name, err)
	}

	data, err := codec.Decode(s.codec, obj)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return data, nil
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}

// objectKey returns the full object key for an asset name.
func (s *Source) objectKey(name string) (string, error) {
	cleaned, err := source.CleanName(name)
	if err != nil {
		return "", err
	}
	return s.prefix + codec.StoredName(s.codec, cleaned), nil
}

// translate maps MinIO error responses onto source errors.
func translate(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", source.ErrNotFound, name)
	}
	return fmt.Errorf("minio: reading %s: %w", name, err)
}
