// Package s3source reads asset files from AWS S3.
package s3source

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// GetObjectAPI is the subset of the S3 client used by Source.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source is an AWS S3 asset source.
type Source struct {
	client GetObjectAPI
	bucket string
	prefix string
	codec  codec.Codec
}

// New creates a new S3 source using the default AWS configuration chain.
// The bucket must already exist.
// The codec handles decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Source, error) {
	s := &Source{
		bucket: bucketName,
		codec:  c,
	}
	var o settings
	for _, opt := range opts {
		opt(s, &o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return s, nil
}

// NewFromClient creates a source over an existing client.
func NewFromClient(client GetObjectAPI, bucketName string, c codec.Codec, opts ...Option) *Source {
	s := &Source{
		client: client,
		bucket: bucketName,
		codec:  c,
	}
	var o settings
	for _, opt := range opts {
		opt(s, &o)
	}
	return s
}

// settings collects options that only matter while building the client.
type settings struct {
	region   string
	endpoint string
}

// Option configures a Source.
type Option func(*Source, *settings)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Source, _ *settings) {
		s.prefix = source.NormalizePrefix(prefix)
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(_ *Source, o *settings) {
		o.region = region
	}
}

// WithEndpoint sets a custom endpoint with path-style addressing, for
// S3-compatible services.
func WithEndpoint(endpoint string) Option {
	return func(_ *Source, o *settings) {
		o.endpoint = endpoint
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

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, name)
		}
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := codec.Decode(s.codec, result.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return data, nil
}

// Close releases resources.
func (s *Source) Close() error {
	// S3 client doesn't need explicit closing.
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
