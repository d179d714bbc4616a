package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/codec/gzipcodec"
	"github.com/discochess/assetcache/internal/codec/noopcodec"
	"github.com/discochess/assetcache/internal/codec/zstdcodec"
	"github.com/discochess/assetcache/internal/source"
	"github.com/discochess/assetcache/internal/source/billysource"
	"github.com/discochess/assetcache/internal/source/disksource"
	"github.com/discochess/assetcache/internal/source/gcssource"
	"github.com/discochess/assetcache/internal/source/miniosource"
	"github.com/discochess/assetcache/internal/source/s3source"
)

func codecByName(name string) (codec.Codec, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return noopcodec.New(), nil
	case "gz", "gzip":
		return gzipcodec.New(), nil
	case "zst", "zstd":
		return zstdcodec.New(zstdcodec.WithLowMemory()), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// openSource opens the source described by spec: a directory path or a
// gs://, s3://, minio:// or file:// URL.
func openSource(ctx context.Context, spec string, c codec.Codec) (source.Source, error) {
	if !strings.Contains(spec, "://") {
		return disksource.New(spec, c)
	}

	u, err := url.Parse(spec)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "file":
		return billysource.NewLocal(u.Path, c), nil
	case "gs":
		return gcssource.New(ctx, u.Host, c, gcssource.WithPrefix(prefix))
	case "s3":
		opts := []s3source.Option{s3source.WithPrefix(prefix)}
		if region := u.Query().Get("region"); region != "" {
			opts = append(opts, s3source.WithRegion(region))
		}
		if endpoint := u.Query().Get("endpoint"); endpoint != "" {
			opts = append(opts, s3source.WithEndpoint(endpoint))
		}
		return s3source.New(ctx, u.Host, c, opts...)
	case "minio":
		bucket, rest, _ := strings.Cut(prefix, "/")
		return miniosource.New(miniosource.Config{
			Endpoint:  u.Host,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    u.Query().Get("ssl") == "true",
			Region:    u.Query().Get("region"),
			Bucket:    bucket,
			Prefix:    rest,
		}, c)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}
