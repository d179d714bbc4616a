package s3source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/codec/gzipcodec"
	"github.com/discochess/assetcache/internal/source"
)

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	err     error
	bucket  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := NewFromClient(&fakeS3{}, "bucket", gzipcodec.New(), WithPrefix(tt.input))
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestSource_objectKey(t *testing.T) {
	s := NewFromClient(&fakeS3{}, "bucket", gzipcodec.New(), WithPrefix("iwd"))

	got, err := s.objectKey("data/AREA.bif")
	if err != nil {
		t.Fatalf("objectKey() error = %v", err)
	}
	if want := "iwd/data/AREA.bif.gz"; got != want {
		t.Errorf("objectKey() = %q, want %q", got, want)
	}
}

func TestSource_ReadFile(t *testing.T) {
	c := gzipcodec.New()
	data := []byte("portrait bitmap")
	compressed, err := codec.Encode(c, data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	fake := &fakeS3{objects: map[string][]byte{"portraits/P1.bmp.gz": compressed}}
	s := NewFromClient(fake, "assets", c)

	got, err := s.ReadFile(context.Background(), "portraits/P1.bmp")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadFile() = %q, want %q", got, data)
	}
	if fake.bucket != "assets" {
		t.Errorf("bucket = %q, want %q", fake.bucket, "assets")
	}
}

func TestSource_ReadFile_Errors(t *testing.T) {
	boom := errors.New("throttled")

	tests := []struct {
		name    string
		fake    *fakeS3
		file    string
		wantErr error
	}{
		{"no such key", &fakeS3{objects: map[string][]byte{}}, "missing.bif", source.ErrNotFound},
		{"client error", &fakeS3{err: boom}, "any.bif", boom},
		{"invalid name", &fakeS3{}, "../x", source.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFromClient(tt.fake, "bucket", gzipcodec.New())
			if _, err := s.ReadFile(context.Background(), tt.file); !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSource_Close(t *testing.T) {
	s := NewFromClient(&fakeS3{}, "bucket", gzipcodec.New())
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
