package gcssource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cloud.google.com/go/storage"

	"github.com/discochess/assetcache/internal/codec"
	"github.com/discochess/assetcache/internal/codec/zstdcodec"
	"github.com/discochess/assetcache/internal/source"
)

// fakeBucket serves objects from memory.
type fakeBucket struct {
	objects map[string][]byte
	opened  []string
}

func (b *fakeBucket) open(_ context.Context, key string) (io.ReadCloser, error) {
	b.opened = append(b.opened, key)
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestSource(t *testing.T, b *fakeBucket, opts ...Option) *Source {
	t.Helper()
	s := &Source{open: b.open, codec: zstdcodec.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Source{}
			WithPrefix(tt.input)(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestSource_objectKey(t *testing.T) {
	s := &Source{codec: zstdcodec.New(), prefix: "games/bg2/"}

	tests := []struct {
		name string
		want string
	}{
		{"data/AREA.bif", "games/bg2/data/AREA.bif.zst"},
		{"/CHAAnim.bif", "games/bg2/CHAAnim.bif.zst"},
	}
	for _, tt := range tests {
		got, err := s.objectKey(tt.name)
		if err != nil {
			t.Fatalf("objectKey(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("objectKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSource_ReadFile(t *testing.T) {
	data := []byte("area script")
	compressed, err := codec.Encode(zstdcodec.New(), data)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	b := &fakeBucket{objects: map[string][]byte{"v1/AR0100.bcs.zst": compressed}}
	s := newTestSource(t, b, WithPrefix("v1"))

	got, err := s.ReadFile(context.Background(), "AR0100.bcs")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadFile() = %q, want %q", got, data)
	}
}

func TestSource_ReadFile_NotFound(t *testing.T) {
	s := newTestSource(t, &fakeBucket{objects: map[string][]byte{}})

	_, err := s.ReadFile(context.Background(), "missing.bif")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("ReadFile() error = %v, want ErrNotFound", err)
	}
}

func TestSource_ReadFile_Canceled(t *testing.T) {
	b := &fakeBucket{}
	s := newTestSource(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ReadFile(ctx, "any.bif"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadFile() error = %v, want context.Canceled", err)
	}
	if len(b.opened) != 0 {
		t.Errorf("opened %v after cancellation, want nothing", b.opened)
	}
}

func TestSource_CloseWithoutClient(t *testing.T) {
	if err := (&Source{}).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
