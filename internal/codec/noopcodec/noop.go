// Package noopcodec provides a codec for assets stored uncompressed.
package noopcodec

import (
	"io"

	"github.com/discochess/assetcache/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = Codec{}

// Codec passes data through unchanged.
type Codec struct{}

// New returns a new no-op codec.
func New() Codec {
	return Codec{}
}

// Reader returns r as a ReadCloser. Closing it does not close r.
func (Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w as a WriteCloser. Closing it does not close w.
func (Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns empty string; stored names carry no suffix.
func (Codec) Extension() string {
	return ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
