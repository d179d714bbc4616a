package assetcache

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"

	"github.com/discochess/assetcache/internal/filecache"
)

// ErrFileClosed is returned by File methods after Close.
var ErrFileClosed = fmt.Errorf("assetcache: %w", fs.ErrClosed)

// Compile-time checks that File implements the io interfaces.
var (
	_ io.ReadSeekCloser = (*File)(nil)
	_ io.ReaderAt       = (*File)(nil)
)

// File is an open asset. It holds the cache entry it was served from, if
// any, until Close. Read and Seek share an offset and must not be called
// concurrently; ReadAt may be.
type File struct {
	name   string
	data   []byte
	r      *bytes.Reader
	handle *filecache.Handle
	closed atomic.Bool
}

func newCachedFile(h *filecache.Handle) *File {
	return &File{
		name:   h.Name(),
		data:   h.Bytes(),
		r:      h.Reader(),
		handle: h,
	}
}

func newUncachedFile(name string, data []byte) *File {
	return &File{
		name: name,
		data: data,
		r:    bytes.NewReader(data),
	}
}

// Name returns the asset name the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Size returns the content length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Cached reports whether the content is served from the cache.
func (f *File) Cached() bool {
	return f.handle != nil
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, ErrFileClosed
	}
	return f.r.Read(p)
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed.Load() {
		return 0, ErrFileClosed
	}
	return f.r.ReadAt(p, off)
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed.Load() {
		return 0, ErrFileClosed
	}
	return f.r.Seek(offset, whence)
}

// Close returns the cache borrow. Closing twice returns ErrFileClosed.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return ErrFileClosed
	}
	if f.handle != nil {
		f.handle.Release()
	}
	return nil
}
