package filecache

import (
	"bytes"
	"fmt"
	"sync/atomic"
)

// Handle is a borrowed reference to a cached file. The content stays resident
// until Release or Discard is called; exactly one of them must be called once.
// The bytes returned by Bytes must not be modified.
type Handle struct {
	store    *Store
	entry    *entry
	content  []byte
	released atomic.Bool
}

func newHandle(s *Store, e *entry) *Handle {
	return &Handle{store: s, entry: e, content: e.content}
}

// Name returns the cached file name.
func (h *Handle) Name() string {
	return h.entry.name
}

// Size returns the content length.
func (h *Handle) Size() int64 {
	return h.entry.bytes
}

// Evictable reports whether the entry may be evicted once released.
func (h *Handle) Evictable() bool {
	return h.entry.evictable
}

// Bytes returns the cached content.
func (h *Handle) Bytes() []byte {
	return h.content
}

// Reader returns a reader over the cached content.
func (h *Handle) Reader() *bytes.Reader {
	return bytes.NewReader(h.content)
}

// Release returns the borrow. If a removal was requested while the entry was
// borrowed and this is the last borrow, the entry is destroyed now.
// Releasing a handle twice panics.
func (h *Handle) Release() {
	h.markReleased()
	h.store.release(h.entry)
}

// Discard returns the borrow and asks the store to remove the entry. The
// removal is deferred while other handles still hold it.
func (h *Handle) Discard() RemoveOutcome {
	h.markReleased()
	return h.store.discard(h.entry)
}

func (h *Handle) markReleased() {
	if !h.released.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("filecache: handle for %q released twice", h.entry.name))
	}
}
