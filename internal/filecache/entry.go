package filecache

import (
	"fmt"
	"time"
)

// entry is one cached file. All fields are guarded by the owning Store's mutex
// except name, bytes and evictable, which never change after creation.
// content is dropped when the entry is destroyed.
type entry struct {
	name       string
	content    []byte
	bytes      int64
	evictable  bool
	refs       int
	lastAccess time.Time

	pendingRemoval bool
	destroyed      bool
}

// acquire borrows the entry.
func (e *entry) acquire(now time.Time) {
	e.refs++
	e.lastAccess = now
}

// release returns a borrow. Releasing more than was acquired corrupts the
// size accounting, so it panics.
func (e *entry) release() {
	if e.refs <= 0 {
		panic(fmt.Sprintf("filecache: release of %q without matching acquire", e.name))
	}
	e.refs--
}

// unloadable reports whether the entry may be destroyed right now.
func (e *entry) unloadable() bool {
	return e.evictable && e.refs == 0
}

// State describes where an entry is in its lifecycle.
type State int

const (
	// StateFree means nobody holds the entry.
	StateFree State = iota
	// StateBorrowed means at least one handle is outstanding.
	StateBorrowed
	// StateDestroyed means the entry left the cache.
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateBorrowed:
		return "borrowed"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

func (e *entry) state() State {
	switch {
	case e.destroyed:
		return StateDestroyed
	case e.refs > 0:
		return StateBorrowed
	default:
		return StateFree
	}
}

// EntryInfo is a point-in-time view of an entry.
type EntryInfo struct {
	Name           string
	Size           int64
	Refs           int
	LastAccess     time.Time
	Evictable      bool
	PendingRemoval bool
	State          State
}

func (e *entry) info() EntryInfo {
	return EntryInfo{
		Name:           e.name,
		Size:           e.bytes,
		Refs:           e.refs,
		LastAccess:     e.lastAccess,
		Evictable:      e.evictable,
		PendingRemoval: e.pendingRemoval,
		State:          e.state(),
	}
}
