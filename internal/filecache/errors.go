package filecache

import "errors"

// Admission failures. None of them is fatal: the caller is expected to serve
// the file without caching it.
var (
	// ErrTooLarge means the file exceeds the total cache size or, unless
	// whitelisted, the maximum single-file size.
	ErrTooLarge = errors.New("filecache: file too large")

	// ErrBlacklisted means the file matched the blacklist.
	ErrBlacklisted = errors.New("filecache: file blacklisted")

	// ErrExists means an entry with the same name is already cached.
	ErrExists = errors.New("filecache: file already cached")

	// ErrCacheFull means eviction could not free enough space because the
	// remaining entries are borrowed or pinned.
	ErrCacheFull = errors.New("filecache: cache full")

	// ErrShortRead means the producer filled fewer bytes than announced.
	ErrShortRead = errors.New("filecache: short read")

	// ErrInvalidSize means a negative size was passed to Admit.
	ErrInvalidSize = errors.New("filecache: invalid size")
)

// Construction errors.
var (
	// ErrInvalidLimit means the maximum cache size is not positive.
	ErrInvalidLimit = errors.New("filecache: max cache size must be positive")

	// ErrNoClassifier means no admission policy was provided.
	ErrNoClassifier = errors.New("filecache: no classifier provided")
)
