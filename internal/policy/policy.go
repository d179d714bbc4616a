// Package policy decides whether a file may enter the cache and whether it may
// later be evicted, based on filename pattern lists.
package policy

import "strings"

// Wildcard is the pattern that matches every name.
const Wildcard = "*"

// Reason explains a Verdict.
type Reason int

const (
	// ReasonAdmitted means the file passed the size and blacklist checks.
	ReasonAdmitted Reason = iota
	// ReasonWhitelisted means the file matched the whitelist; size was not checked.
	ReasonWhitelisted
	// ReasonTooLarge means the file exceeds the maximum single-file size.
	ReasonTooLarge
	// ReasonBlacklisted means the file matched the blacklist.
	ReasonBlacklisted
)

// String returns a short name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonAdmitted:
		return "admitted"
	case ReasonWhitelisted:
		return "whitelisted"
	case ReasonTooLarge:
		return "too_large"
	case ReasonBlacklisted:
		return "blacklisted"
	default:
		return "unknown"
	}
}

// Lists holds the three pattern lists.
type Lists struct {
	// WhiteList names are admitted regardless of size and pinned unless
	// they also match UnloadList.
	WhiteList []string
	// UnloadList names whitelisted files that may still be evicted.
	UnloadList []string
	// BlackList names are never admitted unless whitelisted.
	BlackList []string
}

// Verdict is the result of classifying a file.
type Verdict struct {
	Admit       bool
	AllowUnload bool
	Reason      Reason
}

// Classifier applies Lists and a maximum single-file size.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	lists       Lists
	maxFileSize int64
}

// New creates a Classifier. The lists are copied.
func New(lists Lists, maxFileSize int64) *Classifier {
	return &Classifier{
		lists: Lists{
			WhiteList:  clone(lists.WhiteList),
			UnloadList: clone(lists.UnloadList),
			BlackList:  clone(lists.BlackList),
		},
		maxFileSize: maxFileSize,
	}
}

// Classify decides admission and evictability for a file of the given size.
// The whitelist is checked first and short-circuits both the size limit and
// the blacklist.
func (c *Classifier) Classify(name string, size int64) Verdict {
	if c.IsWhitelisted(name) {
		return Verdict{
			Admit:       true,
			AllowUnload: c.IsUnloadable(name),
			Reason:      ReasonWhitelisted,
		}
	}
	if size > c.maxFileSize {
		return Verdict{Reason: ReasonTooLarge}
	}
	if c.IsBlacklisted(name) {
		return Verdict{Reason: ReasonBlacklisted}
	}
	return Verdict{Admit: true, AllowUnload: true, Reason: ReasonAdmitted}
}

// IsWhitelisted reports whether name matches the whitelist.
func (c *Classifier) IsWhitelisted(name string) bool {
	return Matches(name, c.lists.WhiteList)
}

// IsBlacklisted reports whether name matches the blacklist.
func (c *Classifier) IsBlacklisted(name string) bool {
	return Matches(name, c.lists.BlackList)
}

// IsUnloadable reports whether name matches the unload-list.
func (c *Classifier) IsUnloadable(name string) bool {
	return Matches(name, c.lists.UnloadList)
}

// MaxFileSize returns the maximum size of a non-whitelisted file.
func (c *Classifier) MaxFileSize() int64 {
	return c.maxFileSize
}

// Lists returns a copy of the configured pattern lists.
func (c *Classifier) Lists() Lists {
	return Lists{
		WhiteList:  clone(c.lists.WhiteList),
		UnloadList: clone(c.lists.UnloadList),
		BlackList:  clone(c.lists.BlackList),
	}
}

// Matches reports whether any pattern is a substring of name.
// The Wildcard pattern matches everything; empty patterns match nothing.
func Matches(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if p == Wildcard || strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
