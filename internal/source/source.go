// Package source defines the storage backends asset files are read from on
// a cache miss.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when an asset does not exist in the source.
var ErrNotFound = errors.New("source: file not found")

// ErrInvalidName is returned for names that escape the source root.
var ErrInvalidName = errors.New("source: invalid file name")

// Source reads whole asset files.
// Implementations handle path formats and decoding internally; the returned
// bytes are the decoded file content.
type Source interface {
	// ReadFile reads the content of the named file.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// Close releases any resources held by the source.
	Close() error
}

// CleanName normalizes a slash separated asset name. Backslashes are treated
// as separators and leading slashes are dropped. Names that are empty or that
// climb above the root are rejected.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	cleaned := path.Clean("/" + name)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || strings.Contains(name, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return cleaned, nil
}

// NormalizePrefix returns prefix with exactly one trailing slash, or the
// empty string.
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
