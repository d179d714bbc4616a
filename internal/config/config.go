// Package config loads the cache configuration from line-oriented key=value
// files such as "bg2_cache.cfg".
//
// Recognized keys are MaxCacheSize, MaxFileSize, WhiteList, UnloadList,
// BlackList and Enabled. Sizes are mebibytes unless they carry a unit suffix
// ("512KB", "1.5GiB"). Lists are comma separated and replace the defaults; an empty
// value clears the list.
// Unknown keys and malformed values are ignored.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/discochess/assetcache/internal/policy"
)

// Keys recognized in a configuration file.
const (
	KeyMaxCacheSize = "MaxCacheSize"
	KeyMaxFileSize  = "MaxFileSize"
	KeyWhiteList    = "WhiteList"
	KeyUnloadList   = "UnloadList"
	KeyBlackList    = "BlackList"
	KeyEnabled      = "Enabled"
)

const mib = 1 << 20

// Config holds the cache settings.
type Config struct {
	// Enabled turns caching on. A disabled cache serves every read from storage.
	Enabled bool
	// MaxCacheSize is the total byte budget.
	MaxCacheSize int64
	// MaxFileSize is the largest non-whitelisted file admitted.
	MaxFileSize int64
	WhiteList   []string
	UnloadList  []string
	BlackList   []string
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Enabled:      true,
		MaxCacheSize: 224 * mib,
		MaxFileSize:  16 * mib,
		WhiteList:    []string{"CHAAnim.bif", "OBJAnim.bif", "Cache2"},
		UnloadList:   []string{"Cache2"},
		BlackList:    []string{},
	}
}

// FileName returns the configuration file name for a game type.
func FileName(gameType string) string {
	return gameType + "_cache.cfg"
}

// Lists returns the pattern lists.
func (c Config) Lists() policy.Lists {
	return policy.Lists{
		WhiteList:  c.WhiteList,
		UnloadList: c.UnloadList,
		BlackList:  c.BlackList,
	}
}

// Classifier builds the admission policy described by c.
func (c Config) Classifier() *policy.Classifier {
	return policy.New(c.Lists(), c.MaxFileSize)
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no cache config, using defaults", zap.String("path", path))
			return Default(), nil
		}
		return Config{}, fmt.Errorf("opening cache config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f, logger)
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads key=value lines from r on top of the defaults. Lines starting
// with '#' or ';' are comments. Only read errors are returned.
func Parse(r io.Reader, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Debug("skipping line without '='", zap.Int("line", lineNo))
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if err := cfg.set(key, value); err != nil {
			logger.Debug("skipping config line",
				zap.Int("line", lineNo),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var errUnknownKey = errors.New("unknown key")

func (c *Config) set(key, value string) error {
	switch key {
	case KeyMaxCacheSize:
		n, err := ParseSize(value)
		if err != nil {
			return err
		}
		c.MaxCacheSize = n
	case KeyMaxFileSize:
		n, err := ParseSize(value)
		if err != nil {
			return err
		}
		c.MaxFileSize = n
	case KeyWhiteList:
		return replaceList(&c.WhiteList, value)
	case KeyUnloadList:
		return replaceList(&c.UnloadList, value)
	case KeyBlackList:
		return replaceList(&c.BlackList, value)
	case KeyEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		c.Enabled = b
	default:
		return errUnknownKey
	}
	return nil
}

// ParseSize parses a positive byte size. A bare integer is a number of
// mebibytes; anything else goes through units.RAMInBytes, so "512KB" and
// "1.5GiB" are both accepted.
func ParseSize(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("size %q must be positive", s)
		}
		if n > math.MaxInt64/mib {
			return 0, fmt.Errorf("size %q overflows", s)
		}
		return n * mib, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("size %q must be positive", s)
	}
	return n, nil
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// replaceList sets dst to the items of value. A value with no items clears
// the list.
func replaceList(dst *[]string, value string) error {
	items := SplitList(value)
	if items == nil {
		items = []string{}
	}
	*dst = items
	return nil
}

// String renders c in the file format Parse reads.
func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%t\n", KeyEnabled, c.Enabled)
	fmt.Fprintf(&b, "%s=%s\n", KeyMaxCacheSize, formatSize(c.MaxCacheSize))
	fmt.Fprintf(&b, "%s=%s\n", KeyMaxFileSize, formatSize(c.MaxFileSize))
	fmt.Fprintf(&b, "%s=%s\n", KeyWhiteList, strings.Join(c.WhiteList, ","))
	fmt.Fprintf(&b, "%s=%s\n", KeyUnloadList, strings.Join(c.UnloadList, ","))
	fmt.Fprintf(&b, "%s=%s\n", KeyBlackList, strings.Join(c.BlackList, ","))
	return b.String()
}

func formatSize(n int64) string {
	if n%mib == 0 {
		return strconv.FormatInt(n/mib, 10)
	}
	return strconv.FormatInt(n, 10) + "b"
}
