package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/discochess/assetcache"
)

// Opener is the part of assetcache.Client a replay needs.
type Opener interface {
	Open(ctx context.Context, name string) (*assetcache.File, error)
}

// Result aggregates one replay.
type Result struct {
	Accesses int
	Cached   int // opens served from the cache, including fresh admissions
	Uncached int
	NotFound int
	Bytes    int64

	// Latencies holds the open-and-read time of every successful access,
	// in seconds, in trace order.
	Latencies []float64
	// FileHits counts accesses per name.
	FileHits map[string]int
}

// Run opens and fully reads every name in trace. Missing files are counted
// and skipped; any other error stops the replay.
func Run(ctx context.Context, c Opener, trace []string) (*Result, error) {
	res := &Result{
		Latencies: make([]float64, 0, len(trace)),
		FileHits:  make(map[string]int),
	}

	for _, name := range trace {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Accesses++
		res.FileHits[name]++

		start := time.Now()
		f, err := c.Open(ctx, name)
		if err != nil {
			if errors.Is(err, assetcache.ErrNotFound) {
				res.NotFound++
				continue
			}
			return res, fmt.Errorf("opening %s: %w", name, err)
		}

		n, err := io.Copy(io.Discard, f)
		cached := f.Cached()
		f.Close()
		if err != nil {
			return res, fmt.Errorf("reading %s: %w", name, err)
		}

		res.Latencies = append(res.Latencies, time.Since(start).Seconds())
		res.Bytes += n
		if cached {
			res.Cached++
		} else {
			res.Uncached++
		}
	}

	return res, nil
}

// UniqueFiles returns the number of distinct names accessed.
func (r *Result) UniqueFiles() int {
	return len(r.FileHits)
}

// FileCount is a name with its access count.
type FileCount struct {
	Name  string
	Count int
}

// TopFiles returns the n most accessed names, most accessed first. Ties are
// ordered by name.
func (r *Result) TopFiles(n int) []FileCount {
	counts := make([]FileCount, 0, len(r.FileHits))
	for name, c := range r.FileHits {
		counts = append(counts, FileCount{Name: name, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if n < len(counts) {
		counts = counts[:n]
	}
	return counts
}
