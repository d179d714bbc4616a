package replay

import (
	"fmt"
	"io"

	"github.com/docker/go-units"

	"github.com/discochess/assetcache/internal/filecache"
)

// WriteMarkdown writes a Markdown summary of a replay and the cache state
// it left behind.
func WriteMarkdown(w io.Writer, title string, res *Result, cache filecache.Stats) {
	fmt.Fprintf(w, "# %s\n\n", title)

	fmt.Fprintln(w, "## Accesses")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- **Accesses:** %d (%d unique files)\n", res.Accesses, res.UniqueFiles())
	fmt.Fprintf(w, "- **Served from cache:** %d\n", res.Cached)
	fmt.Fprintf(w, "- **Served uncached:** %d\n", res.Uncached)
	fmt.Fprintf(w, "- **Not found:** %d\n", res.NotFound)
	fmt.Fprintf(w, "- **Bytes read:** %s\n", units.BytesSize(float64(res.Bytes)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Cache")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Hits | Misses | Hit Rate | Admissions | Rejections | Evictions | Resident |")
	fmt.Fprintln(w, "|------|--------|----------|------------|------------|-----------|----------|")
	fmt.Fprintf(w, "| %d | %d | %.1f%% | %d | %d | %d | %s / %s |\n",
		cache.Hits, cache.Misses, cache.HitRate(), cache.Admissions, cache.Rejections,
		cache.Evictions, units.BytesSize(float64(cache.Size)), units.BytesSize(float64(cache.MaxSize)))
	fmt.Fprintln(w)

	lat := Describe(res.Latencies)
	fmt.Fprintln(w, "## Latency (ms)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Mean | Median | P90 | P99 | Max |")
	fmt.Fprintln(w, "|------|--------|-----|-----|-----|")
	fmt.Fprintf(w, "| %.3f | %.3f | %.3f | %.3f | %.3f |\n",
		lat.Mean*1000, lat.Median*1000, lat.P90*1000, lat.P99*1000, lat.Max*1000)
	fmt.Fprintln(w)

	top := res.TopFiles(10)
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w, "## Most Accessed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| File | Accesses |")
	fmt.Fprintln(w, "|------|----------|")
	for _, fc := range top {
		fmt.Fprintf(w, "| %s | %d |\n", fc.Name, fc.Count)
	}
	fmt.Fprintln(w)
}
