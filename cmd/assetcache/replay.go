package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/discochess/assetcache/internal/replay"
	"github.com/discochess/assetcache/internal/stats"
	statslogger "github.com/discochess/assetcache/internal/stats/logger"
	statsprom "github.com/discochess/assetcache/internal/stats/prometheus"
)

var (
	replayTitle   string
	replayTop     int
	replayMetrics bool
)

var replayCmd = &cobra.Command{
	Use:   "replay TRACE",
	Short: "Replay an access trace against the cache",
	Long: `Replay a recorded access trace against the cache and print a Markdown
report of hits, evictions and read latency.

A trace is a text file with one asset name per line. Blank lines and lines
starting with '#' are ignored.

Examples:
  assetcache replay --game bg2 trace.txt
  assetcache replay --source s3://assets/bg2 --metrics trace.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayTitle, "title", "Cache Replay", "report title")
	replayCmd.Flags().IntVar(&replayTop, "top", 10, "number of most accessed files to list")
	replayCmd.Flags().BoolVar(&replayMetrics, "metrics", false, "print collected metrics after the report")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	trace, err := replay.ParseTrace(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing trace: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	var collector stats.Collector = statsprom.New(registry)
	if verbose {
		collector = stats.NewMulti(collector, statslogger.New(logger))
	}

	client, err := newClient(cmd, logger, collector)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := replay.Run(cmd.Context(), client, trace)
	if err != nil {
		return fmt.Errorf("replaying trace: %w", err)
	}

	replay.WriteMarkdown(os.Stdout, replayTitle, res, client.Stats())

	if top := res.TopFiles(replayTop); len(top) > 0 {
		fmt.Println("## Most Accessed")
		fmt.Println()
		fmt.Println("| File | Accesses |")
		fmt.Println("|------|----------|")
		for _, fc := range top {
			fmt.Printf("| %s | %d |\n", fc.Name, fc.Count)
		}
		fmt.Println()
	}

	if replayMetrics {
		if err := printMetrics(registry); err != nil {
			return fmt.Errorf("gathering metrics: %w", err)
		}
	}

	return nil
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	fmt.Println("## Metrics")
	fmt.Println()
	fmt.Println("| Metric | Value |")
	fmt.Println("|--------|-------|")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Printf("| %s | %s |\n", mf.GetName(), metricValue(mf.GetType(), m))
		}
	}
	fmt.Println()
	return nil
}

func metricValue(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%.0f", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%.0f", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%.6f", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "-"
	}
}
