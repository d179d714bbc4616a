package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/assetcache/internal/stats"
)

func TestCollector_IncCounter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter(stats.MetricCacheHits, 2)
	c.IncCounter(stats.MetricCacheHits, 3)

	if got := c.Total(stats.MetricCacheHits); got != 5 {
		t.Errorf("Total() = %d, want 5", got)
	}

	entries := logs.FilterMessage("counter").All()
	if len(entries) != 2 {
		t.Fatalf("logged %d counter entries, want 2", len(entries))
	}
	last := entries[1].ContextMap()
	if last["metric"] != stats.MetricCacheHits {
		t.Errorf("metric field = %v, want %q", last["metric"], stats.MetricCacheHits)
	}
	if last["total"] != int64(5) {
		t.Errorf("total field = %v, want 5", last["total"])
	}
}

func TestCollector_GaugeAndHistogram(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(zap.New(core))

	c.SetGauge(stats.MetricCacheBytes, 1024)
	c.ObserveHistogram(stats.MetricSourceReadSeconds, 0.5)

	if n := logs.FilterMessage("gauge").Len(); n != 1 {
		t.Errorf("gauge entries = %d, want 1", n)
	}
	if n := logs.FilterMessage("histogram").Len(); n != 1 {
		t.Errorf("histogram entries = %d, want 1", n)
	}
}

func TestNew_NilLogger(t *testing.T) {
	c := New(nil)
	c.IncCounter(stats.MetricOpens, 1)
	if got := c.Total(stats.MetricOpens); got != 1 {
		t.Errorf("Total() = %d, want 1", got)
	}
}
