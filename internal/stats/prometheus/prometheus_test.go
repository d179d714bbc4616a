package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/discochess/assetcache/internal/stats"
)

// find gathers reg and returns the metric family with the given name.
func find(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry == nil {
		t.Error("registry should not be nil")
	}
}

func TestNew_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	if c.registry != reg {
		t.Error("registry should be the custom registry")
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricCacheHits, 5)
	c.IncCounter(stats.MetricCacheHits, 3)

	f := find(t, reg, stats.MetricCacheHits)
	if f == nil {
		t.Fatalf("counter %s not found in registry", stats.MetricCacheHits)
	}
	if val := f.GetMetric()[0].GetCounter().GetValue(); val != 8 {
		t.Errorf("counter value = %v, want 8", val)
	}
	if got, want := f.GetHelp(), help[stats.MetricCacheHits]; got != want {
		t.Errorf("help = %q, want %q", got, want)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge(stats.MetricCacheBytes, 10)
	c.SetGauge(stats.MetricCacheBytes, 42)

	f := find(t, reg, stats.MetricCacheBytes)
	if f == nil {
		t.Fatalf("gauge %s not found in registry", stats.MetricCacheBytes)
	}
	if val := f.GetMetric()[0].GetGauge().GetValue(); val != 42 {
		t.Errorf("gauge value = %v, want 42", val)
	}
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithBuckets([]float64{0.001, 0.01, 0.1}))

	c.ObserveHistogram(stats.MetricSourceReadSeconds, 0.005)
	c.ObserveHistogram(stats.MetricSourceReadSeconds, 0.05)
	c.ObserveHistogram(stats.MetricSourceReadSeconds, 5)

	f := find(t, reg, stats.MetricSourceReadSeconds)
	if f == nil {
		t.Fatalf("histogram %s not found in registry", stats.MetricSourceReadSeconds)
	}
	h := f.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 3 {
		t.Errorf("histogram count = %v, want 3", h.GetSampleCount())
	}
	if n := len(h.GetBucket()); n != 3 {
		t.Errorf("histogram buckets = %d, want 3", n)
	}
}

func TestCollector_UnknownMetricUsesNameAsHelp(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter("custom_total", 1)

	f := find(t, reg, "custom_total")
	if f == nil {
		t.Fatal("custom_total not found in registry")
	}
	if f.GetHelp() != "custom_total" {
		t.Errorf("help = %q, want %q", f.GetHelp(), "custom_total")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncCounter(stats.MetricOpens, 1)
				c.SetGauge(stats.MetricCacheEntries, int64(j))
				c.ObserveHistogram(stats.MetricSourceReadSeconds, float64(j))
			}
		}()
	}
	wg.Wait()

	if f := find(t, reg, stats.MetricOpens); f == nil {
		t.Error("opens counter not found")
	} else if val := f.GetMetric()[0].GetCounter().GetValue(); val != 1000 {
		t.Errorf("counter value = %v, want 1000", val)
	}
	if f := find(t, reg, stats.MetricSourceReadSeconds); f == nil {
		t.Error("histogram not found")
	} else if count := f.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1000 {
		t.Errorf("histogram count = %v, want 1000", count)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Pre-register a counter with the same descriptor.
	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preexisting_total",
		Help: "preexisting_total",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter("preexisting_total", 5)

	f := find(t, reg, "preexisting_total")
	if f == nil {
		t.Fatal("preexisting_total not found")
	}
	if val := f.GetMetric()[0].GetCounter().GetValue(); val != 105 {
		t.Errorf("counter value = %v, want 105", val)
	}
}
