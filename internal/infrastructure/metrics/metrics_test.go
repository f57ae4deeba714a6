package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/fincore/internal/usecase"
)

var _ usecase.Recorder = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveEngine("analytics", 3*time.Millisecond)
	m.CacheLookup("analytics", true)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	got := make(map[string]bool, len(metricFamilies))
	for _, mf := range metricFamilies {
		got[mf.GetName()] = true
	}

	// Plain counters are exported from zero; vectors only once a series exists.
	want := []string{
		"fincore_engine_duration_seconds",
		"fincore_report_cache_lookups_total",
		"fincore_budget_alerts_fired_total",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d metric families, got %d: %v", len(want), len(got), got)
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("missing metric family %s", name)
		}
	}
}

func TestRecorderCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecurringPosted("post", 3)
	m.RecurringPosted("queue", 0)
	m.AlertsFired(2)
	m.AlertsFired(-1)
	m.CacheLookup("forecast", false)
	m.CacheLookup("forecast", false)
	m.CacheLookup("forecast", true)

	if got := testutil.ToFloat64(m.RecurringPostings.WithLabelValues("post")); got != 3 {
		t.Fatalf("expected 3 posted, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RecurringPostings); got != 1 {
		t.Fatalf("empty batches must not create series, got %d", got)
	}
	if got := testutil.ToFloat64(m.BudgetAlerts); got != 2 {
		t.Fatalf("expected 2 alerts, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("forecast", "miss")); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("forecast", "hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
}
