package reload

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not registered", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestPhaseHistogramLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()
	m.Observe(ctx, "process/colormaps", true, 2*time.Millisecond)
	m.Observe(ctx, "process/colormaps", true, 3*time.Millisecond)
	m.Observe(ctx, "apply/particles", false, time.Millisecond)
	m.Observe(ctx, "", true, time.Second)

	f := family(t, reg, "tintcore_reload_phase_seconds")
	if f.GetType() != dto.MetricType_HISTOGRAM {
		t.Fatalf("type = %v", f.GetType())
	}
	var found bool
	for _, metric := range f.GetMetric() {
		l := labels(metric)
		if l["phase"] == "process" && l["category"] == "colormaps" {
			found = true
			if got := metric.GetHistogram().GetSampleCount(); got != 2 {
				t.Fatalf("sample count = %d", got)
			}
		}
	}
	if !found || len(f.GetMetric()) != 2 {
		t.Fatalf("unexpected series %v", f.GetMetric())
	}
}

func TestRecordReportSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordReport(Report{
		Degraded:   true,
		Categories: []CategoryReport{{Name: "block_properties", Applied: 7}, {Name: "item_appearances"}},
	})
	applied := family(t, reg, "tintcore_applied_overrides")
	for _, metric := range applied.GetMetric() {
		if labels(metric)["category"] == "block_properties" && metric.GetGauge().GetValue() != 7 {
			t.Fatalf("applied gauge = %v", metric.GetGauge().GetValue())
		}
	}
	if got := family(t, reg, "tintcore_degraded").GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Fatalf("degraded = %v", got)
	}
}
