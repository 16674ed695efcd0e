package reload

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder receives one observation per reload phase. Operation is
// "cycle", "prepare" or "<phase>/<category>".
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// ReportRecorder is an optional extension of MetricsRecorder that receives
// the finished report.
type ReportRecorder interface {
	RecordReport(r Report)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Metrics exports reload metrics to Prometheus.
type Metrics struct {
	cycles   *prometheus.CounterVec
	phases   *prometheus.HistogramVec
	applied  *prometheus.GaugeVec
	degraded prometheus.Gauge
}

// NewMetrics registers the reload collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tintcore_reload_cycles_total",
			Help: "Reload cycles by result",
		}, []string{"result"}),
		phases: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tintcore_reload_phase_seconds",
			Help:    "Time spent per reload phase and category",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"phase", "category"}),
		applied: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tintcore_applied_overrides",
			Help: "Host targets touched by the last cycle per category",
		}, []string{"category"}),
		degraded: f.NewGauge(prometheus.GaugeOpts{
			Name: "tintcore_degraded",
			Help: "1 when the last cycle left a category failed",
		}),
	}
}

// Observe implements MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	if operation == "cycle" {
		result := "error"
		if success {
			result = "success"
		}
		m.cycles.WithLabelValues(result).Inc()
		return
	}
	phase, category, _ := strings.Cut(operation, "/")
	m.phases.WithLabelValues(phase, category).Observe(duration.Seconds())
}

// RecordReport implements ReportRecorder.
func (m *Metrics) RecordReport(r Report) {
	for _, c := range r.Categories {
		m.applied.WithLabelValues(c.Name).Set(float64(c.Applied))
	}
	if r.Degraded {
		m.degraded.Set(1)
	} else {
		m.degraded.Set(0)
	}
}
