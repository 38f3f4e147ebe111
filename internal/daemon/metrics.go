package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rioslabs/reaper/types"
)

// Metrics exposes run outcomes for scraping in daemon mode.
type Metrics struct {
	runs        *prometheus.CounterVec
	scanned     prometheus.Counter
	terminated  prometheus.Counter
	failures    prometheus.Counter
	unattempted prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics registers reaper metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reaper_runs_total",
			Help: "Reap runs by outcome.",
		}, []string{"status"}),
		scanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "reaper_instances_scanned_total",
			Help: "Instances scanned across all runs.",
		}),
		terminated: factory.NewCounter(prometheus.CounterOpts{
			Name: "reaper_instances_terminated_total",
			Help: "Instances terminated (or simulated in dry runs).",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "reaper_termination_failures_total",
			Help: "Instances that could not be terminated.",
		}),
		unattempted: factory.NewCounter(prometheus.CounterOpts{
			Name: "reaper_instances_unattempted_total",
			Help: "Eligible instances left unattempted by the run deadline.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reaper_run_duration_seconds",
			Help:    "Duration of reap runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// ObserveRun records the outcome of one run.
func (m *Metrics) ObserveRun(report *types.RunReport, err error) {
	if err != nil {
		m.runs.WithLabelValues("fatal").Inc()
		return
	}

	m.runs.WithLabelValues("completed").Inc()
	m.scanned.Add(float64(report.Scanned))
	m.terminated.Add(float64(report.Terminated))
	m.failures.Add(float64(report.Failed()))
	m.unattempted.Add(float64(report.Unattempted))
	m.duration.Observe(report.Duration.Seconds())
}
