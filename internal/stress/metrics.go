package stress

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters a run reports into.
type Metrics struct {
	Pushed       prometheus.Counter
	Popped       prometheus.Counter
	EmptyReports prometheus.Counter
	Duration     prometheus.Histogram
}

// NewMetrics creates the run metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mpsc",
			Name:      "pushed_total",
			Help:      "Nodes pushed by producers.",
		}),
		Popped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mpsc",
			Name:      "popped_total",
			Help:      "Nodes returned to the consumer.",
		}),
		EmptyReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mpsc",
			Name:      "empty_reports_total",
			Help:      "Pops that came back empty while nodes were still expected.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mpsc",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a stress run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	reg.MustRegister(m.Pushed, m.Popped, m.EmptyReports, m.Duration)
	return m
}
