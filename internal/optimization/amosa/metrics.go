package amosa

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes optimizer progress to Prometheus. A nil *Metrics is valid
// and records nothing. The gauges carry a "run" label and a run's series are
// removed when its Minimize call returns.
type Metrics struct {
	Evaluations    prometheus.Counter
	ClusteringRuns prometheus.Counter
	Temperature    *prometheus.GaugeVec
	ArchiveSize    *prometheus.GaugeVec
	Phi            *prometheus.GaugeVec
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
}

// NewMetrics creates the optimizer collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "amosa",
			Name:      "evaluations_total",
			Help:      "Number of problem evaluations performed.",
		}),
		ClusteringRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "amosa",
			Name:      "clustering_runs_total",
			Help:      "Number of archive reductions by clustering.",
		}),
		Temperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amosa",
			Name:      "temperature",
			Help:      "Current annealing temperature of a running optimization.",
		}, []string{"run"}),
		ArchiveSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amosa",
			Name:      "archive_size",
			Help:      "Number of non-dominated solutions in the archive of a running optimization.",
		}, []string{"run"}),
		Phi: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "amosa",
			Name:      "phi",
			Help:      "Average displacement of the normalized Pareto front since the previous temperature.",
		}, []string{"run"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amosa",
			Name:      "runs_total",
			Help:      "Number of optimization runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "amosa",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of optimization runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
}

func (m *Metrics) observeEvaluation() {
	if m == nil {
		return
	}
	m.Evaluations.Inc()
}

func (m *Metrics) observeClustering() {
	if m == nil {
		return
	}
	m.ClusteringRuns.Inc()
}

func (m *Metrics) observeStats(run string, s Stats) {
	if m == nil {
		return
	}
	m.Temperature.WithLabelValues(run).Set(s.Temperature)
	m.ArchiveSize.WithLabelValues(run).Set(float64(s.ArchiveSize))
	m.Phi.WithLabelValues(run).Set(s.Phi)
}

func (m *Metrics) forgetRun(run string) {
	if m == nil {
		return
	}
	m.Temperature.DeleteLabelValues(run)
	m.ArchiveSize.DeleteLabelValues(run)
	m.Phi.DeleteLabelValues(run)
}

func (m *Metrics) observeRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
