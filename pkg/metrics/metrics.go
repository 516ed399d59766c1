// Package metrics collects ranking run statistics in a Prometheus registry
// and writes them in the text exposition format for the node exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ritzau/looprank/pkg/looprank"
)

const namespace = "looprank"

// Metrics holds the collectors of one driver invocation
type Metrics struct {
	registry *prometheus.Registry

	boxes    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	loops    *prometheus.GaugeVec
	topScore *prometheus.GaugeVec
}

// New creates metrics registered in a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		boxes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxes_ranked_total",
			Help:      "Time boxes ranked by scenario and method",
		}, []string{"scenario", "method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Ranking runs that ended in an error",
		}, []string{"scenario", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time to rank all boxes of a scenario and method",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"scenario", "method"}),
		loops: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feedback_loops",
			Help:      "Feedback loops found in the last box",
		}, []string{"scenario", "method"}),
		topScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "top_importance",
			Help:      "Highest importance score of the last box per ranking direction",
		}, []string{"scenario", "method", "direction"}),
	}

	m.registry.MustRegister(m.boxes, m.failures, m.duration, m.loops, m.topScore)
	return m
}

// Registry returns the registry holding all collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records a finished ranking of a box series
func (m *Metrics) ObserveRun(scenario, method string, d time.Duration, series *looprank.BoxSeries) {
	m.boxes.WithLabelValues(scenario, method).Add(float64(len(series.Boxes)))
	m.duration.WithLabelValues(scenario, method).Observe(d.Seconds())

	if len(series.Boxes) == 0 {
		return
	}
	last := series.Boxes[len(series.Boxes)-1]
	m.loops.WithLabelValues(scenario, method).Set(float64(len(last.Loops)))
	for _, r := range last.Rankings() {
		if len(r.List) > 0 {
			m.topScore.WithLabelValues(scenario, method, string(r.Direction)).Set(r.List[0].Score)
		}
	}
}

// RecordFailure counts a run that could not be completed
func (m *Metrics) RecordFailure(scenario, method string) {
	m.failures.WithLabelValues(scenario, method).Inc()
}

// WriteTextfile atomically writes all metrics to path
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
