// Package metrics defines the Prometheus collectors for compilation,
// playouts and backend verification.
//
// Collectors are registered on a caller-supplied Registerer so tests and
// embedded uses can keep their own registry. All operations are safe for
// concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gitrdm/goggp/pkg/propnet"
)

const namespace = "goggp"

// Metrics holds every collector.
type Metrics struct {
	// PlayoutsTotal counts finished playouts.
	// Labels: backend, status (ok, error)
	PlayoutsTotal *prometheus.CounterVec

	// PlayoutDepth observes the number of steps per playout.
	// Labels: backend
	PlayoutDepth *prometheus.HistogramVec

	// PlayoutDurationSeconds observes wall time per playout.
	// Labels: backend
	PlayoutDurationSeconds *prometheus.HistogramVec

	CompileDurationSeconds prometheus.Histogram

	// PropnetComponents reports the size of the last compiled network.
	// Labels: kind (total, propositions, gates, constants, transitions)
	PropnetComponents *prometheus.GaugeVec

	EquivalenceMismatchesTotal prometheus.Counter
}

// New creates the collectors and registers them on reg. Registering twice
// on one registry panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PlayoutsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "playouts_total",
				Help:      "Finished random playouts by backend and status",
			},
			[]string{"backend", "status"},
		),
		PlayoutDepth: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "playout_depth",
				Help:      "Steps from the start state to a terminal state",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{"backend"},
		),
		PlayoutDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "playout_duration_seconds",
				Help:      "Wall time of one playout",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"backend"},
		),
		CompileDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Time to compile a game into a propnet",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
		}),
		PropnetComponents: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "propnet_components",
				Help:      "Components of the last compiled propnet by kind",
			},
			[]string{"kind"},
		),
		EquivalenceMismatchesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equivalence_mismatches_total",
			Help:      "Verification runs in which the two backends disagreed",
		}),
	}
}

// ObservePlayout records one playout. A nil *Metrics records nothing.
func (m *Metrics) ObservePlayout(backend string, depth int, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PlayoutsTotal.WithLabelValues(backend, status).Inc()
	if err == nil {
		m.PlayoutDepth.WithLabelValues(backend).Observe(float64(depth))
		m.PlayoutDurationSeconds.WithLabelValues(backend).Observe(d.Seconds())
	}
}

// ObserveCompile records the statistics of a compiled propnet.
func (m *Metrics) ObserveCompile(s propnet.Stats) {
	if m == nil {
		return
	}
	m.CompileDurationSeconds.Observe(s.Duration.Seconds())
	m.PropnetComponents.WithLabelValues("total").Set(float64(s.Components))
	m.PropnetComponents.WithLabelValues("propositions").Set(float64(s.Propositions))
	m.PropnetComponents.WithLabelValues("gates").Set(float64(s.Gates))
	m.PropnetComponents.WithLabelValues("constants").Set(float64(s.Constants))
	m.PropnetComponents.WithLabelValues("transitions").Set(float64(s.Transitions))
}

// ObserveMismatch counts a failed verification.
func (m *Metrics) ObserveMismatch() {
	if m == nil {
		return
	}
	m.EquivalenceMismatchesTotal.Inc()
}
