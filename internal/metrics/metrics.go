// Package metrics exposes Prometheus collectors for ordering, validation and
// session activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. All methods are safe on a nil
// receiver so callers never need to guard them.
type Metrics struct {
	registry *prometheus.Registry

	orderingsComputed *prometheus.CounterVec
	orderingLatency   prometheus.Histogram
	orderingDeferrals prometheus.Counter
	orderingFlushed   prometheus.Counter
	orderingLongest   prometheus.Histogram
	validations       *prometheus.CounterVec
	sessions          *prometheus.CounterVec
	swipes            *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		orderingsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipe_quiz_orderings_total",
				Help: "Orderings served, labelled by cache outcome.",
			},
			[]string{"cache"},
		),
		orderingLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swipe_quiz_ordering_duration_seconds",
				Help:    "Time spent sequencing a question set.",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		orderingDeferrals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "swipe_quiz_ordering_deferrals_total",
				Help: "Items deferred to break a same-framework run.",
			},
		),
		orderingFlushed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "swipe_quiz_ordering_flushed_total",
				Help: "Deferred items appended at the end without a breaker.",
			},
		),
		orderingLongest: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swipe_quiz_ordering_longest_run",
				Help:    "Longest same-framework run in each produced ordering.",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
			},
		),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipe_quiz_result_validations_total",
				Help: "Result validations, labelled by outcome.",
			},
			[]string{"outcome"},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipe_quiz_sessions_total",
				Help: "Session lifecycle transitions.",
			},
			[]string{"status"},
		),
		swipes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swipe_quiz_swipes_total",
				Help: "Recorded swipes by direction.",
			},
			[]string{"direction"},
		),
	}
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OrderingComputed records one freshly sequenced plan.
func (m *Metrics) OrderingComputed(elapsed time.Duration, deferred, flushed, longestRun int) {
	if m == nil {
		return
	}
	m.orderingsComputed.WithLabelValues("miss").Inc()
	m.orderingLatency.Observe(elapsed.Seconds())
	m.orderingDeferrals.Add(float64(deferred))
	m.orderingFlushed.Add(float64(flushed))
	m.orderingLongest.Observe(float64(longestRun))
}

// OrderingCacheHit records an ordering served from cache.
func (m *Metrics) OrderingCacheHit() {
	if m == nil {
		return
	}
	m.orderingsComputed.WithLabelValues("hit").Inc()
}

func (m *Metrics) Validation(pass bool) {
	if m == nil {
		return
	}
	outcome := "fail"
	if pass {
		outcome = "pass"
	}
	m.validations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionTransition(status string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(status).Inc()
}

func (m *Metrics) Swipe(direction string) {
	if m == nil {
		return
	}
	m.swipes.WithLabelValues(direction).Inc()
}
