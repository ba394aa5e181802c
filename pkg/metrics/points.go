package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
	OutcomeZero     = "zero"
)

// PointsMetrics records points-total reads and award calls.
type PointsMetrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	awards        *prometheus.CounterVec
	awarded       *prometheus.CounterVec
}

// NewPointsMetrics registers the points metrics on the provided registerer.
func NewPointsMetrics(reg prometheus.Registerer) *PointsMetrics {
	if reg == nil {
		return &PointsMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "points_total_fetches_total",
		Help: "Points total reads by outcome.",
	}, []string{"outcome"})
	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "points_total_fetch_duration_seconds",
		Help:    "Duration of points total reads in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	awards := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "points_awards_total",
		Help: "Award calls by event key and outcome.",
	}, []string{"event", "outcome"})
	awarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "points_awarded_sum",
		Help: "Points granted by event key.",
	}, []string{"event"})
	reg.MustRegister(fetches, fetchDuration, awards, awarded)
	return &PointsMetrics{
		fetches:       fetches,
		fetchDuration: fetchDuration,
		awards:        awards,
		awarded:       awarded,
	}
}

// ObserveFetch records one read of the totals view.
func (m *PointsMetrics) ObserveFetch(outcome string, duration time.Duration) {
	if m == nil || m.fetches == nil {
		return
	}
	m.fetches.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

// ObserveAward records one award call and the points it granted.
func (m *PointsMetrics) ObserveAward(event, outcome string, points int) {
	if m == nil || m.awards == nil {
		return
	}
	event = normalizeLabel(event)
	m.awards.WithLabelValues(event, normalizeLabel(outcome)).Inc()
	if points > 0 {
		m.awarded.WithLabelValues(event).Add(float64(points))
	}
}
