package metrics

import "github.com/prometheus/client_golang/prometheus"

// AccessMetrics counts gate verdicts per route group.
type AccessMetrics struct {
	verdicts *prometheus.CounterVec
}

// NewAccessMetrics registers the gate metrics on the provided registerer.
func NewAccessMetrics(reg prometheus.Registerer) *AccessMetrics {
	if reg == nil {
		return &AccessMetrics{}
	}
	verdicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_gate_verdicts_total",
		Help: "Access gate verdicts by route group and kind.",
	}, []string{"group", "verdict"})
	reg.MustRegister(verdicts)
	return &AccessMetrics{verdicts: verdicts}
}

// IncVerdict records one evaluation.
func (m *AccessMetrics) IncVerdict(group, verdict string) {
	if m == nil || m.verdicts == nil {
		return
	}
	m.verdicts.WithLabelValues(normalizeLabel(group), normalizeLabel(verdict)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
