package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts store mutations. A nil *Metrics records nothing.
type Metrics struct {
	mutations  *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// NewMetrics registers the store collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planline_mutations_total",
				Help: "Store mutations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planline_lifecycle_rejections_total",
				Help: "Rejected mutations by lifecycle error kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) applied(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, "applied").Inc()
}

func (m *Metrics) rejected(op, kind string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, "rejected").Inc()
	m.rejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) failed(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, "failed").Inc()
}

// Mutations is the mutation counter, labelled by op and outcome.
func (m *Metrics) Mutations() *prometheus.CounterVec { return m.mutations }

// Rejections is the rejection counter, labelled by lifecycle error kind.
func (m *Metrics) Rejections() *prometheus.CounterVec { return m.rejections }
