package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes API key operation and validation counters.
type Metrics struct {
	operations  *prometheus.CounterVec
	validations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apikeys",
			Name:      "operations_total",
			Help:      "API key management operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apikeys",
			Name:      "validations_total",
			Help:      "API key validations by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.operations, m.validations)
	}
	return m
}

func (m *Metrics) ObserveOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveValidation(result string) {
	m.validations.WithLabelValues(result).Inc()
}
