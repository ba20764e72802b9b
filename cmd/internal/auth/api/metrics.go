package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts auth endpoint outcomes. A nil *Metrics is a no-op so tests
// can build handlers without a registry.
type Metrics struct {
	logins      *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	revocations prometheus.Counter
	unavailable prometheus.Counter
}

// NewMetrics registers the auth counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtside",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtside",
			Subsystem: "auth",
			Name:      "refreshes_total",
			Help:      "Refresh rotations by outcome.",
		}, []string{"outcome"}),
		revocations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "courtside",
			Subsystem: "auth",
			Name:      "revocations_total",
			Help:      "Completed logout revocations.",
		}),
		unavailable: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "courtside",
			Subsystem: "auth",
			Name:      "store_unavailable_total",
			Help:      "Requests failed by a transient credential store outage.",
		}),
	}
}

const (
	outcomeSuccess      = "success"
	outcomeUnauthorized = "unauthorized"
)

func (m *Metrics) login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) refresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) revocation() {
	if m == nil {
		return
	}
	m.revocations.Inc()
}

func (m *Metrics) storeUnavailable() {
	if m == nil {
		return
	}
	m.unavailable.Inc()
}
