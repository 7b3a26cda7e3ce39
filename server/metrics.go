package server

import (
	"github.com/jrsteele09/go-oidc-portal/cloudconnections"
	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "portal"

const (
	gatePage = "page"
	gateAPI  = "api"

	sessionResolved  = "resolved"
	sessionNoProfile = "no_profile"
	sessionInvalid   = "invalid"
)

// metrics holds the Prometheus metrics for the portal.
type metrics struct {
	handshakes   *prometheus.CounterVec
	gateRejects  *prometheus.CounterVec
	sessionLoads *prometheus.CounterVec
	knownUsers   prometheus.GaugeFunc
	connections  prometheus.GaugeFunc
}

func newMetrics(registry prometheus.Registerer, knownUsers users.KnownUsersRepo, connections cloudconnections.Repo) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		handshakes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "handshake_transitions_total",
			Help:      "Handshake state transitions by target state and failure reason",
		}, []string{"state", "reason"}),

		gateRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "gate_rejections_total",
			Help:      "Requests turned away by the access gate",
		}, []string{"gate"}),

		sessionLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_loads_total",
			Help:      "Session cookie rehydration outcomes",
		}, []string{"result"}),

		knownUsers: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "known_users",
			Help:      "Users resolved since startup and not logged out",
		}, func() float64 { return float64(knownUsers.Count()) }),

		connections: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cloud_connections",
			Help:      "Cloud connections currently stored",
		}, func() float64 { return float64(len(connections.Keys())) }),
	}
}

func (m *metrics) handshake(state HandshakeState, reason string) {
	m.handshakes.WithLabelValues(string(state), reason).Inc()
}

func (m *metrics) gateRejected(gate string) {
	m.gateRejects.WithLabelValues(gate).Inc()
}

func (m *metrics) sessionLoaded(result string) {
	m.sessionLoads.WithLabelValues(result).Inc()
}
