package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the booking counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	gatherer      prometheus.Gatherer
	claims        *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	enrichment    *prometheus.CounterVec
	roleLookups   *prometheus.CounterVec
	feedClients   prometheus.Gauge
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astroseva",
			Name:      "booking_claims_total",
			Help:      "Booking claim attempts by outcome.",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astroseva",
			Name:      "booking_status_changes_total",
			Help:      "Applied booking status changes by target status.",
		}, []string{"status"}),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astroseva",
			Name:      "booking_summary_total",
			Help:      "Summary enrichment attempts by outcome.",
		}, []string{"outcome"}),
		roleLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astroseva",
			Name:      "role_lookups_total",
			Help:      "Role resolutions by cache result.",
		}, []string{"result"}),
		feedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "astroseva",
			Name:      "feed_clients",
			Help:      "Connected booking feed websocket clients.",
		}),
	}
	reg.MustRegister(m.claims, m.statusChanges, m.enrichment, m.roleLookups, m.feedClients)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Claim(outcome string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichment.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RoleLookup(result string) {
	if m == nil {
		return
	}
	m.roleLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) FeedClients(delta float64) {
	if m == nil {
		return
	}
	m.feedClients.Add(delta)
}
