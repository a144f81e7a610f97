// Package metrics holds the prometheus collectors for gateway traffic and
// webhook verification.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vbank"

type Metrics struct {
	registry *prometheus.Registry

	GatewayRequests      *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	WebhookVerifications *prometheus.CounterVec
}

// New registers all collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		WebhookVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "verifications_total",
			Help:      "Inbound notification verification results.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(m.GatewayRequests, m.GatewayLatency, m.WebhookVerifications)
	return m
}

// ObserveGateway records one finished gateway call. Nil receivers are no-ops.
func (m *Metrics) ObserveGateway(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(operation, outcome).Inc()
	m.GatewayLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) ObserveVerification(result string) {
	if m == nil {
		return
	}
	m.WebhookVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
