package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the console's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	reloads       *prometheus.CounterVec
	notifications prometheus.Counter
	confirmations *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "Requests sent to the attendance backend.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "Backend request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_api_requests_in_flight",
			Help: "Backend requests awaiting a response.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_table_reloads_total",
			Help: "Successful table body replacements.",
		}, []string{"table"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "console_notifications_total",
			Help: "Blocking notifications shown to the operator.",
		}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_confirmations_total",
			Help: "Confirmation prompts by answer.",
		}, []string{"answer"}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.inFlight, m.reloads, m.notifications, m.confirmations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// InstrumentTransport wraps next so every backend call is counted and timed.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.latency, next)))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// TableReloaded records a successful table body replacement.
func (m *Metrics) TableReloaded(table string) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(table).Inc()
}

// Notified records a blocking notification.
func (m *Metrics) Notified() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

// Confirmed records the operator's answer to a confirmation prompt.
func (m *Metrics) Confirmed(ok bool) {
	if m == nil {
		return
	}
	answer := "no"
	if ok {
		answer = "yes"
	}
	m.confirmations.WithLabelValues(answer).Inc()
}
