package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	logins    *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	ownership *prometheus.CounterVec
	uploads   *prometheus.CounterVec
}

// NewMetrics initializes and registers collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_http_errors_total",
			Help: "Error responses by method, route and error code.",
		}, []string{"method", "route", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_sessions_total",
			Help: "Bearer token resolutions by outcome.",
		}, []string{"outcome"}),
		ownership: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_ownership_decisions_total",
			Help: "Ownership gate decisions by resource kind.",
		}, []string{"resource", "decision"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_uploads_total",
			Help: "Media uploads by target and outcome.",
		}, []string{"target", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.errors,
		m.logins,
		m.sessions,
		m.ownership,
		m.uploads,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// RecordSession counts a bearer token resolution.
func (m *Metrics) RecordSession(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
}

// RecordOwnership counts an ownership gate decision.
func (m *Metrics) RecordOwnership(resource, decision string) {
	if m == nil {
		return
	}
	m.ownership.WithLabelValues(resource, decision).Inc()
}

// RecordUpload counts an upload attempt.
func (m *Metrics) RecordUpload(target, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(target, outcome).Inc()
}
