// Package metrics holds the Prometheus collectors for the API and the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
)

type API struct {
	gatherer   prometheus.Gatherer
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	admissions *prometheus.CounterVec
}

var _ ports.AdmissionObserver = (*API)(nil)

// NewAPI registers the API collectors on reg.
func NewAPI(reg *prometheus.Registry) *API {
	m := &API{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "school",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Name:      "classroom_admissions_total",
			Help:      "Seat requests on classrooms by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.duration, m.admissions)
	return m
}

func (m *API) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *API) ObserveAdmission(outcome string) {
	m.admissions.WithLabelValues(outcome).Inc()
}

func (m *API) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type Relay struct {
	gatherer  prometheus.Gatherer
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

func NewRelay(reg *prometheus.Registry) *Relay {
	m := &Relay{
		gatherer: reg,
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Subsystem: "outbox",
			Name:      "events_published_total",
			Help:      "Outbox events published to the broker by event type.",
		}, []string{"event_type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Subsystem: "outbox",
			Name:      "events_failed_total",
			Help:      "Outbox events that could not be published by event type.",
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.published, m.failed)
	return m
}

func (m *Relay) Published(eventType string) { m.published.WithLabelValues(eventType).Inc() }
func (m *Relay) Failed(eventType string)    { m.failed.WithLabelValues(eventType).Inc() }

func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
