// Package metrics owns the prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carmarket"

// Metrics holds the application collectors. A private registry keeps tests
// from colliding on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	DealRequestsSubmitted prometheus.Counter
	DealRequestsApproved  prometheus.Counter
	DealRequestsRejected  prometheus.Counter
	CarsCreated           prometheus.Counter
	CarsDeleted           prometheus.Counter
	EventPublishFailures  *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DealRequestsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_requests_submitted_total",
			Help:      "Deal requests submitted by seekers.",
		}),
		DealRequestsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_requests_approved_total",
			Help:      "Deal requests approved by owners.",
		}),
		DealRequestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_requests_rejected_total",
			Help:      "Deal requests rejected by owners.",
		}),
		CarsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_created_total",
			Help:      "Car listings created.",
		}),
		CarsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_deleted_total",
			Help:      "Car listings deleted.",
		}),
		EventPublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Deal events that could not be published, by event type.",
		}, []string{"type"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.Registry.MustRegister(
		m.DealRequestsSubmitted,
		m.DealRequestsApproved,
		m.DealRequestsRejected,
		m.CarsCreated,
		m.CarsDeleted,
		m.EventPublishFailures,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
