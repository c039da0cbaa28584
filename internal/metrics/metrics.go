// Package metrics exposes the daemon's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the daemon's collectors behind one registry.
type Metrics struct {
	registry *prometheus.Registry

	JobsCreated        prometheus.Counter
	JobsStarted        prometheus.Counter
	JobsFinished       *prometheus.CounterVec
	JobsRejected       prometheus.Counter
	CapabilityProbes   prometheus.Counter
	CapabilityRequests prometheus.Counter
	QueueDepth         prometheus.Gauge
}

// New builds a metrics set on a private registry so tests can run several
// instances side by side.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		JobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaproxy_jobs_created_total",
			Help: "Delivery jobs accepted into the queue.",
		}),
		JobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaproxy_jobs_started_total",
			Help: "Delivery jobs handed to the engine.",
		}),
		JobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediaproxy_jobs_finished_total",
			Help: "Delivery jobs reaching a terminal status.",
		}, []string{"status"}),
		JobsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaproxy_jobs_rejected_total",
			Help: "Job creation requests rejected by validation or routing.",
		}),
		CapabilityProbes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaproxy_capability_probes_total",
			Help: "Engine capability probes executed.",
		}),
		CapabilityRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaproxy_capability_requests_total",
			Help: "Capability snapshot requests served.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mediaproxy_queue_depth",
			Help: "Jobs currently pending or running.",
		}),
	}

	registry.MustRegister(
		m.JobsCreated,
		m.JobsStarted,
		m.JobsFinished,
		m.JobsRejected,
		m.CapabilityProbes,
		m.CapabilityRequests,
		m.QueueDepth,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
