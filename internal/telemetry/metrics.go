package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts finished API requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recordgraph",
		Name:      "http_requests_total",
		Help:      "Finished HTTP requests.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recordgraph",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// UnresolvedIDs counts ids dropped by bulk reads because they did not resolve.
	UnresolvedIDs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recordgraph",
		Name:      "bulk_unresolved_ids_total",
		Help:      "External ids omitted from bulk reads.",
	}, []string{"backend", "kind"})

	RecordWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recordgraph",
		Name:      "record_writes_total",
		Help:      "Record mutations by kind, operation and outcome.",
	}, []string{"kind", "op", "outcome"})
)
