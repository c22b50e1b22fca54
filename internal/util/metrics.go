package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ArrivalsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arrivals_created_total",
		Help: "Total number of arrival reports created",
	})

	ArrivalsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrivals_rejected_total",
		Help: "Total number of rejected arrival reports",
	}, []string{"reason"})

	ItemsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "items_received_total",
		Help: "Total number of stock units received",
	})

	ShipmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipments_created_total",
		Help: "Total number of shipments created",
	})

	ShipmentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_rejected_total",
		Help: "Total number of rejected shipments",
	}, []string{"reason"})

	ItemsShippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "items_shipped_total",
		Help: "Total number of stock units shipped",
	})

	CounterRolloversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "counter_rollovers_total",
		Help: "Total number of new daily counter buckets opened",
	})

	CounterDriftCorrectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "counter_drift_corrections_total",
		Help: "Total number of counter total-price drift corrections applied",
	})

	PartialSyncFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partial_sync_failures_total",
		Help: "Total number of post-commit cache or event sync failures",
	}, []string{"step"})

	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Total number of audit trail writes that failed",
	})

	EventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_processed_total",
		Help: "Total number of stock events processed by workers",
	}, []string{"type"})

	EventsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_skipped_total",
		Help: "Total number of duplicate events skipped by workers",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
