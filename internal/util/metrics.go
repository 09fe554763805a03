package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_puts_total",
		Help: "Total number of successful put operations",
	})

	ClearsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_clears_total",
		Help: "Total number of successful shelf clears",
	})

	SetupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_setups_total",
		Help: "Total number of shelf provisioning runs",
	})

	RequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_requests_created_total",
		Help: "Total number of restock requests created",
	})

	RequestsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_requests_duplicate_total",
		Help: "Total number of restock requests rejected as duplicates",
	})

	OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_operation_failures_total",
		Help: "Total number of failed operations",
	}, []string{"op", "reason"})

	ShelfWriteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_shelf_write_conflicts_total",
		Help: "Total number of shelf writes retried after a version conflict",
	})

	ShelfWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warehouse_shelf_write_latency_seconds",
		Help:    "Latency of shelf mutations including conflict retries",
		Buckets: prometheus.DefBuckets,
	})

	MirrorSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_mirror_sync_total",
		Help: "Total number of mirror refreshes",
	}, []string{"collection"})

	MirrorSyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_mirror_sync_failures_total",
		Help: "Total number of failed mirror refreshes",
	}, []string{"collection"})

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
