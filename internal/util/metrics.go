package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_runs_total",
		Help: "Total number of sync runs by outcome",
	}, []string{"status"})

	SyncRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_run_duration_seconds",
		Help:    "Duration of full sync runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	SyncOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_operations_total",
		Help: "Total number of per-entity sync operations by outcome",
	}, []string{"entity", "status"})

	RecordsAddedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_records_added_total",
		Help: "Total number of records inserted during reconciliation",
	}, []string{"entity"})

	RecordsUpdatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_records_updated_total",
		Help: "Total number of records updated during reconciliation",
	}, []string{"entity"})

	RecordFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_record_failures_total",
		Help: "Total number of per-record write failures during reconciliation",
	}, []string{"entity"})

	CatalogProjectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_projections_total",
		Help: "Total number of product stock_quantity projections applied",
	})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_request_duration_seconds",
		Help:    "Latency of provider API page requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_errors_total",
		Help: "Total number of failed provider API requests",
	}, []string{"status"})

	SyncLockContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_lock_contention_total",
		Help: "Total number of sync triggers rejected because a run was already in progress",
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
