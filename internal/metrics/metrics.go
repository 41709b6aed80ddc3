// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package metrics holds the Prometheus collectors for ArNScope.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API router on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Aggregation engine
	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arnscope_engine_operation_duration_seconds",
			Help:    "Duration of aggregation engine operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	EngineOperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_engine_operation_failures_total",
			Help: "Aggregation operations that ended in an operation error",
		},
		[]string{"operation"},
	)

	EngineRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_engine_records_processed_total",
			Help: "Records folded by aggregation operations",
		},
		[]string{"operation"},
	)

	// Record store
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_store_writes_total",
			Help: "Record store write batches by mode",
		},
		[]string{"mode"}, // put_all, put_all_smart, clear
	)

	StoreMergeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_store_merge_outcomes_total",
			Help: "Per-record outcome of smart merges",
		},
		[]string{"outcome"}, // inserted, updated, unchanged
	)

	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arnscope_store_records",
			Help: "Records currently held by the record store",
		},
	)

	// Expiring cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_cache_hits_total",
			Help: "Expiring cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_cache_misses_total",
			Help: "Expiring cache misses, including expiry misses",
		},
		[]string{"backend"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_cache_evictions_total",
			Help: "Expired entries removed on read or by a sweep",
		},
		[]string{"backend"},
	)

	// Worker bridge
	BridgeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arnscope_bridge_queue_depth",
			Help: "Requests waiting for the aggregation worker",
		},
	)

	BridgeEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_bridge_events_published_total",
			Help: "Progress and error events published by the bridge",
		},
		[]string{"kind"},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arnscope_websocket_connections",
			Help: "Connected WebSocket clients",
		},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_websocket_messages_dropped_total",
			Help: "Messages not delivered to clients",
		},
		[]string{"reason"}, // slow_client, throttled
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arnscope_api_requests_total",
			Help: "HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arnscope_api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arnscope_api_active_requests",
			Help: "HTTP API requests currently in flight",
		},
	)
)

// RecordEngineOperation observes one engine operation.
func RecordEngineOperation(operation string, records int, duration time.Duration, err error) {
	EngineOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	EngineRecordsProcessed.WithLabelValues(operation).Add(float64(records))
	if err != nil {
		EngineOperationFailures.WithLabelValues(operation).Inc()
	}
}

// RecordMerge counts the per-record outcomes of one smart merge batch.
func RecordMerge(inserted, updated, unchanged int) {
	StoreWrites.WithLabelValues("put_all_smart").Inc()
	StoreMergeOutcomes.WithLabelValues("inserted").Add(float64(inserted))
	StoreMergeOutcomes.WithLabelValues("updated").Add(float64(updated))
	StoreMergeOutcomes.WithLabelValues("unchanged").Add(float64(unchanged))
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
