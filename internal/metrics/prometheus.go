// Package metrics exports the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by endpoint and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecopulse_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration tracks request latency by endpoint.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecopulse_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint", "method"},
	)

	// PredictionsTotal counts completed forecasts (single and batch items).
	PredictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_predictions_total",
			Help: "Total number of forecasts produced",
		},
	)

	// AnomaliesDetected counts forecasts flagged as anomalous.
	AnomaliesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_anomalies_detected_total",
			Help: "Total number of anomalous forecasts",
		},
	)

	// BatchItemsDropped counts batch items excluded by runtime faults.
	BatchItemsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_batch_items_dropped_total",
			Help: "Total number of batch items dropped after inference faults",
		},
	)

	// ActiveClients tracks currently connected stream subscribers.
	ActiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecopulse_ws_active_clients",
			Help: "Number of connected WebSocket subscribers",
		},
	)

	// SamplesStreamed counts telemetry samples pushed to subscribers.
	SamplesStreamed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_ws_samples_streamed_total",
			Help: "Total number of telemetry samples pushed over WebSocket",
		},
	)

	// CacheHits counts forecast responses served from Redis.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_cache_hits_total",
			Help: "Total number of forecast cache hits",
		},
	)

	// CacheMisses counts forecast cache lookups that missed or errored.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecopulse_cache_misses_total",
			Help: "Total number of forecast cache misses",
		},
	)
)
