// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_recommendations_total",
			Help: "Recommendation queries by outcome (hybrid, content_only, or a no-result reason)",
		},
		[]string{"outcome"},
	)

	ResolveStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_title_resolutions_total",
			Help: "Title resolutions by matching stage",
		},
		[]string{"stage"},
	)

	RecommendationItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_recommendation_items",
			Help:    "Number of items returned per successful recommendation",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	// Engine Metrics
	EngineBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_engine_build_duration_seconds",
			Help:    "Time to build the similarity models from a snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SnapshotItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_snapshot_size",
			Help: "Size of the published snapshot",
		},
		[]string{"kind"}, // items, ratings, users, rated_items, vocabulary
	)

	SnapshotLastPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_snapshot_last_published_timestamp",
			Help: "Unix timestamp of the last published snapshot",
		},
	)

	SnapshotReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_snapshot_reloads_total",
			Help: "Snapshot reload attempts by result",
		},
		[]string{"result"}, // published, unchanged, failed
	)

	// Response Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"backend", "result"}, // result: hit, miss
	)

	CachePurges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinematch_cache_purges_total",
			Help: "Number of response cache purges",
		},
	)

	// Dataset Download Metrics
	DatasetFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_dataset_fetch_total",
			Help: "Dataset fetch attempts by result",
		},
		[]string{"result"}, // downloaded, present, failed
	)

	DatasetFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_dataset_fetch_duration_seconds",
			Help:    "Dataset download and extraction time",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_websocket_clients",
			Help: "Connected websocket clients",
		},
	)

	WebSocketBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_websocket_broadcasts_total",
			Help: "Messages broadcast to websocket clients",
		},
		[]string{"type"},
	)

	WebSocketDroppedClientsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinematch_websocket_dropped_clients_total",
			Help: "Websocket clients disconnected because their send buffer was full",
		},
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_build_info",
			Help: "Build information, always 1",
		},
		[]string{"version", "go_version"},
	)
)

// RecordWebSocketBroadcast counts a broadcast and the slow clients it
// disconnected.
func RecordWebSocketBroadcast(msgType string, dropped int) {
	WebSocketBroadcastsTotal.WithLabelValues(msgType).Inc()
	if dropped > 0 {
		WebSocketDroppedClientsTotal.Add(float64(dropped))
	}
}

// RecordBuildInfo publishes the running version.
func RecordBuildInfo(version string) {
	BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRecommendation records the outcome of one recommendation query.
// stage is empty when the title did not resolve.
func RecordRecommendation(outcome, stage string, items int) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	if stage != "" {
		ResolveStageTotal.WithLabelValues(stage).Inc()
	}
	if items > 0 {
		RecommendationItems.Observe(float64(items))
	}
}

// SnapshotSize carries the gauges published with each engine.
type SnapshotSize struct {
	Items      int
	Ratings    int
	Users      int
	RatedItems int
	Vocabulary int
}

// RecordEngineBuild records a successful engine build and publication.
func RecordEngineBuild(duration time.Duration, size SnapshotSize) {
	EngineBuildDuration.Observe(duration.Seconds())
	SnapshotItems.WithLabelValues("items").Set(float64(size.Items))
	SnapshotItems.WithLabelValues("ratings").Set(float64(size.Ratings))
	SnapshotItems.WithLabelValues("users").Set(float64(size.Users))
	SnapshotItems.WithLabelValues("rated_items").Set(float64(size.RatedItems))
	SnapshotItems.WithLabelValues("vocabulary").Set(float64(size.Vocabulary))
	SnapshotLastPublished.Set(float64(time.Now().Unix()))
}

// RecordSnapshotReload counts a reload attempt.
func RecordSnapshotReload(result string) {
	SnapshotReloadsTotal.WithLabelValues(result).Inc()
}

// RecordCacheLookup counts a response cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordCachePurge counts a response cache purge.
func RecordCachePurge() {
	CachePurges.Inc()
}

// RecordDatasetFetch records a dataset fetch. duration is only observed for
// actual downloads.
func RecordDatasetFetch(result string, duration time.Duration) {
	DatasetFetchTotal.WithLabelValues(result).Inc()
	if result == "downloaded" {
		DatasetFetchDuration.Observe(duration.Seconds())
	}
}

// RecordCircuitBreakerRequest counts a call through a named breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the
// state gauge.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}
