// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics for Cinematch.

All collectors are registered on the default registry through promauto and
exposed at /metrics in the Prometheus text format.

# Available Metrics

API:
  - cinematch_api_requests_total{method, endpoint, status_code}
  - cinematch_api_request_duration_seconds{method, endpoint}
  - cinematch_api_active_requests
  - cinematch_api_rate_limit_hits_total{endpoint}

Recommendations:
  - cinematch_recommendations_total{outcome}: hybrid, content_only,
    unresolved, no_candidates or filtered_out
  - cinematch_title_resolutions_total{stage}
  - cinematch_recommendation_items

Engine and snapshots:
  - cinematch_engine_build_duration_seconds
  - cinematch_snapshot_size{kind}
  - cinematch_snapshot_last_published_timestamp
  - cinematch_snapshot_reloads_total{result}

Cache, dataset and circuit breaker:
  - cinematch_cache_lookups_total{backend, result}
  - cinematch_cache_purges_total
  - cinematch_dataset_fetch_total{result}
  - cinematch_dataset_fetch_duration_seconds
  - cinematch_circuit_breaker_state{name}
  - cinematch_circuit_breaker_requests_total{name, result}
  - cinematch_circuit_breaker_state_transitions_total{name, from_state, to_state}

WebSocket and build:
  - cinematch_websocket_clients
  - cinematch_websocket_broadcasts_total{type}
  - cinematch_websocket_dropped_clients_total
  - cinematch_build_info{version, go_version}

# Usage

	start := time.Now()
	// ... handle request
	metrics.RecordAPIRequest(r.Method, "/recommend", "200", time.Since(start))
*/
package metrics
