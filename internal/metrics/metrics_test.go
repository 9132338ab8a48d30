// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{name: "compat recommend", method: "GET", endpoint: "/recommend", statusCode: "200", duration: 3 * time.Millisecond},
		{name: "versioned recommend", method: "GET", endpoint: "/api/v1/recommend", statusCode: "200", duration: 8 * time.Millisecond},
		{name: "not ready", method: "GET", endpoint: "/recommend", statusCode: "503", duration: time.Millisecond},
		{name: "unauthorized reload", method: "POST", endpoint: "/api/v1/admin/reload", statusCode: "401", duration: time.Millisecond},
		{name: "rate limited", method: "GET", endpoint: "/api/v1/resolve", statusCode: "429", duration: time.Microsecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode)
			before := testutil.ToFloat64(counter)

			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordBuildInfo(t *testing.T) {
	RecordBuildInfo("1.2.3")
	if got := testutil.ToFloat64(BuildInfo.WithLabelValues("1.2.3", runtime.Version())); got != 1 {
		t.Errorf("build info = %v, want 1", got)
	}
}

func TestRecordWebSocketBroadcast(t *testing.T) {
	counter := WebSocketBroadcastsTotal.WithLabelValues("snapshot_published")
	before := testutil.ToFloat64(counter)
	droppedBefore := testutil.ToFloat64(WebSocketDroppedClientsTotal)

	RecordWebSocketBroadcast("snapshot_published", 0)
	RecordWebSocketBroadcast("snapshot_published", 2)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("broadcast delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(WebSocketDroppedClientsTotal) - droppedBefore; got != 2 {
		t.Errorf("dropped delta = %v, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("after two increments delta = %v, want 2", got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after decrements = %v, want %v", got, before)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
		stage   string
		items   int
	}{
		{name: "hybrid exact", outcome: "hybrid", stage: "exact", items: 10},
		{name: "content only fuzzy", outcome: "content_only", stage: "fuzzy", items: 3},
		{name: "unresolved", outcome: "unresolved", stage: "", items: 0},
		{name: "filtered out", outcome: "filtered_out", stage: "substring", items: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := RecommendationsTotal.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(outcome)
			var stageBefore float64
			if tt.stage != "" {
				stageBefore = testutil.ToFloat64(ResolveStageTotal.WithLabelValues(tt.stage))
			}

			RecordRecommendation(tt.outcome, tt.stage, tt.items)

			if got := testutil.ToFloat64(outcome) - before; got != 1 {
				t.Errorf("outcome delta = %v, want 1", got)
			}
			if tt.stage != "" {
				if got := testutil.ToFloat64(ResolveStageTotal.WithLabelValues(tt.stage)) - stageBefore; got != 1 {
					t.Errorf("stage delta = %v, want 1", got)
				}
			}
		})
	}
}

func TestRecordEngineBuild(t *testing.T) {
	RecordEngineBuild(250*time.Millisecond, SnapshotSize{
		Items: 9742, Ratings: 100836, Users: 610, RatedItems: 9724, Vocabulary: 8000,
	})

	tests := []struct {
		kind string
		want float64
	}{
		{"items", 9742},
		{"ratings", 100836},
		{"users", 610},
		{"rated_items", 9724},
		{"vocabulary", 8000},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(SnapshotItems.WithLabelValues(tt.kind)); got != tt.want {
			t.Errorf("snapshot %s = %v, want %v", tt.kind, got, tt.want)
		}
	}
	if testutil.ToFloat64(SnapshotLastPublished) == 0 {
		t.Error("last published timestamp not set")
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheLookups.WithLabelValues("memory", "hit")
	misses := CacheLookups.WithLabelValues("memory", "miss")
	hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("memory", true)
	RecordCacheLookup("memory", false)
	RecordCacheLookup("memory", false)

	if got := testutil.ToFloat64(hits) - hitsBefore; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - missesBefore; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestRecordDatasetFetch(t *testing.T) {
	for _, result := range []string{"downloaded", "present", "failed"} {
		t.Run(result, func(t *testing.T) {
			c := DatasetFetchTotal.WithLabelValues(result)
			before := testutil.ToFloat64(c)
			RecordDatasetFetch(result, time.Second)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	transitions := CircuitBreakerTransitions.WithLabelValues("dataset", "closed", "open")
	before := testutil.ToFloat64(transitions)

	RecordCircuitBreakerTransition("dataset", "closed", "open", 2)

	if got := testutil.ToFloat64(transitions) - before; got != 1 {
		t.Errorf("transitions delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("dataset")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	RecordCircuitBreakerRequest("dataset", "rejected")
	if got := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("dataset", "rejected")); got < 1 {
		t.Errorf("rejected requests = %v, want >= 1", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	const goroutines = 20
	counter := RecommendationsTotal.WithLabelValues("hybrid")
	before := testutil.ToFloat64(counter)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordRecommendation("hybrid", "exact", 5)
			RecordAPIRequest("GET", "/recommend", "200", time.Millisecond)
			RecordCacheLookup("badger", true)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(counter) - before; got != goroutines {
		t.Errorf("delta = %v, want %d", got, goroutines)
	}
}

func histogramOf(t *testing.T, h interface{ Write(*dto.Metric) error }) *dto.Histogram {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram()
}

func TestRecordRecommendation_ItemsHistogram(t *testing.T) {
	before := histogramOf(t, RecommendationItems)

	RecordRecommendation("hybrid", "exact", 7)
	RecordRecommendation("no_result", "", 0)

	after := histogramOf(t, RecommendationItems)
	if got := after.GetSampleCount() - before.GetSampleCount(); got != 1 {
		t.Errorf("sample count delta = %d, want 1 (empty results are not observed)", got)
	}
	if got := after.GetSampleSum() - before.GetSampleSum(); got != 7 {
		t.Errorf("sample sum delta = %v, want 7", got)
	}
}
