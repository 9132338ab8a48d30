// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// maxLimit bounds the limit parameter before the engine clamps it to its
// own maximum.
const maxLimit = 1000

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseLimit reads the optional limit parameter. Missing means 0, which the
// engine maps to its default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer, got %q", sanitizeLogValue(raw))
	}
	return n, nil
}

// cachedBody returns the cached body for key or builds, stores and returns
// it. Cache failures are logged and fall through to build.
func (h *Handler) cachedBody(ctx context.Context, key string, build func() ([]byte, error)) (body []byte, hit bool, err error) {
	if h.cache == nil {
		body, err = build()
		return body, false, err
	}

	body, err = h.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(h.cacheBackend, true)
		return body, true, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		logging.Ctx(ctx).Warn().Err(err).Msg("Response cache read failed")
	}
	metrics.RecordCacheLookup(h.cacheBackend, false)

	body, err = build()
	if err != nil {
		return nil, false, err
	}
	if err := h.cache.Set(ctx, key, body); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Response cache write failed")
	}
	return body, false, nil
}

// cacheKey scopes a request to the engine that answers it.
func cacheKey(eng *recommend.Engine, route, title string, limit int) string {
	cfg := eng.Config()
	return cache.Key(eng.Version(), route, title, cfg.ClampTopN(limit))
}

// respondRaw writes a pre-encoded JSON body with an ETag. A matching
// If-None-Match yields 304.
func respondRaw(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	etag := generateETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}

// writeDetail writes the {"detail": ...} error shape of the compatibility route.
func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	body, err := json.Marshal(map[string]string{"detail": detail})
	if err != nil {
		http.Error(w, detail, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}

// generateETag creates a weak validator from the FNV-1a hash of data.
func generateETag(data []byte) string {
	h := fnv.New64a()
	h.Write(data) //nolint:errcheck // hash writes never fail
	return `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// recordResult counts a computed recommendation by outcome.
func recordResult(res recommend.Result) {
	switch v := res.(type) {
	case recommend.Recommendations:
		metrics.RecordRecommendation(v.Path.String(), v.Stage.String(), len(v.Items))
	case recommend.NoResult:
		metrics.RecordRecommendation(string(v.Reason), "", 0)
	}
}
