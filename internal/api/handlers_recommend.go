// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Cache route names.
const (
	routeCompat    = "compat"
	routeRecommend = "v1.recommend"
)

// CompatResponse is the body of GET /recommend.
type CompatResponse struct {
	Message string       `json:"message"`
	Data    []CompatItem `json:"data"`
}

// CompatItem is one recommendation on the compatibility route. Genres are
// pipe-joined.
type CompatItem struct {
	MovieID int     `json:"movieId"`
	Title   string  `json:"title"`
	Genres  string  `json:"genres"`
	Score   float64 `json:"score"`
}

// RecommendResponse is the data of GET /api/v1/recommend.
type RecommendResponse struct {
	Query    string          `json:"query"`
	Resolved string          `json:"resolved,omitempty"`
	Stage    string          `json:"stage,omitempty"`
	Path     string          `json:"path,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Items    []RecommendItem `json:"items"`
}

// RecommendItem is one scored recommendation.
type RecommendItem struct {
	MovieID int      `json:"movieId"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Score   float64  `json:"score"`
	Source  string   `json:"source"`
}

// ResolveResponse is the data of GET /api/v1/resolve.
type ResolveResponse struct {
	Query    string  `json:"query"`
	Resolved string  `json:"resolved"`
	Stage    string  `json:"stage"`
	Ratio    float64 `json:"ratio"`
	MovieID  int     `json:"movieId"`
}

type recommendParams struct {
	Title string `query:"title" validate:"max=500"`
	Limit int    `query:"limit" validate:"gte=0,lte=1000"`
}

type resolveParams struct {
	Title string `query:"title" validate:"required,notblank,max=500"`
}

// noResultMessage is the compatibility message for an empty result.
func noResultMessage(title string) string {
	return "No recommendations found for '" + title + "'. Try checking the spelling."
}

// RecommendCompat handles GET /recommend.
func (h *Handler) RecommendCompat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("title") {
		writeDetail(w, r, http.StatusUnprocessableEntity, "Query parameter 'title' is required")
		return
	}
	title := q.Get("title")
	limit, err := parseLimit(q.Get("limit"))
	if err == nil && (limit < 0 || limit > maxLimit) {
		err = errLimitRange
	}
	if err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	eng, err := h.publisher.Current()
	if err != nil {
		writeDetail(w, r, http.StatusServiceUnavailable, "System is still initializing")
		return
	}

	body, _, err := h.cachedBody(r.Context(), cacheKey(eng, routeCompat, title, limit), func() ([]byte, error) {
		res := eng.Recommend(title, limit)
		recordResult(res)
		return json.Marshal(compatResponse(title, res))
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to build recommendation response")
		writeDetail(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondRaw(w, r, http.StatusOK, body)
}

// Recommend handles GET /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	if !q.Has("title") {
		rw.BadRequest("query parameter 'title' is required")
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	params := recommendParams{Title: q.Get("title"), Limit: limit}
	if verr := validation.ValidateStruct(&params); verr != nil {
		rw.ValidationError(verr)
		return
	}

	eng, err := h.publisher.Current()
	if err != nil {
		rw.ServiceUnavailable("recommendation engine is still initializing")
		return
	}

	body, hit, err := h.cachedBody(r.Context(), cacheKey(eng, routeRecommend, params.Title, params.Limit), func() ([]byte, error) {
		res := eng.Recommend(params.Title, params.Limit)
		recordResult(res)
		return json.Marshal(recommendResponse(res))
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to build recommendation response")
		rw.InternalError("failed to build recommendations")
		return
	}

	rw.SuccessWithMeta(http.StatusOK, json.RawMessage(body), &APIMeta{
		SnapshotVersion: eng.Version(),
		Cached:          hit,
	})
}

// Resolve handles GET /api/v1/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params := resolveParams{Title: r.URL.Query().Get("title")}
	if verr := validation.ValidateStruct(&params); verr != nil {
		rw.ValidationError(verr)
		return
	}

	eng, err := h.publisher.Current()
	if err != nil {
		rw.ServiceUnavailable("recommendation engine is still initializing")
		return
	}

	m, ok := eng.Resolve(params.Title)
	if !ok {
		metrics.ResolveStageTotal.WithLabelValues("none").Inc()
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeTitleUnresolved,
			"no catalog title matches the query", map[string]string{"query": params.Title})
		return
	}
	metrics.ResolveStageTotal.WithLabelValues(m.Stage.String()).Inc()

	resp := ResolveResponse{
		Query:    params.Title,
		Resolved: m.Title,
		Stage:    m.Stage.String(),
		Ratio:    m.Ratio,
	}
	if m.Index >= 0 {
		resp.MovieID = eng.ItemAt(m.Index).ID
	}
	rw.SuccessWithMeta(http.StatusOK, resp, &APIMeta{SnapshotVersion: eng.Version()})
}

var errLimitRange = errors.New("limit must be between 0 and 1000")

func compatResponse(title string, res recommend.Result) CompatResponse {
	recs, ok := res.(recommend.Recommendations)
	if !ok {
		return CompatResponse{Message: noResultMessage(title), Data: []CompatItem{}}
	}
	data := make([]CompatItem, len(recs.Items))
	for i, c := range recs.Items {
		data[i] = CompatItem{
			MovieID: c.Item.ID,
			Title:   c.Item.Title,
			Genres:  strings.Join(c.Item.Genres, "|"),
			Score:   c.Score,
		}
	}
	return CompatResponse{Message: "Success", Data: data}
}

func recommendResponse(res recommend.Result) RecommendResponse {
	switch v := res.(type) {
	case recommend.Recommendations:
		items := make([]RecommendItem, len(v.Items))
		for i, c := range v.Items {
			genres := c.Item.Genres
			if genres == nil {
				genres = []string{}
			}
			items[i] = RecommendItem{
				MovieID: c.Item.ID,
				Title:   c.Item.Title,
				Genres:  genres,
				Score:   c.Score,
				Source:  c.Source.String(),
			}
		}
		return RecommendResponse{
			Query:    v.Query,
			Resolved: v.Resolved,
			Stage:    v.Stage.String(),
			Path:     v.Path.String(),
			Items:    items,
		}
	case recommend.NoResult:
		return RecommendResponse{
			Query:    v.Query,
			Resolved: v.Resolved,
			Reason:   string(v.Reason),
			Items:    []RecommendItem{},
		}
	default:
		return RecommendResponse{Items: []RecommendItem{}}
	}
}
