// Package api exposes the recommender over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/internal/analytics"
	"github.com/ravindradesineni/Movie-recommendation/internal/recommender"
	"github.com/ravindradesineni/Movie-recommendation/internal/recommender/cache"
	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
	"github.com/ravindradesineni/Movie-recommendation/pkg/logger"
	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
	"github.com/ravindradesineni/Movie-recommendation/pkg/middleware"
)

// Recommender is the query surface of a recommender.Catalog.
type Recommender interface {
	Titles() []string
	SimilarByRatings(title string, n int) ([]recommender.Recommendation, error)
	SimilarByGenre(title string, n int) ([]recommender.Recommendation, error)
	ForUser(userID int, n int) ([]recommender.Recommendation, error)
}

// Handler serves recommendation endpoints. The cache, tracker and metrics
// are optional.
type Handler struct {
	rec         Recommender
	cache       *cache.QueryCache
	tracker     analytics.Tracker
	metrics     *metrics.Metrics
	defaultTopN int
	maxTopN     int
	logger      *slog.Logger
}

// kindInvalid labels similarity queries whose "by" value is not a known
// kind.
const kindInvalid = "invalid"

func New(rec Recommender, queryCache *cache.QueryCache, tracker analytics.Tracker, m *metrics.Metrics, defaultTopN, maxTopN int) *Handler {
	return &Handler{
		rec:         rec,
		cache:       queryCache,
		tracker:     tracker,
		metrics:     m,
		defaultTopN: defaultTopN,
		maxTopN:     maxTopN,
		logger:      slog.Default().With("component", "api-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/titles", h.Titles)
	mux.HandleFunc("GET /api/v1/movies/similar", h.Similar)
	mux.HandleFunc("GET /api/v1/users/{id}/recommendations", h.ForUser)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type titlesResponse struct {
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

type recommendationsResponse struct {
	Kind     string                       `json:"kind"`
	Title    string                       `json:"title,omitempty"`
	UserID   *int                         `json:"user_id,omitempty"`
	N        int                          `json:"n"`
	Results  []recommender.Recommendation `json:"results"`
	CacheHit bool                         `json:"cache_hit"`
}

func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	titles := h.rec.Titles()
	h.writeJSON(w, http.StatusOK, titlesResponse{Count: len(titles), Titles: titles})
}

// Similar serves /api/v1/movies/similar?title=…&by=ratings|genre&n=….
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := q.Get("title")
	kind := q.Get("by")
	if kind == "" {
		kind = recommender.KindRatings
	}

	var compute func(n int) ([]recommender.Recommendation, error)
	switch kind {
	case recommender.KindRatings:
		compute = func(n int) ([]recommender.Recommendation, error) { return h.rec.SimilarByRatings(title, n) }
	case recommender.KindGenre:
		compute = func(n int) ([]recommender.Recommendation, error) { return h.rec.SimilarByGenre(title, n) }
	default:
		// the raw value never reaches metric labels or analytics keys
		h.fail(w, r, kindInvalid, title, 0, time.Now(),
			apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "by must be %q or %q", recommender.KindRatings, recommender.KindGenre))
		return
	}
	if title == "" {
		h.fail(w, r, kind, title, 0, time.Now(),
			apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'title' is required"))
		return
	}
	h.serve(w, r, kind, title, compute, func(resp *recommendationsResponse) { resp.Title = title })
}

// ForUser serves /api/v1/users/{id}/recommendations?n=….
func (h *Handler) ForUser(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	userID, err := strconv.Atoi(raw)
	if err != nil {
		h.fail(w, r, recommender.KindUser, raw, 0, time.Now(),
			apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "user id must be an integer, got %q", raw))
		return
	}
	h.serve(w, r, recommender.KindUser, analytics.UserKey(userID),
		func(n int) ([]recommender.Recommendation, error) { return h.rec.ForUser(userID, n) },
		func(resp *recommendationsResponse) { resp.UserID = &userID })
}

func (h *Handler) serve(
	w http.ResponseWriter,
	r *http.Request,
	kind, key string,
	compute func(n int) ([]recommender.Recommendation, error),
	decorate func(*recommendationsResponse),
) {
	start := time.Now()
	ctx := r.Context()

	n, err := h.parseN(r)
	if err != nil {
		h.fail(w, r, kind, key, 0, start, err)
		return
	}

	var (
		results  []recommender.Recommendation
		cacheHit bool
	)
	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, kind, key, n, func() ([]recommender.Recommendation, error) {
			return compute(n)
		})
	} else {
		results, err = compute(n)
	}
	if err != nil {
		h.fail(w, r, kind, key, n, start, err)
		return
	}

	latency := time.Since(start)
	logger.FromContext(ctx).Info("recommendation served",
		"kind", kind,
		"key", key,
		"n", n,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_us", latency.Microseconds(),
	)
	h.observe(ctx, kind, key, n, analytics.OutcomeOK, len(results), cacheHit, latency)

	if results == nil {
		results = []recommender.Recommendation{}
	}
	resp := recommendationsResponse{Kind: kind, N: n, Results: results, CacheHit: cacheHit}
	decorate(&resp)
	h.writeJSON(w, http.StatusOK, resp)
}

// parseN returns the requested result count. A missing n selects the
// default; values above the maximum are clamped.
func (h *Handler) parseN(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return h.defaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "n must be a positive integer, got %q", raw)
	}
	if h.maxTopN > 0 && n > h.maxTopN {
		n = h.maxTopN
	}
	return n, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, kind, key string, n int, start time.Time, err error) {
	status := apperrors.HTTPStatusCode(err)
	outcome := outcomeFor(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("recommendation failed", "kind", kind, "key", key, "error", err)
	} else {
		log.Info("recommendation rejected", "kind", kind, "key", key, "outcome", outcome, "error", err)
	}
	h.observe(r.Context(), kind, key, n, outcome, 0, false, time.Since(start))
	h.writeError(w, status, apperrors.PublicMessage(err, "recommendation failed"))
}

func (h *Handler) observe(ctx context.Context, kind, key string, n int, outcome analytics.Outcome, returned int, cacheHit bool, latency time.Duration) {
	if h.metrics != nil {
		cacheStatus := "disabled"
		if h.cache != nil {
			cacheStatus = "miss"
			if cacheHit {
				cacheStatus = "hit"
			}
		}
		h.metrics.QueriesTotal.WithLabelValues(kind, string(outcome)).Inc()
		h.metrics.QueryLatency.WithLabelValues(kind, cacheStatus).Observe(latency.Seconds())
		if outcome == analytics.OutcomeOK {
			h.metrics.ResultsCount.WithLabelValues(kind).Observe(float64(returned))
		}
	}
	if h.tracker != nil {
		h.tracker.Track(analytics.QueryEvent{
			Kind:      kind,
			Key:       key,
			N:         n,
			Outcome:   outcome,
			Returned:  returned,
			LatencyUs: latency.Microseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
}

func outcomeFor(err error) analytics.Outcome {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return analytics.OutcomeNotFound
	case errors.Is(err, apperrors.ErrNoSimilarUsers):
		return analytics.OutcomeNoSimilarUsers
	case errors.Is(err, apperrors.ErrInvalidInput):
		return analytics.OutcomeInvalid
	default:
		return analytics.OutcomeError
	}
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
