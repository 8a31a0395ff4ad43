// Package server exposes the recommendation engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/muse-movies/muse/internal/analytics"
	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/pkg/config"
	apperrors "github.com/muse-movies/muse/pkg/errors"
	"github.com/muse-movies/muse/pkg/logger"
	"github.com/muse-movies/muse/pkg/metrics"
)

// Handler serves the recommendation API.
type Handler struct {
	holder    *engine.Holder
	models    *ModelProvider
	ratings   ratings.Store
	cache     *ResultCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.EngineConfig
	logger    *slog.Logger
}

func NewHandler(
	holder *engine.Holder,
	models *ModelProvider,
	ratingStore ratings.Store,
	cache *ResultCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg config.EngineConfig,
) *Handler {
	return &Handler{
		holder:    holder,
		models:    models,
		ratings:   ratingStore,
		cache:     cache,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "api-handler"),
	}
}

// Recommend handles GET /api/v1/recommend?q=...&count=...&personal=true.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	count := h.cfg.DefaultCount
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		if parsed > h.cfg.MaxCount {
			parsed = h.cfg.MaxCount
		}
		count = parsed
	}
	personal := r.URL.Query().Get("personal") == "true"

	eng := h.holder.Engine()
	model := h.models.Model(ctx, personal, eng)
	personalized := model != nil

	compute := func() (*engine.Result, error) {
		return eng.Recommend(ctx, query, count, model)
	}

	var result *engine.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, count, personalized, compute)
	} else {
		result, err = compute()
	}

	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, apperrors.ErrNoMatch) {
			// Degrade to an empty result with an explanatory status rather
			// than a hard failure.
			h.observeRecommend("no_match", cacheHit, latencyMs, 0)
			h.writeJSON(w, http.StatusOK, &engine.Result{
				Query:           query,
				Recommendations: []engine.Recommendation{},
			})
			return
		}
		log.Error("recommendation failed", "query", query, "error", err)
		h.observeRecommend("error", cacheHit, latencyMs, 0)
		h.writeError(w, apperrors.HTTPStatusCode(err), "recommendation failed")
		return
	}

	outcome := "ok"
	if len(result.Recommendations) == 0 {
		outcome = "zero_result"
	}
	h.observeRecommend(outcome, cacheHit, latencyMs, len(result.Recommendations))

	log.Info("recommendation served",
		"query", query,
		"matched", result.MatchedTitle,
		"returned", len(result.Recommendations),
		"personalized", result.Personalized,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.RecommendEvent{
			Type:         eventType,
			Query:        query,
			MatchedTitle: result.MatchedTitle,
			Returned:     len(result.Recommendations),
			Personalized: result.Personalized,
			CacheHit:     cacheHit,
			LatencyMs:    latencyMs,
			Timestamp:    time.Now().UTC(),
			RequestID:    logger.RequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Suggest handles GET /api/v1/suggest?q=...&limit=10.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	titles := h.holder.Engine().SuggestTitles(query, limit)
	h.writeJSON(w, http.StatusOK, titles)
}

// GetMovie handles GET /api/v1/movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "movie id must be an integer")
		return
	}
	movie, err := h.holder.Engine().GetMovie(id)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), fmt.Sprintf("movie %d not found", id))
		return
	}
	h.writeJSON(w, http.StatusOK, movie)
}

type ratingRequest struct {
	Title  string `json:"title"`
	Rating int    `json:"rating"`
}

// RecordRating handles POST /api/v1/ratings. Out-of-range ratings are
// rejected, never clamped; a malformed body never reaches the log.
func (h *Handler) RecordRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ratingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: rating must be an integer in [1,5]")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := ratings.ValidateRating(req.Rating); err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	event := ratings.Event{
		Title:     req.Title,
		Rating:    req.Rating,
		Timestamp: time.Now().UTC(),
	}
	if err := h.ratings.Append(ctx, event); err != nil {
		log.Error("failed to append rating", "title", req.Title, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "failed to record rating")
		return
	}
	if h.metrics != nil {
		h.metrics.RatingsRecordedTotal.Inc()
	}

	// New feedback invalidates the trained model and any personalized
	// cached results.
	h.models.MarkStale()
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			log.Warn("cache invalidation after rating failed", "error", err)
		}
	}

	log.Info("rating recorded", "title", req.Title, "rating", req.Rating)
	if h.collector != nil {
		h.collector.Track(analytics.RatingEvent{
			Type:      analytics.EventRating,
			Title:     req.Title,
			Rating:    req.Rating,
			Timestamp: event.Timestamp,
			RequestID: logger.RequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// CacheStats handles GET /api/v1/cache/stats.
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

func (h *Handler) observeRecommend(outcome string, cacheHit bool, latencyMs int64, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecommendTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.RecommendLatency.WithLabelValues(cacheStatus).Observe(float64(latencyMs) / 1000)
	h.metrics.RecommendResultCount.Observe(float64(returned))
	if cacheHit {
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
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
