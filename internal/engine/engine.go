// Package engine wires the recommendation pipeline: resolve the query to an
// anchor movie, score the anchor against the corpus, calibrate the scores,
// and optionally re-rank by the user's preference model. An Engine owns an
// immutable (corpus, index, resolver) triple; corpus refreshes build a new
// Engine and swap it into the Holder atomically.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/muse-movies/muse/internal/calibrate"
	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/internal/feature"
	"github.com/muse-movies/muse/internal/prefs"
	"github.com/muse-movies/muse/internal/resolve"
	"github.com/muse-movies/muse/internal/similarity"
	"github.com/muse-movies/muse/pkg/config"
	"github.com/muse-movies/muse/pkg/errors"
)

// Recommendation is one ranked result.
type Recommendation struct {
	Movie           catalog.Movie `json:"movie"`
	DisplayScore    int           `json:"display_score"`
	PredictedRating float64       `json:"predicted_rating,omitempty"`
}

// Result is the full response for a recommend call.
type Result struct {
	Query           string           `json:"query"`
	MatchedTitle    string           `json:"matched_title"`
	MatchScore      int              `json:"match_score"`
	Personalized    bool             `json:"personalized"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Engine holds the read-only state for one corpus generation.
type Engine struct {
	snapshot *catalog.Snapshot
	index    *similarity.Index
	resolver *resolve.Resolver
	weights  feature.Weights
	cfg      config.EngineConfig
	logger   *slog.Logger
}

// New composes the feature documents for every corpus movie, fits the
// similarity index once, and returns a ready Engine. Building here (rather
// than per query) keeps query cost at one similarity row.
func New(snapshot *catalog.Snapshot, cfg config.EngineConfig) *Engine {
	weights := feature.Weights{
		Overview:  cfg.OverviewWeight,
		Genres:    cfg.GenreWeight,
		Cast:      cfg.CastWeight,
		Directors: cfg.DirectorWeight,
		Franchise: cfg.FranchiseWeight,
	}
	docs := make([]string, snapshot.Len())
	for i, m := range snapshot.Movies() {
		docs[i] = feature.Compose(m, weights)
	}
	index := similarity.Build(docs)
	logger := slog.Default().With("component", "engine")
	logger.Info("similarity index built",
		"movies", snapshot.Len(),
		"vocabulary", index.VocabSize(),
	)
	return &Engine{
		snapshot: snapshot,
		index:    index,
		resolver: resolve.New(cfg.MinResolveScore),
		weights:  weights,
		cfg:      cfg,
		logger:   logger,
	}
}

// Snapshot returns the corpus this engine was built from.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.snapshot
}

// GetMovie returns the corpus record with the given ID.
func (e *Engine) GetMovie(id int) (catalog.Movie, error) {
	return e.snapshot.ByID(id)
}

// SuggestTitles returns case-insensitive substring title matches in corpus
// order. This is a plain filter, independent of the similarity pipeline.
func (e *Engine) SuggestTitles(partial string, limit int) []string {
	return e.snapshot.SuggestTitles(partial, limit)
}

// Recommend resolves the query to an anchor and returns up to count
// calibrated recommendations. When model is non-nil the candidate set is
// re-ranked by predicted rating: content similarity only generates the
// pool, the preference model decides the final order.
func (e *Engine) Recommend(ctx context.Context, query string, count int, model *prefs.Model) (*Result, error) {
	if e.snapshot.Len() == 0 {
		return nil, fmt.Errorf("%w: empty corpus", errors.ErrCorpusUnavailable)
	}
	if count <= 0 {
		count = e.cfg.DefaultCount
	}
	if e.cfg.MaxCount > 0 && count > e.cfg.MaxCount {
		count = e.cfg.MaxCount
	}

	match, err := e.resolver.Resolve(query, e.snapshot.Titles())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}

	poolSize := count
	if model != nil && e.cfg.CandidatePool > 1 {
		poolSize = count * e.cfg.CandidatePool
	}

	scores := e.index.ScoreAgainstAll(match.Index)
	ranked := topRanked(scores, poolSize+1)

	anchorMovie := e.snapshot.At(match.Index)
	anchorKey := feature.FranchiseKey(anchorMovie.Title)
	candidates := make([]calibrate.Candidate, len(ranked))
	for i, idx := range ranked {
		candidates[i] = calibrate.Candidate{
			RawScore:     scores[idx],
			FranchiseKey: feature.FranchiseKey(e.snapshot.At(idx).Title),
		}
	}
	display := calibrate.Calibrate(candidates, scores[match.Index], anchorKey)

	recs := make([]Recommendation, 0, count)
	for i, idx := range ranked {
		movie := e.snapshot.At(idx)
		if movie.Title == match.Title {
			continue
		}
		recs = append(recs, Recommendation{Movie: movie, DisplayScore: display[i]})
	}

	personalized := false
	if model != nil {
		personalized = true
		for i := range recs {
			recs[i].PredictedRating = model.Predict(recs[i].Movie.Title)
		}
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].PredictedRating > recs[j].PredictedRating
		})
	}
	if len(recs) > count {
		recs = recs[:count]
	}

	e.logger.Debug("recommendation computed",
		"query", query,
		"matched", match.Title,
		"match_score", match.Score,
		"returned", len(recs),
		"personalized", personalized,
	)
	return &Result{
		Query:           query,
		MatchedTitle:    match.Title,
		MatchScore:      match.Score,
		Personalized:    personalized,
		Recommendations: recs,
	}, nil
}

// topRanked returns the indices of the n highest scores, ordered by score
// descending with corpus position as the tie-break. The anchor's own index
// rides along at rank 0 (self-similarity 1.0) and is filtered out later by
// title.
func topRanked(scores []float64, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
