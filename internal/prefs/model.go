// Package prefs trains a latent-factor rating predictor from the single
// user's feedback log and re-ranks content-similar candidates by predicted
// rating. The content stage generates candidates; this model owns the final
// order when it is available.
package prefs

import (
	"fmt"
	"math/rand"

	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/internal/resolve"
	"github.com/muse-movies/muse/pkg/errors"
)

// MinDistinctTitles is the training floor: fewer distinct resolved titles
// than this and fitting fails with ErrInsufficientData, signalling the
// caller to fall back to pure content ranking.
const MinDistinctTitles = 3

// Config holds the SGD hyperparameters. Defaults mirror a standard
// Funk-SVD setup.
type Config struct {
	Factors        int
	Epochs         int
	LearningRate   float64
	Regularization float64
	Seed           int64
}

// DefaultConfig returns the production hyperparameters.
func DefaultConfig() Config {
	return Config{
		Factors:        20,
		Epochs:         25,
		LearningRate:   0.005,
		Regularization: 0.02,
		Seed:           42,
	}
}

// Model is a fitted single-user rating predictor.
type Model struct {
	globalMean  float64
	userBias    float64
	userFactors []float64
	itemBias    map[string]float64
	itemFactors map[string][]float64
}

// Fit trains the model on the rating log. Each event title is fuzzy-joined
// onto the corpus title list first; events that resolve to the same corpus
// title train the same item. The join is best-effort: exact capture-time
// matches are not required.
func Fit(events []ratings.Event, corpusTitles []string, resolver *resolve.Resolver, cfg Config) (*Model, error) {
	type sample struct {
		title  string
		rating float64
	}
	samples := make([]sample, 0, len(events))
	distinct := make(map[string]struct{})
	for _, e := range events {
		match, err := resolver.Resolve(e.Title, corpusTitles)
		if err != nil {
			continue
		}
		samples = append(samples, sample{title: match.Title, rating: float64(e.Rating)})
		distinct[match.Title] = struct{}{}
	}
	if len(distinct) < MinDistinctTitles {
		return nil, fmt.Errorf("%w: %d distinct titles, need %d",
			errors.ErrInsufficientData, len(distinct), MinDistinctTitles)
	}

	var sum float64
	for _, s := range samples {
		sum += s.rating
	}
	m := &Model{
		globalMean:  sum / float64(len(samples)),
		userFactors: make([]float64, cfg.Factors),
		itemBias:    make(map[string]float64, len(distinct)),
		itemFactors: make(map[string][]float64, len(distinct)),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := range m.userFactors {
		m.userFactors[i] = rng.NormFloat64() * 0.1
	}
	for title := range distinct {
		factors := make([]float64, cfg.Factors)
		for i := range factors {
			factors[i] = rng.NormFloat64() * 0.1
		}
		m.itemFactors[title] = factors
		m.itemBias[title] = 0
	}

	lr, reg := cfg.LearningRate, cfg.Regularization
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for _, s := range samples {
			qi := m.itemFactors[s.title]
			pred := m.globalMean + m.userBias + m.itemBias[s.title] + dot(m.userFactors, qi)
			err := s.rating - pred

			m.userBias += lr * (err - reg*m.userBias)
			m.itemBias[s.title] += lr * (err - reg*m.itemBias[s.title])
			for f := range m.userFactors {
				pu := m.userFactors[f]
				m.userFactors[f] += lr * (err*qi[f] - reg*pu)
				qi[f] += lr * (err*pu - reg*qi[f])
			}
		}
	}
	return m, nil
}

// Predict estimates the user's rating for a title. Titles with no rating
// history get the cold-start estimate: the global mean shifted by the user
// bias. Predictions are clamped to the rating scale.
func (m *Model) Predict(title string) float64 {
	pred := m.globalMean + m.userBias
	if qi, ok := m.itemFactors[title]; ok {
		pred += m.itemBias[title] + dot(m.userFactors, qi)
	}
	if pred < 1 {
		pred = 1
	}
	if pred > 5 {
		pred = 5
	}
	return pred
}

// Rated reports whether the model saw any training sample for the title.
func (m *Model) Rated(title string) bool {
	_, ok := m.itemFactors[title]
	return ok
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
