// Package feature builds the weighted text blob that feeds the similarity
// index. Field weighting works by repetition: under a pure-count
// vectorizer, repeating a field N times multiplies its term-frequency
// contribution by N.
package feature

import (
	"regexp"
	"strings"

	"github.com/muse-movies/muse/internal/catalog"
)

// Weights holds the repetition count for each metadata field.
type Weights struct {
	Overview  int
	Genres    int
	Cast      int
	Directors int
	Franchise int
}

// DefaultWeights reproduces the production blend: plot text dominates,
// genres matter, people get normal weight, and the franchise token is
// repeated heavily to pull sequels together.
func DefaultWeights() Weights {
	return Weights{
		Overview:  3,
		Genres:    2,
		Cast:      1,
		Directors: 1,
		Franchise: 5,
	}
}

// Compose concatenates the movie's fields with their configured repetition
// counts. Empty fields contribute nothing; the output is deterministic for
// a given record and weight set.
func Compose(m catalog.Movie, w Weights) string {
	var parts []string
	appendN := func(text string, n int) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		for i := 0; i < n; i++ {
			parts = append(parts, text)
		}
	}

	appendN(m.Overview, w.Overview)
	appendN(strings.Join(m.Genres, " "), w.Genres)
	appendN(strings.Join(m.Cast, " "), w.Cast)
	appendN(strings.Join(m.Directors, " "), w.Directors)
	appendN(FranchiseKey(m.Title), w.Franchise)

	return strings.Join(parts, " ")
}

var trailingNumber = regexp.MustCompile(`\s+\d+$`)

// franchiseSeparators split a title from its sequel/episode marker. Checked
// in order; the first separator present wins.
var franchiseSeparators = []string{":", " - ", " – ", ",", ".", "Part", "Chapter", "Volume"}

// FranchiseKey derives a short series identifier from a title:
// "Alien 3: Resurrection" becomes "Alien". It strips everything after the
// first sequel separator, drops trailing numerals, and keeps the leading
// one to three words. Generic short titles can collide; the calibrator
// guards against that with a minimum key length.
func FranchiseKey(title string) string {
	base := title
	for _, sep := range franchiseSeparators {
		if idx := strings.Index(title, sep); idx >= 0 {
			base = strings.TrimSpace(title[:idx])
			break
		}
	}
	base = strings.TrimSpace(trailingNumber.ReplaceAllString(base, ""))

	words := strings.Fields(base)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
