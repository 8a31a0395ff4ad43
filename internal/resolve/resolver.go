// Package resolve maps free-text queries onto known movie titles using a
// weighted composite of Levenshtein-family string scores.
package resolve

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/muse-movies/muse/pkg/errors"
)

// Match is the best-scoring candidate for a query.
type Match struct {
	Title string
	Index int
	Score int
}

// Resolver scores a query against candidate titles. A zero MinScore means
// any non-empty candidate list yields a best match; callers that need a
// "no good match" signal set MinScore and treat sub-threshold results as
// not found.
type Resolver struct {
	MinScore int
}

// New creates a Resolver with the given minimum acceptable score (0-100,
// 0 disables the threshold).
func New(minScore int) *Resolver {
	return &Resolver{MinScore: minScore}
}

// Resolve returns the highest-scoring candidate for the query. Ties keep
// the first candidate in slice order, so callers must pass candidates in a
// stable order (corpus load order) for reproducible results.
func (r *Resolver) Resolve(query string, candidates []string) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, fmt.Errorf("%w: empty candidate list", errors.ErrNoMatch)
	}
	best := Match{Index: -1, Score: -1}
	for i, candidate := range candidates {
		score := Score(query, candidate)
		if score > best.Score {
			best = Match{Title: candidate, Index: i, Score: score}
			if score == 100 {
				break
			}
		}
	}
	if r.MinScore > 0 && best.Score < r.MinScore {
		return Match{}, fmt.Errorf("%w: best candidate %q scored %d, need %d",
			errors.ErrNoMatch, best.Title, best.Score, r.MinScore)
	}
	return best, nil
}

// Score rates how well query matches target on a 0-100 scale. It is a
// weighted ratio: the maximum of a full-string edit ratio, a token-sort
// ratio (order-insensitive), and a scaled substring ratio.
func Score(query, target string) int {
	q := normalize(query)
	t := normalize(target)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 100
	}

	score := ratio(q, t)

	// Token-sort catches reordered words ("story toy" vs "toy story").
	if ts := tokenSortRatio(q, t); ts > score {
		score = ts
	}

	// Substring containment, discounted by the length mismatch. A short
	// query inside a long title still counts as a strong match.
	if strings.Contains(t, q) || strings.Contains(q, t) {
		shorter, longer := len(q), len(t)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		sub := 70 + 29*shorter/longer
		if sub > score {
			score = sub
		}
	}

	return score
}

// ratio is the normalised Levenshtein similarity scaled to 0-100.
func ratio(a, b string) int {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein(a, b)
	return (longest - dist) * 100 / longest
}

func tokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// normalize lowercases and collapses punctuation to spaces so that
// "Alien 3: Resurrection" and "alien 3 resurrection" compare equal.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// levenshtein computes edit distance with a single-row DP table.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
