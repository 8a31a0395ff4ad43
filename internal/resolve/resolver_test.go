package resolve

import (
	"errors"
	"testing"

	apperrors "github.com/muse-movies/muse/pkg/errors"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		target string
		want   int
	}{
		{"exact", "Toy Story", "Toy Story", 100},
		{"case insensitive", "toy story", "Toy Story", 100},
		{"punctuation collapsed", "alien 3 resurrection", "Alien 3: Resurrection", 100},
		{"reordered tokens", "story toy", "Toy Story", 100},
		{"substring", "matrix", "The Matrix (1999)", 70 + 29*6/15},
		{"empty query", "", "Toy Story", 0},
		{"empty target", "Toy Story", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.query, tt.target); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.query, tt.target, got, tt.want)
			}
		})
	}
}

func TestScoreOrdersByCloseness(t *testing.T) {
	near := Score("toy story", "Toy Story 2")
	far := Score("toy story", "The Matrix")
	if near <= far {
		t.Errorf("Score(toy story, Toy Story 2) = %d not above Score(toy story, The Matrix) = %d", near, far)
	}
}

func TestResolveBestMatch(t *testing.T) {
	candidates := []string{"Toy Story", "Toy Story 2", "The Matrix"}
	match, err := New(0).Resolve("toy story", candidates)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if match.Title != "Toy Story" || match.Index != 0 {
		t.Errorf("Resolve(toy story) = %+v, want Toy Story at index 0", match)
	}
	if match.Score != 100 {
		t.Errorf("exact match score = %d, want 100", match.Score)
	}
}

func TestResolveTiesKeepFirstCandidate(t *testing.T) {
	// Both candidates score identically for the query; slice order decides.
	candidates := []string{"Beta One", "Beta Two"}
	match, err := New(0).Resolve("beta", candidates)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if match.Index != 0 {
		t.Errorf("tie resolved to index %d, want 0", match.Index)
	}
}

func TestResolveThreshold(t *testing.T) {
	candidates := []string{"Toy Story", "The Matrix"}

	_, err := New(90).Resolve("zzzzzzzz", candidates)
	if !errors.Is(err, apperrors.ErrNoMatch) {
		t.Errorf("below-threshold error = %v, want ErrNoMatch", err)
	}

	// Zero threshold always returns the best candidate, however weak.
	match, err := New(0).Resolve("zzzzzzzz", candidates)
	if err != nil {
		t.Fatalf("Resolve() with disabled threshold error: %v", err)
	}
	if match.Index < 0 {
		t.Errorf("disabled threshold returned no match: %+v", match)
	}
}

func TestResolveEmptyCandidates(t *testing.T) {
	_, err := New(0).Resolve("anything", nil)
	if !errors.Is(err, apperrors.ErrNoMatch) {
		t.Errorf("empty candidate error = %v, want ErrNoMatch", err)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
