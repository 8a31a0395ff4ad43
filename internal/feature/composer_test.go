package feature

import (
	"strings"
	"testing"

	"github.com/muse-movies/muse/internal/catalog"
)

func TestFranchiseKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Alien 3: Resurrection", "Alien"},
		{"Toy Story 2", "Toy Story"},
		{"Toy Story", "Toy Story"},
		{"The Lord of the Rings: The Two Towers", "The Lord of"},
		{"Mission: Impossible", "Mission"},
		{"Kill Bill Volume 2", "Kill Bill"},
		{"Harry Potter and the Chamber of Secrets", "Harry Potter and"},
		{"Up", "Up"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FranchiseKey(tt.title); got != tt.want {
			t.Errorf("FranchiseKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestComposeRepeatsByWeight(t *testing.T) {
	m := catalog.Movie{
		Title:     "Toy Story",
		Overview:  "cowboy doll",
		Genres:    []string{"Animation", "Comedy"},
		Cast:      []string{"Tom Hanks"},
		Directors: []string{"John Lasseter"},
	}
	doc := Compose(m, Weights{Overview: 3, Genres: 2, Cast: 1, Directors: 1, Franchise: 5})

	if got := strings.Count(doc, "cowboy doll"); got != 3 {
		t.Errorf("overview repeated %d times, want 3", got)
	}
	if got := strings.Count(doc, "Animation Comedy"); got != 2 {
		t.Errorf("genres repeated %d times, want 2", got)
	}
	if got := strings.Count(doc, "John Lasseter"); got != 1 {
		t.Errorf("directors repeated %d times, want 1", got)
	}
	if got := strings.Count(doc, "Toy Story"); got != 5 {
		t.Errorf("franchise key repeated %d times, want 5", got)
	}
}

func TestComposeSkipsEmptyFields(t *testing.T) {
	m := catalog.Movie{Title: "Solo Film", Overview: "a heist"}
	doc := Compose(m, DefaultWeights())
	if strings.Contains(doc, "  ") {
		t.Errorf("empty fields left gaps in %q", doc)
	}
	if doc == "" {
		t.Error("non-empty movie composed to empty document")
	}
}

func TestComposeDeterministic(t *testing.T) {
	m := catalog.Movie{
		Title:    "Toy Story 2",
		Overview: "the toys are back",
		Genres:   []string{"Animation"},
	}
	a := Compose(m, DefaultWeights())
	b := Compose(m, DefaultWeights())
	if a != b {
		t.Error("Compose is not deterministic for identical input")
	}
}
