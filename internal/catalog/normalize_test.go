package catalog

import "testing"

func TestArticleNormalizer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Matrix, The (1999)", "The Matrix (1999)"},
		{"American in Paris, An (1951)", "An American in Paris (1951)"},
		{"Beautiful Mind, A (2001)", "A Beautiful Mind (2001)"},
		{"Matrix, The", "The Matrix"},
		{"Toy Story (1995)", "Toy Story (1995)"},
		{"Heat (1995)", "Heat (1995)"},
	}
	n := articleNormalizer{}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewNormalizer(t *testing.T) {
	for _, name := range []string{"", "none", "article"} {
		if _, err := NewNormalizer(name); err != nil {
			t.Errorf("NewNormalizer(%q) error: %v", name, err)
		}
	}
	if _, err := NewNormalizer("bogus"); err == nil {
		t.Error("NewNormalizer(bogus) expected error")
	}
}
