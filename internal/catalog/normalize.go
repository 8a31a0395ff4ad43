package catalog

import (
	"fmt"
	"strings"
)

// Normalizer rewrites a raw snapshot title into its display form. The
// strategy is selected per corpus source: TMDb snapshots are already
// display-ready, while legacy MovieLens exports store trailing articles.
type Normalizer interface {
	Normalize(title string) string
}

// NewNormalizer returns the Normalizer for the given strategy name
// ("none" or "article").
func NewNormalizer(name string) (Normalizer, error) {
	switch name {
	case "", "none":
		return identityNormalizer{}, nil
	case "article":
		return articleNormalizer{}, nil
	default:
		return nil, fmt.Errorf("unknown title normalizer %q", name)
	}
}

type identityNormalizer struct{}

func (identityNormalizer) Normalize(title string) string { return title }

// articleNormalizer converts "Matrix, The (1999)" into "The Matrix (1999)".
type articleNormalizer struct{}

var articles = []string{"The", "A", "An"}

func (articleNormalizer) Normalize(title string) string {
	base := title
	suffix := ""
	if i := strings.LastIndex(title, " ("); i >= 0 && strings.HasSuffix(title, ")") {
		base = title[:i]
		suffix = title[i:]
	}
	for _, article := range articles {
		marker := ", " + article
		if strings.HasSuffix(base, marker) {
			base = article + " " + strings.TrimSuffix(base, marker)
			break
		}
	}
	return base + suffix
}
