package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/muse-movies/muse/pkg/errors"
)

// Snapshot is an immutable corpus: the movie table in load order plus
// lookup indexes. Load order is the tie-break order for title resolution,
// so it must stay stable across the snapshot's lifetime.
type Snapshot struct {
	movies []Movie
	byID   map[int]int
	titles []string
}

// Load reads a JSON snapshot file, normalizes titles, and deduplicates by
// movie ID (first occurrence wins). A missing or unreadable snapshot is
// fatal for the caller: no request can be served without a corpus.
func Load(path string, normalizer Normalizer) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot %s: %v", errors.ErrCorpusUnavailable, path, err)
	}
	var raw []Movie
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing snapshot %s: %v", errors.ErrCorpusUnavailable, path, err)
	}
	snap := New(raw, normalizer)
	slog.Default().With("component", "catalog").Info("corpus snapshot loaded",
		"path", path,
		"movies", snap.Len(),
	)
	return snap, nil
}

// New builds a Snapshot from already-decoded records. Exposed separately
// from Load so tests and the ingestion pipeline can construct corpora
// without a file round-trip.
func New(raw []Movie, normalizer Normalizer) *Snapshot {
	if normalizer == nil {
		normalizer = identityNormalizer{}
	}
	snap := &Snapshot{
		movies: make([]Movie, 0, len(raw)),
		byID:   make(map[int]int, len(raw)),
	}
	for _, m := range raw {
		if _, dup := snap.byID[m.ID]; dup {
			continue
		}
		m.Title = normalizer.Normalize(m.Title)
		snap.byID[m.ID] = len(snap.movies)
		snap.movies = append(snap.movies, m)
	}
	snap.titles = make([]string, len(snap.movies))
	for i, m := range snap.movies {
		snap.titles[i] = m.Title
	}
	return snap
}

// Len returns the number of movies in the corpus.
func (s *Snapshot) Len() int {
	return len(s.movies)
}

// Movies returns the corpus table in load order. Callers must not mutate
// the returned slice.
func (s *Snapshot) Movies() []Movie {
	return s.movies
}

// Titles returns all titles in load order. This is the candidate list fed
// to the title resolver; its order fixes resolution tie-breaks.
func (s *Snapshot) Titles() []string {
	return s.titles
}

// ByID returns the movie with the given ID.
func (s *Snapshot) ByID(id int) (Movie, error) {
	idx, ok := s.byID[id]
	if !ok {
		return Movie{}, fmt.Errorf("%w: id %d", errors.ErrMovieNotFound, id)
	}
	return s.movies[idx], nil
}

// IndexOfTitle returns the corpus position of the first movie with the
// given title, or -1. Titles are not unique (sequels, remakes); first
// occurrence in load order wins.
func (s *Snapshot) IndexOfTitle(title string) int {
	for i, t := range s.titles {
		if t == title {
			return i
		}
	}
	return -1
}

// At returns the movie at the given corpus position.
func (s *Snapshot) At(i int) Movie {
	return s.movies[i]
}

// SuggestTitles returns up to limit titles containing the query as a
// case-insensitive substring, in corpus order.
func (s *Snapshot) SuggestTitles(query string, limit int) []string {
	q := strings.ToLower(query)
	matches := make([]string, 0, limit)
	for _, title := range s.titles {
		if strings.Contains(strings.ToLower(title), q) {
			matches = append(matches, title)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches
}
