// Package catalog loads the movie metadata snapshot into an immutable
// in-memory table. A snapshot is built once at startup (or on refresh) and
// never mutated afterwards; readers always see a complete corpus.
package catalog

// Movie is a single corpus record. Field names follow the snapshot JSON
// written by the catalog fetcher.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"actors"`
	Directors   []string `json:"directors"`
	PosterURL   string   `json:"poster_url"`
	ReleaseDate string   `json:"release_date"`
	// VoteAverage is display-only; it never participates in ranking.
	VoteAverage float64 `json:"vote_average"`
}
