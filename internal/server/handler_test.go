package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/prefs"
	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/pkg/config"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultCount:    6,
		MaxCount:        25,
		CandidatePool:   3,
		MinResolveScore: 0,
		OverviewWeight:  3,
		GenreWeight:     2,
		CastWeight:      1,
		DirectorWeight:  1,
		FranchiseWeight: 5,
	}
}

func newTestHandler(t *testing.T) (*Handler, ratings.Store) {
	t.Helper()
	snap := catalog.New([]catalog.Movie{
		{ID: 1, Title: "Toy Story", Overview: "A cowboy doll and a spaceman figure", Genres: []string{"Animation"}},
		{ID: 2, Title: "Toy Story 2", Overview: "The cowboy doll is stolen by a collector", Genres: []string{"Animation"}},
		{ID: 3, Title: "The Matrix", Overview: "A hacker discovers reality is simulated", Genres: []string{"Action"}},
	}, nil)
	cfg := testEngineConfig()
	holder := engine.NewHolder(engine.New(snap, cfg))

	store, err := ratings.NewFileLog(filepath.Join(t.TempDir(), "ratings.csv"))
	if err != nil {
		t.Fatal(err)
	}
	models := NewModelProvider(store, prefs.DefaultConfig(), nil)
	return NewHandler(holder, models, store, nil, nil, nil, cfg), store
}

func TestRecommendMissingQuery(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendInvalidCount(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, count := range []string{"0", "-3", "abc"} {
		rec := httptest.NewRecorder()
		h.Recommend(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend?q=toy&count="+count, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("count=%q status = %d, want 400", count, rec.Code)
		}
	}
}

func TestRecommendSuccess(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend?q=toy+story&count=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var result engine.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.MatchedTitle != "Toy Story" {
		t.Errorf("MatchedTitle = %q, want Toy Story", result.MatchedTitle)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("returned %d recommendations, want 2", len(result.Recommendations))
	}
	for _, r := range result.Recommendations {
		if r.Movie.Title == "Toy Story" {
			t.Error("anchor movie present in response")
		}
	}
}

func TestRecommendNoMatchDegradesToEmptyResult(t *testing.T) {
	snap := catalog.New([]catalog.Movie{
		{ID: 1, Title: "Toy Story", Overview: "cowboy doll", Genres: []string{"Animation"}},
	}, nil)
	cfg := testEngineConfig()
	cfg.MinResolveScore = 95
	holder := engine.NewHolder(engine.New(snap, cfg))
	store, err := ratings.NewFileLog(filepath.Join(t.TempDir(), "ratings.csv"))
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(holder, NewModelProvider(store, prefs.DefaultConfig(), nil), store, nil, nil, nil, cfg)

	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend?q=nothing+like+it", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result engine.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("no-match response carried %d recommendations, want 0", len(result.Recommendations))
	}
}

func TestSuggest(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suggest?q=toy", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var titles []string
	if err := json.NewDecoder(rec.Body).Decode(&titles); err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 || titles[0] != "Toy Story" || titles[1] != "Toy Story 2" {
		t.Errorf("suggestions = %v, want [Toy Story, Toy Story 2]", titles)
	}

	rec = httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suggest", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing query status = %d, want 400", rec.Code)
	}
}

func TestGetMovie(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/3", nil)
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()
	h.GetMovie(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var movie catalog.Movie
	if err := json.NewDecoder(rec.Body).Decode(&movie); err != nil {
		t.Fatal(err)
	}
	if movie.Title != "The Matrix" {
		t.Errorf("movie = %q, want The Matrix", movie.Title)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/movies/404", nil)
	req.SetPathValue("id", "404")
	rec = httptest.NewRecorder()
	h.GetMovie(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/movies/abc", nil)
	req.SetPathValue("id", "abc")
	rec = httptest.NewRecorder()
	h.GetMovie(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer id status = %d, want 400", rec.Code)
	}
}

func TestRecordRating(t *testing.T) {
	h, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title": "Toy Story", "rating": 5}`)
	h.RecordRating(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ratings", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	events, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Title != "Toy Story" || events[0].Rating != 5 {
		t.Errorf("stored events = %+v, want one Toy Story rating of 5", events)
	}
}

func TestRecordRatingRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"rating too high", `{"title": "Toy Story", "rating": 6}`},
		{"rating zero", `{"title": "Toy Story", "rating": 0}`},
		{"rating negative", `{"title": "Toy Story", "rating": -1}`},
		{"non-integer rating", `{"title": "Toy Story", "rating": "five"}`},
		{"fractional rating", `{"title": "Toy Story", "rating": 3.5}`},
		{"missing title", `{"rating": 4}`},
		{"unknown field", `{"title": "Toy Story", "rating": 4, "user": "me"}`},
		{"not json", `rating=4`},
	}
	h, store := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.RecordRating(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ratings", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
	events, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("rejected requests reached the log: %+v", events)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "disabled" {
		t.Errorf("cache stats without redis = %v, want disabled", resp)
	}
}
