// Package ingest pulls the movie catalog from the TMDb API and writes the
// corpus snapshot consumed by the catalog store. Fetching paginates several
// discovery lists, deduplicates by movie ID, expands each movie with its
// credits, and respects a client-side rate limit.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/pkg/config"
	"golang.org/x/time/rate"
)

const maxCastMembers = 5

// Client is a rate-limited TMDb API client.
type Client struct {
	httpClient *http.Client
	cfg        config.TMDBConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client honouring the configured requests-per-second
// budget.
func NewClient(cfg config.TMDBConfig) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     slog.Default().With("component", "tmdb-client"),
	}
}

type listResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
	TotalPages int `json:"total_pages"`
}

type movieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// catalogLists are the discovery endpoints paginated during a fetch.
var catalogLists = []string{
	"/movie/popular",
	"/movie/top_rated",
	"/trending/movie/week",
	"/movie/upcoming",
}

// FetchCatalog walks every discovery list, deduplicates movie IDs across
// lists, and expands each movie into a full corpus record. Already-seen IDs
// skip the detail request, so reruns after a partial failure resume
// cheaply.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Movie, error) {
	seen := make(map[int]struct{})
	var ids []int
	for _, list := range catalogLists {
		for page := 1; page <= c.cfg.PagesPerList; page++ {
			resp, err := c.fetchList(ctx, list, page)
			if err != nil {
				return nil, fmt.Errorf("fetching %s page %d: %w", list, page, err)
			}
			for _, r := range resp.Results {
				if _, dup := seen[r.ID]; dup {
					continue
				}
				seen[r.ID] = struct{}{}
				ids = append(ids, r.ID)
			}
			if page >= resp.TotalPages {
				break
			}
		}
		c.logger.Info("list paginated", "list", list, "unique_ids", len(ids))
	}

	movies := make([]catalog.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := c.fetchMovie(ctx, id)
		if err != nil {
			c.logger.Warn("skipping movie", "id", id, "error", err)
			continue
		}
		movies = append(movies, movie)
	}
	c.logger.Info("catalog fetched", "movies", len(movies))
	return movies, nil
}

func (c *Client) fetchList(ctx context.Context, list string, page int) (*listResponse, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	var resp listResponse
	if err := c.get(ctx, list, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) fetchMovie(ctx context.Context, id int) (catalog.Movie, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")
	var details movieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return catalog.Movie{}, err
	}

	genres := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		genres = append(genres, g.Name)
	}
	cast := make([]string, 0, maxCastMembers)
	for i, member := range details.Credits.Cast {
		if i >= maxCastMembers {
			break
		}
		cast = append(cast, member.Name)
	}
	var directors []string
	for _, member := range details.Credits.Crew {
		if member.Job == "Director" {
			directors = append(directors, member.Name)
		}
	}
	posterURL := ""
	if details.PosterPath != "" {
		posterURL = c.cfg.ImageBaseURL + details.PosterPath
	}

	return catalog.Movie{
		ID:          details.ID,
		Title:       details.Title,
		Overview:    details.Overview,
		Genres:      genres,
		Cast:        cast,
		Directors:   directors,
		PosterURL:   posterURL,
		ReleaseDate: details.ReleaseDate,
		VoteAverage: details.VoteAverage,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	params.Set("api_key", c.cfg.APIKey)
	u := c.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb returned %d for %s: %s", resp.StatusCode, path, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
