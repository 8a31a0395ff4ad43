// Command muse is the interactive recommendation loop: type a movie title,
// get recommendations, optionally rate what you've seen.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/prefs"
	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/internal/resolve"
	"github.com/muse-movies/muse/pkg/config"
	apperrors "github.com/muse-movies/muse/pkg/errors"
	"github.com/muse-movies/muse/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	count := flag.Int("count", 5, "number of recommendations per query")
	personal := flag.Bool("personal", false, "re-rank recommendations by your rating history")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup("error", "text")

	normalizer, err := catalog.NewNormalizer(cfg.Catalog.Normalizer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid catalog config: %v\n", err)
		os.Exit(1)
	}
	snapshot, err := catalog.Load(cfg.Catalog.SnapshotPath, normalizer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load corpus: %v\n", err)
		os.Exit(1)
	}
	eng := engine.New(snapshot, cfg.Engine)

	ratingLog, err := ratings.NewFileLog(cfg.Ratings.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open rating log: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var model *prefs.Model
	if *personal {
		model = trainModel(ctx, ratingLog, eng)
	}

	fmt.Println("Welcome to Muse.")
	fmt.Println("Enter a movie title, 'rate <title> = <1-5>' to record a rating, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"):
			fmt.Println("Goodbye!")
			return
		case strings.HasPrefix(strings.ToLower(line), "rate "):
			if recordRating(ctx, ratingLog, line) && *personal {
				model = trainModel(ctx, ratingLog, eng)
			}
		default:
			recommend(ctx, eng, line, *count, model)
		}
	}
}

func recommend(ctx context.Context, eng *engine.Engine, query string, count int, model *prefs.Model) {
	result, err := eng.Recommend(ctx, query, count, model)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoMatch) {
			fmt.Printf("No good match for %q, try a different title.\n", query)
			return
		}
		fmt.Printf("Recommendation failed: %v\n", err)
		return
	}
	fmt.Printf("Because you liked %q:\n\n", result.MatchedTitle)
	for i, rec := range result.Recommendations {
		fmt.Printf("%2d. %s (%d%% match)\n", i+1, rec.Movie.Title, rec.DisplayScore)
		if result.Personalized {
			fmt.Printf("    predicted rating: %.2f\n", rec.PredictedRating)
		}
		if len(rec.Movie.Genres) > 0 {
			fmt.Printf("    %s\n", strings.Join(rec.Movie.Genres, ", "))
		}
	}
	if len(result.Recommendations) == 0 {
		fmt.Println("No recommendations found.")
	}
}

// recordRating parses "rate <title> = <rating>" and appends to the log.
// It reports whether a rating was recorded.
func recordRating(ctx context.Context, log *ratings.FileLog, line string) bool {
	rest := strings.TrimSpace(line[len("rate "):])
	title, ratingStr, found := strings.Cut(rest, "=")
	if !found {
		fmt.Println("Usage: rate <title> = <1-5>")
		return false
	}
	title = strings.TrimSpace(title)
	rating, err := strconv.Atoi(strings.TrimSpace(ratingStr))
	if err != nil {
		fmt.Println("Rating must be a whole number between 1 and 5.")
		return false
	}
	event := ratings.Event{Title: title, Rating: rating, Timestamp: time.Now().UTC()}
	if err := log.Append(ctx, event); err != nil {
		if errors.Is(err, apperrors.ErrInvalidRating) {
			fmt.Println("Rating must be between 1 and 5.")
		} else {
			fmt.Printf("Could not record rating: %v\n", err)
		}
		return false
	}
	fmt.Printf("Recorded %d/5 for %q.\n", rating, title)
	return true
}

func trainModel(ctx context.Context, log *ratings.FileLog, eng *engine.Engine) *prefs.Model {
	events, err := log.All(ctx)
	if err != nil {
		fmt.Printf("Could not read rating log: %v\n", err)
		return nil
	}
	model, err := prefs.Fit(events, eng.Snapshot().Titles(), resolve.New(0), prefs.DefaultConfig())
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientData) {
			fmt.Println("Not enough ratings yet for personalized ranking; using content similarity only.")
		} else {
			fmt.Printf("Could not train preference model: %v\n", err)
		}
		return nil
	}
	return model
}
