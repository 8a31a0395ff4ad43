// Command fetch refreshes the movie corpus snapshot from the TMDb API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muse-movies/muse/internal/ingest"
	"github.com/muse-movies/muse/pkg/config"
	"github.com/muse-movies/muse/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	out := flag.String("out", "", "snapshot output path (defaults to catalog.snapshotPath)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	if cfg.TMDB.APIKey == "" {
		slog.Error("TMDb API key missing; set MUSE_TMDB_API_KEY or tmdb.apiKey")
		os.Exit(1)
	}
	path := cfg.Catalog.SnapshotPath
	if *out != "" {
		path = *out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ingest.NewClient(cfg.TMDB)
	slog.Info("fetching catalog",
		"base_url", cfg.TMDB.BaseURL,
		"pages_per_list", cfg.TMDB.PagesPerList,
		"requests_per_sec", cfg.TMDB.RequestsPerSec,
	)
	movies, err := client.FetchCatalog(ctx)
	if err != nil {
		slog.Error("catalog fetch failed", "error", err)
		os.Exit(1)
	}
	if err := ingest.WriteSnapshot(path, movies); err != nil {
		slog.Error("snapshot write failed", "error", err)
		os.Exit(1)
	}
	slog.Info("snapshot written", "path", path, "movies", len(movies))
}
