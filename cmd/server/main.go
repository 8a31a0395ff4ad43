package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/muse-movies/muse/internal/analytics"
	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/prefs"
	"github.com/muse-movies/muse/internal/ratings"
	"github.com/muse-movies/muse/internal/server"
	"github.com/muse-movies/muse/pkg/config"
	"github.com/muse-movies/muse/pkg/health"
	"github.com/muse-movies/muse/pkg/kafka"
	"github.com/muse-movies/muse/pkg/logger"
	"github.com/muse-movies/muse/pkg/metrics"
	"github.com/muse-movies/muse/pkg/middleware"
	"github.com/muse-movies/muse/pkg/postgres"
	pkgredis "github.com/muse-movies/muse/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting recommendation service", "port", cfg.Server.Port)

	normalizer, err := catalog.NewNormalizer(cfg.Catalog.Normalizer)
	if err != nil {
		slog.Error("invalid catalog config", "error", err)
		os.Exit(1)
	}
	// A missing corpus is fatal: nothing can be served without it.
	snapshot, err := catalog.Load(cfg.Catalog.SnapshotPath, normalizer)
	if err != nil {
		slog.Error("failed to load corpus snapshot", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.CorpusSize.Set(float64(snapshot.Len()))
	}

	holder := engine.NewHolder(engine.New(snapshot, cfg.Engine))

	ratingStore, closeRatings, err := newRatingStore(cfg)
	if err != nil {
		slog.Error("failed to open rating store", "error", err)
		os.Exit(1)
	}
	defer closeRatings()

	var resultCache *server.ResultCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, recommendation caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		resultCache = server.NewResultCache(redisClient, cfg.Redis)
		slog.Info("recommendation cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	usageProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.UsageEvents)
	collector := analytics.NewCollector(usageProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.UsageEvents, analytics.HandleEvent(aggregator))
	analyticsH := analytics.NewHandler(aggregator)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("usage event consumer error", "error", err)
		}
	}()

	models := server.NewModelProvider(ratingStore, prefs.DefaultConfig(), m)

	checker := health.NewChecker()
	checker.Register("corpus", func(ctx context.Context) health.ComponentHealth {
		if n := holder.Engine().Snapshot().Len(); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d movies indexed", n)}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty corpus"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.NewHandler(holder, models, ratingStore, resultCache, collector, m, cfg.Engine)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/recommend", h.Recommend)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/movies/{id}", h.GetMovie)
	mux.HandleFunc("POST /api/v1/ratings", h.RecordRating)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.CORS(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// SIGHUP reloads the snapshot and swaps in a freshly built engine;
	// in-flight requests keep the old (corpus, index) pair.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			slog.Info("corpus reload requested")
			fresh, err := catalog.Load(cfg.Catalog.SnapshotPath, normalizer)
			if err != nil {
				slog.Error("corpus reload failed", "error", err)
				if m != nil {
					m.CorpusRebuildsTotal.WithLabelValues("error").Inc()
				}
				continue
			}
			holder.Swap(engine.New(fresh, cfg.Engine))
			if m != nil {
				m.CorpusRebuildsTotal.WithLabelValues("ok").Inc()
				m.CorpusSize.Set(float64(fresh.Len()))
			}
			if resultCache != nil {
				if err := resultCache.Invalidate(context.Background()); err != nil {
					slog.Warn("cache invalidation after reload failed", "error", err)
				}
			}
			slog.Info("corpus reloaded", "movies", fresh.Len())
		}
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("recommendation service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("recommendation service stopped")
}

func newRatingStore(cfg *config.Config) (ratings.Store, func(), error) {
	switch cfg.Ratings.Backend {
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store, err := ratings.NewPostgresStore(context.Background(), client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		slog.Info("rating store ready", "backend", "postgres", "database", cfg.Postgres.Database)
		return store, func() { client.Close() }, nil
	default:
		store, err := ratings.NewFileLog(cfg.Ratings.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("rating store ready", "backend", "file", "path", cfg.Ratings.Path)
		return store, func() {}, nil
	}
}
