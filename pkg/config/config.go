// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Server, Catalog, Engine, Ratings, Redis, Kafka, TMDB, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Engine   EngineConfig   `yaml:"engine"`
	Ratings  RatingsConfig  `yaml:"ratings"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	TMDB     TMDBConfig     `yaml:"tmdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// CatalogConfig locates the movie snapshot and selects the title
// normalization strategy applied at load time.
type CatalogConfig struct {
	SnapshotPath string `yaml:"snapshotPath"`
	// Normalizer is "none" for TMDb snapshots (titles already display-ready)
	// or "article" for legacy MovieLens exports that store trailing articles
	// ("Matrix, The (1999)").
	Normalizer string `yaml:"normalizer"`
}

// EngineConfig controls recommendation behaviour: result limits, field
// weights for the composed feature text, and the optional resolver threshold.
type EngineConfig struct {
	DefaultCount   int           `yaml:"defaultCount"`
	MaxCount       int           `yaml:"maxCount"`
	CandidatePool  int           `yaml:"candidatePool"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// MinResolveScore rejects anchors whose fuzzy-match score falls below the
	// value. Zero disables the threshold: any non-empty corpus resolves to a
	// best match.
	MinResolveScore int `yaml:"minResolveScore"`
	OverviewWeight  int `yaml:"overviewWeight"`
	GenreWeight     int `yaml:"genreWeight"`
	CastWeight      int `yaml:"castWeight"`
	DirectorWeight  int `yaml:"directorWeight"`
	FranchiseWeight int `yaml:"franchiseWeight"`
}

// RatingsConfig selects the rating log backend.
type RatingsConfig struct {
	// Backend is "file" (append-only CSV) or "postgres".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	UsageEvents string `yaml:"usageEvents"`
}

// TMDBConfig holds credentials and limits for the catalog fetcher.
type TMDBConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	ImageBaseURL   string        `yaml:"imageBaseUrl"`
	PagesPerList   int           `yaml:"pagesPerList"`
	RequestsPerSec float64       `yaml:"requestsPerSec"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with defaults suitable for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			SnapshotPath: "data/tmdb_movies.json",
			Normalizer:   "none",
		},
		Engine: EngineConfig{
			DefaultCount:    6,
			MaxCount:        25,
			CandidatePool:   3,
			RequestTimeout:  10 * time.Second,
			MinResolveScore: 0,
			OverviewWeight:  3,
			GenreWeight:     2,
			CastWeight:      1,
			DirectorWeight:  1,
			FranchiseWeight: 5,
		},
		Ratings: RatingsConfig{
			Backend: "file",
			Path:    "data/ratings.csv",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "muse",
			User:            "muse",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "muse-group",
			Topics: KafkaTopics{
				UsageEvents: "muse-usage-events",
			},
		},
		TMDB: TMDBConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
			PagesPerList:   25,
			RequestsPerSec: 4,
			RequestTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads MUSE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MUSE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MUSE_CATALOG_SNAPSHOT"); v != "" {
		cfg.Catalog.SnapshotPath = v
	}
	if v := os.Getenv("MUSE_CATALOG_NORMALIZER"); v != "" {
		cfg.Catalog.Normalizer = v
	}
	if v := os.Getenv("MUSE_RATINGS_BACKEND"); v != "" {
		cfg.Ratings.Backend = v
	}
	if v := os.Getenv("MUSE_RATINGS_PATH"); v != "" {
		cfg.Ratings.Path = v
	}
	if v := os.Getenv("MUSE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("MUSE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("MUSE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("MUSE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("MUSE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("MUSE_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("MUSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MUSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("MUSE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MUSE_TMDB_API_KEY"); v != "" {
		cfg.TMDB.APIKey = v
	}
	if v := os.Getenv("MUSE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MUSE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
