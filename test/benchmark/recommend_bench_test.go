// Package benchmark contains Go benchmarks for the recommendation pipeline:
// index build, query resolution, and end-to-end recommendation latency.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/muse-movies/muse/internal/catalog"
	"github.com/muse-movies/muse/internal/engine"
	"github.com/muse-movies/muse/internal/resolve"
	"github.com/muse-movies/muse/pkg/config"
)

var words = []string{
	"cowboy", "hacker", "heist", "rescue", "journey", "vendetta", "empire",
	"galaxy", "detective", "romance", "uprising", "survival", "legacy",
	"shadow", "fortune", "kingdom",
}

func syntheticCorpus(n int) *catalog.Snapshot {
	movies := make([]catalog.Movie, n)
	for i := 0; i < n; i++ {
		movies[i] = catalog.Movie{
			ID:    i + 1,
			Title: fmt.Sprintf("The %s %s %d", words[i%len(words)], words[(i+3)%len(words)], i),
			Overview: fmt.Sprintf("a %s story about %s and %s in a distant %s",
				words[i%len(words)], words[(i+1)%len(words)],
				words[(i+5)%len(words)], words[(i+7)%len(words)]),
			Genres:    []string{words[i%4], words[4+i%4]},
			Cast:      []string{fmt.Sprintf("actor %d", i%50), fmt.Sprintf("actor %d", (i+1)%50)},
			Directors: []string{fmt.Sprintf("director %d", i%20)},
		}
	}
	return catalog.New(movies, nil)
}

func benchConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultCount:    6,
		MaxCount:        25,
		CandidatePool:   3,
		OverviewWeight:  3,
		GenreWeight:     2,
		CastWeight:      1,
		DirectorWeight:  1,
		FranchiseWeight: 5,
	}
}

// BenchmarkEngineBuild measures corpus index construction at various sizes.
func BenchmarkEngineBuild(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("corpus_%d", size), func(b *testing.B) {
			snap := syntheticCorpus(size)
			cfg := benchConfig()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				engine.New(snap, cfg)
			}
		})
	}
}

// BenchmarkRecommend measures end-to-end recommendation latency over a
// pre-built index.
func BenchmarkRecommend(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("corpus_%d", size), func(b *testing.B) {
			eng := engine.New(syntheticCorpus(size), benchConfig())
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				query := "the " + words[i%len(words)]
				if _, err := eng.Recommend(ctx, query, 6, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRecommendParallel measures concurrent read throughput against a
// shared engine.
func BenchmarkRecommendParallel(b *testing.B) {
	eng := engine.New(syntheticCorpus(1000), benchConfig())
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			query := "the " + words[i%len(words)]
			if _, err := eng.Recommend(ctx, query, 6, nil); err != nil {
				b.Fatal(err)
			}
			i++
		}
	})
}

// BenchmarkResolve measures fuzzy title resolution against a large candidate
// list.
func BenchmarkResolve(b *testing.B) {
	snap := syntheticCorpus(5000)
	titles := snap.Titles()
	resolver := resolve.New(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := resolver.Resolve("the cowboy heist", titles); err != nil {
			b.Fatal(err)
		}
	}
}
