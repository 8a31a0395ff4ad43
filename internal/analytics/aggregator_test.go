package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func feed(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := HandleEvent(agg)(context.Background(), nil, data); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	now := time.Now().UTC()

	feed(t, agg, RecommendEvent{
		Type: EventCacheMiss, Query: "toy story", MatchedTitle: "Toy Story",
		Returned: 5, LatencyMs: 40, Timestamp: now,
	})
	feed(t, agg, RecommendEvent{
		Type: EventCacheHit, Query: "toy story", MatchedTitle: "Toy Story",
		Returned: 5, CacheHit: true, Personalized: true, LatencyMs: 2, Timestamp: now,
	})
	feed(t, agg, RecommendEvent{
		Type: EventCacheMiss, Query: "obscure film", Returned: 0, LatencyMs: 35, Timestamp: now,
	})
	feed(t, agg, RatingEvent{
		Type: EventRating, Title: "Toy Story", Rating: 5, Timestamp: now,
	})

	stats := agg.Stats()
	if stats.TotalRecommends != 3 {
		t.Errorf("TotalRecommends = %d, want 3", stats.TotalRecommends)
	}
	if stats.TotalRatings != 1 {
		t.Errorf("TotalRatings = %d, want 1", stats.TotalRatings)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if stats.PersonalizedCount != 1 {
		t.Errorf("PersonalizedCount = %d, want 1", stats.PersonalizedCount)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "toy story" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %v, want toy story with count 2 first", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "obscure film" {
		t.Errorf("ZeroResultQueries = %v, want obscure film", stats.ZeroResultQueries)
	}
	if stats.AvgLatencyMs <= 0 {
		t.Errorf("AvgLatencyMs = %g, want positive", stats.AvgLatencyMs)
	}
}

func TestAggregatorMalformedEvent(t *testing.T) {
	agg := NewAggregator()
	if err := HandleEvent(agg)(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("malformed event returned error %v, want nil (skip and continue)", err)
	}
	if got := agg.Stats().TotalRecommends; got != 0 {
		t.Errorf("malformed event counted: TotalRecommends = %d", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		pct  int
		want int64
	}{
		{50, 6},
		{95, 10},
		{99, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.pct); got != tt.want {
			t.Errorf("percentile(%d) = %d, want %d", tt.pct, got, tt.want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int64{"a": 5, "b": 9, "c": 1, "d": 7}
	got := topN(counts, 2)
	if len(got) != 2 || got[0].Query != "b" || got[1].Query != "d" {
		t.Errorf("topN() = %v, want [b d]", got)
	}
}
