// Package analytics tracks recommendation and rating usage: events are
// published to Kafka by the collector and folded into in-memory statistics
// by the aggregator.
package analytics

import "time"

type EventType string

const (
	EventRecommend  EventType = "recommend"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
	EventRating     EventType = "rating"
)

// RecommendEvent records one recommendation request.
type RecommendEvent struct {
	Type         EventType `json:"type"`
	Query        string    `json:"query"`
	MatchedTitle string    `json:"matched_title"`
	Returned     int       `json:"returned"`
	Personalized bool      `json:"personalized"`
	CacheHit     bool      `json:"cache_hit"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}

// RatingEvent records one captured rating.
type RatingEvent struct {
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
