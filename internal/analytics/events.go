// Package analytics records what users ask the recommender for. Request
// handlers emit events into a buffered Collector that publishes them to
// Kafka; the Aggregator consumes the topic, keeps rolling statistics and
// periodically snapshots them to PostgreSQL.
package analytics

import "time"

type EventType string

const (
	EventRecommend EventType = "recommend"
	EventSearch    EventType = "search"
	EventResolve   EventType = "resolve"
)

// Outcome values shared by all events.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Resolution values of a recommend event.
const (
	ResolutionExact = "exact"
	ResolutionFuzzy = "fuzzy"
	ResolutionMiss  = "miss"
)

// RecommendEvent describes one recommend call.
type RecommendEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	ResolvedTitle string    `json:"resolved_title,omitempty"`
	Resolution    string    `json:"resolution"`
	FuzzyScore    float64   `json:"fuzzy_score,omitempty"`
	K             int       `json:"k"`
	Returned      int       `json:"returned"`
	Filtered      bool      `json:"filtered"`
	Outcome       string    `json:"outcome"`
	CacheHit      bool      `json:"cache_hit"`
	LatencyMs     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}

// SearchEvent describes one title search or fuzzy resolve call.
type SearchEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	MinSimilarity float64   `json:"min_similarity,omitempty"`
	Returned      int       `json:"returned"`
	TopTitle      string    `json:"top_title,omitempty"`
	Outcome       string    `json:"outcome"`
	CacheHit      bool      `json:"cache_hit"`
	LatencyMs     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}
