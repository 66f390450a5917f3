package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/kafka"
)

const (
	maxLatencySamples = 10000
	topListSize       = 10
)

// Stats is a point-in-time view of the aggregated events.
type Stats struct {
	TotalRequests     int64        `json:"total_requests"`
	RecommendRequests int64        `json:"recommend_requests"`
	SearchRequests    int64        `json:"search_requests"`
	ResolveRequests   int64        `json:"resolve_requests"`
	ExactResolutions  int64        `json:"exact_resolutions"`
	FuzzyResolutions  int64        `json:"fuzzy_resolutions"`
	FuzzyRate         float64      `json:"fuzzy_rate"`
	NotFoundCount     int64        `json:"not_found_count"`
	ErrorCount        int64        `json:"error_count"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopTitles         []TitleCount `json:"top_titles"`
	TopUnresolved     []TitleCount `json:"top_unresolved"`
	TopSearches       []TitleCount `json:"top_searches"`
	RequestsPerMinute float64      `json:"requests_per_minute"`
	Since             time.Time    `json:"since"`
}

type TitleCount struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}

// Aggregator keeps rolling statistics over recommend, search and resolve
// events. Latency percentiles cover the most recent samples only.
type Aggregator struct {
	mu sync.Mutex

	stats      Stats
	latencies  []int64
	next       int
	titles     map[string]int64
	unresolved map[string]int64
	searches   map[string]int64
	startTime  time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:  make([]int64, 0, 1024),
		titles:     make(map[string]int64),
		unresolved: make(map[string]int64),
		searches:   make(map[string]int64),
		startTime:  time.Now().UTC(),
		logger:     slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent adapts agg to a Kafka message handler. Undecodable messages
// are logged and skipped so they do not block the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		typ := EventType(msg.Type)
		if typ == "" {
			env, err := kafka.DecodeJSON[struct {
				Type EventType `json:"type"`
			}](msg.Value)
			if err != nil {
				agg.logger.Error("failed to decode analytics event", "error", err)
				return nil
			}
			typ = env.Type
		}

		switch typ {
		case EventRecommend:
			ev, err := kafka.DecodeJSON[RecommendEvent](msg.Value)
			if err != nil {
				agg.logger.Error("failed to decode recommend event", "error", err)
				return nil
			}
			agg.RecordRecommend(ev)
		case EventSearch, EventResolve:
			ev, err := kafka.DecodeJSON[SearchEvent](msg.Value)
			if err != nil {
				agg.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			agg.RecordSearch(ev)
		default:
			agg.logger.Warn("unknown analytics event type", "type", typ)
		}
		return nil
	}
}

// Track records an event directly, bypassing Kafka. It lets a single
// process aggregate its own events.
func (a *Aggregator) Track(event interface{}) {
	switch e := event.(type) {
	case RecommendEvent:
		a.RecordRecommend(e)
	case SearchEvent:
		a.RecordSearch(e)
	}
}

func (a *Aggregator) RecordRecommend(ev RecommendEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalRequests++
	a.stats.RecommendRequests++
	a.recordCommon(ev.Outcome, ev.CacheHit, ev.LatencyMs)
	switch ev.Resolution {
	case ResolutionExact:
		a.stats.ExactResolutions++
	case ResolutionFuzzy:
		a.stats.FuzzyResolutions++
	}
	if ev.Outcome == OutcomeOK && ev.ResolvedTitle != "" {
		a.titles[ev.ResolvedTitle]++
	}
	if ev.Outcome == OutcomeNotFound {
		a.unresolved[normalizeQuery(ev.Query)]++
	}
}

func (a *Aggregator) RecordSearch(ev SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalRequests++
	a.recordCommon(ev.Outcome, ev.CacheHit, ev.LatencyMs)
	switch ev.Type {
	case EventResolve:
		a.stats.ResolveRequests++
		if ev.Outcome == OutcomeNotFound {
			a.unresolved[normalizeQuery(ev.Query)]++
		}
	default:
		a.stats.SearchRequests++
		a.searches[normalizeQuery(ev.Query)]++
		if ev.Outcome == OutcomeOK && ev.Returned == 0 {
			a.stats.ZeroResultCount++
		}
	}
}

func (a *Aggregator) recordCommon(outcome string, cacheHit bool, latencyMs int64) {
	if cacheHit {
		a.stats.CacheHits++
	} else {
		a.stats.CacheMisses++
	}
	switch outcome {
	case OutcomeNotFound:
		a.stats.NotFoundCount++
	case OutcomeError, OutcomeUnavailable:
		a.stats.ErrorCount++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, latencyMs)
		return
	}
	a.latencies[a.next] = latencyMs
	a.next = (a.next + 1) % maxLatencySamples
}

// Restore seeds the counters from a persisted snapshot so totals survive a
// restart. Latency samples are not restored.
func (a *Aggregator) Restore(s Stats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats = s
	for _, tc := range s.TopTitles {
		a.titles[tc.Title] += tc.Count
	}
	for _, tc := range s.TopUnresolved {
		a.unresolved[tc.Title] += tc.Count
	}
	for _, tc := range s.TopSearches {
		a.searches[tc.Title] += tc.Count
	}
	if !s.Since.IsZero() {
		a.startTime = s.Since
	}
}

func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.stats
	stats.Since = a.startTime
	if resolved := stats.ExactResolutions + stats.FuzzyResolutions; resolved > 0 {
		stats.FuzzyRate = float64(stats.FuzzyResolutions) / float64(resolved)
	}
	stats.AvgLatencyMs, stats.P50LatencyMs, stats.P95LatencyMs, stats.P99LatencyMs = 0, 0, 0, 0
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopTitles = topN(a.titles, topListSize)
	stats.TopUnresolved = topN(a.unresolved, topListSize)
	stats.TopSearches = topN(a.searches, topListSize)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalRequests) / elapsed
	}
	return stats
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []TitleCount {
	result := make([]TitleCount, 0, len(counts))
	for title, count := range counts {
		result = append(result, TitleCount{Title: title, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Title < result[j].Title
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
