// Package proto defines the message types exchanged over the internal
// JSON-over-TCP RPC layer (see pkg/grpc).
package proto

// Method names served by the recommendation service.
const (
	MethodRecommend    = "RecommendService.Recommend"
	MethodSearch       = "RecommendService.Search"
	MethodResolveTitle = "RecommendService.ResolveTitle"
	MethodHealth       = "RecommendService.Health"
)

// Movie is the wire form of a catalog record.
type Movie struct {
	Index      int      `json:"index"`
	Tconst     string   `json:"tconst,omitempty"`
	Title      string   `json:"title"`
	Year       *int     `json:"year,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Votes      *int     `json:"votes,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Directors  []string `json:"directors,omitempty"`
	Similarity float64  `json:"similarity"`
}

// Filters mirrors the optional bounds of a recommend request.
type Filters struct {
	MinRating *float64 `json:"min_rating,omitempty"`
	MinVotes  *int     `json:"min_votes,omitempty"`
	YearFrom  *int     `json:"year_from,omitempty"`
	YearTo    *int     `json:"year_to,omitempty"`
}

type RecommendRequest struct {
	Title string `json:"title"`
	K     int32  `json:"k"`
	// Fuzzy defaults to true when omitted.
	Fuzzy   *bool   `json:"fuzzy,omitempty"`
	Filters Filters `json:"filters"`
}

type RecommendResponse struct {
	QueryTitle      string  `json:"query_title"`
	ResolvedTitle   string  `json:"resolved_title"`
	UsedFuzzy       bool    `json:"used_fuzzy"`
	MatchScore      float64 `json:"match_score,omitempty"`
	Recommendations []Movie `json:"recommendations"`
	LatencyMs       int64   `json:"latency_ms"`
}

type SearchRequest struct {
	Query         string  `json:"query"`
	Limit         int32   `json:"limit"`
	MinSimilarity float64 `json:"min_similarity"`
}

type SearchResponse struct {
	Query     string  `json:"query"`
	Results   []Movie `json:"results"`
	LatencyMs int64   `json:"latency_ms"`
}

type ResolveRequest struct {
	Title string `json:"title"`
}

type ResolveResponse struct {
	Query         string `json:"query"`
	Found         bool   `json:"found"`
	ResolvedTitle string `json:"resolved_title,omitempty"`
}

// HealthCheckResponse mirrors the gRPC health check states.
type HealthCheckResponse struct {
	Status string `json:"status"` // SERVING, NOT_SERVING
}
