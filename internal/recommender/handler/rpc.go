package handler

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/filter"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/proto"
)

// RegisterRPC exposes svc on an RPC server.
func RegisterRPC(s *grpc.Server, svc *recommender.Service) {
	s.Register(proto.MethodRecommend, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.RecommendRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperrors.InvalidParameter("malformed recommend request: %v", err)
		}
		rc, _ := svc.Limits()
		r := recommender.Request{
			Title: req.Title,
			K:     int(req.K),
			Fuzzy: req.Fuzzy == nil || *req.Fuzzy,
			Filters: filter.Criteria{
				MinRating: req.Filters.MinRating,
				MinVotes:  req.Filters.MinVotes,
				YearFrom:  req.Filters.YearFrom,
				YearTo:    req.Filters.YearTo,
			},
		}
		if r.K == 0 {
			r.K = rc.DefaultK
		}
		start := time.Now()
		res, err := svc.Recommend(ctx, r)
		if err != nil {
			return nil, err
		}
		resp := &proto.RecommendResponse{
			QueryTitle:      res.QueryTitle,
			ResolvedTitle:   res.ResolvedTitle,
			UsedFuzzy:       res.UsedFuzzy,
			Recommendations: make([]proto.Movie, len(res.Recommendations)),
			LatencyMs:       time.Since(start).Milliseconds(),
		}
		if res.Match != nil {
			resp.MatchScore = res.Match.Score
		}
		for i, rec := range res.Recommendations {
			resp.Recommendations[i] = toProto(rec.MovieRecord, rec.Similarity)
		}
		return resp, nil
	})

	s.Register(proto.MethodSearch, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.SearchRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperrors.InvalidParameter("malformed search request: %v", err)
		}
		_, sc := svc.Limits()
		limit := int(req.Limit)
		if limit == 0 {
			limit = sc.DefaultLimit
		}
		minSim := req.MinSimilarity
		if minSim == 0 {
			minSim = sc.DefaultMinSimilarity
		}
		start := time.Now()
		hits, err := svc.Search(ctx, req.Query, limit, minSim)
		if err != nil {
			return nil, err
		}
		resp := &proto.SearchResponse{
			Query:     req.Query,
			Results:   make([]proto.Movie, len(hits)),
			LatencyMs: time.Since(start).Milliseconds(),
		}
		for i, h := range hits {
			resp.Results[i] = toProto(h.MovieRecord, h.Similarity)
		}
		return resp, nil
	})

	s.Register(proto.MethodResolveTitle, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.ResolveRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, apperrors.InvalidParameter("malformed resolve request: %v", err)
		}
		title, found, err := svc.ResolveFuzzyTitle(ctx, req.Title)
		if err != nil {
			return nil, err
		}
		return &proto.ResolveResponse{Query: req.Title, Found: found, ResolvedTitle: title}, nil
	})

	s.Register(proto.MethodHealth, func(ctx context.Context, _ json.RawMessage) (any, error) {
		status := "SERVING"
		if !svc.Ready() {
			status = "NOT_SERVING"
		}
		return &proto.HealthCheckResponse{Status: status}, nil
	})
}

func toProto(r catalog.MovieRecord, similarity float64) proto.Movie {
	return proto.Movie{
		Index:      r.Index,
		Tconst:     r.ID,
		Title:      r.Title,
		Year:       r.Year,
		Rating:     r.Rating,
		Votes:      r.Votes,
		Genres:     r.Genres,
		Directors:  r.Directors,
		Similarity: similarity,
	}
}
