// Package recommender orchestrates a recommendation request: it resolves
// the query title to a catalog row, exactly or by trigram similarity,
// ranks the rest of the catalog by cosine similarity and applies the
// caller's filters. It also serves the title search and resolve paths.
package recommender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/cache"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/filter"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/ranker"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/resolver"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/tracing"
)

// Bounds of the search parameters.
const (
	MinSearchSimilarity = 0.1
	MaxSearchSimilarity = 1.0
)

// Tracker receives analytics events. *analytics.Collector satisfies it.
type Tracker interface {
	Track(event interface{})
}

// Request is a recommendation request. K must be within 1..MaxK.
type Request struct {
	Title   string          `json:"title"`
	K       int             `json:"k"`
	Fuzzy   bool            `json:"fuzzy"`
	Filters filter.Criteria `json:"filters"`
}

// Recommendation is a catalog record with its similarity to the query.
type Recommendation struct {
	catalog.MovieRecord
	Similarity float64 `json:"similarity"`
}

// Result is the answer to a recommendation request. Recommendations may
// hold fewer than K entries when filters removed some; they are never
// backfilled.
type Result struct {
	QueryTitle      string           `json:"query_title"`
	ResolvedTitle   string           `json:"resolved_title"`
	ResolvedIndex   int              `json:"resolved_index"`
	UsedFuzzy       bool             `json:"used_fuzzy"`
	Match           *resolver.Match  `json:"match,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

// SearchHit is a title search result.
type SearchHit struct {
	catalog.MovieRecord
	Similarity float64 `json:"similarity"`
}

// Service answers recommendation, search and resolve requests over one
// catalog Store.
type Service struct {
	store       *catalog.Store
	engine      *ranker.Engine
	resolver    *resolver.Resolver
	rc          config.RecommendConfig
	sc          config.SearchConfig
	metrics     *metrics.Metrics
	tracer      *tracing.Tracer
	tracker     Tracker
	recCache    *cache.Cache[*Result]
	searchCache *cache.Cache[[]SearchHit]
	logger      *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithTracker(t Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithCache enables response caching of recommend and search results.
func WithCache(backend cache.Backend, opts cache.Options) Option {
	return func(s *Service) {
		s.recCache = cache.New[*Result](backend, "recommend", opts)
		s.searchCache = cache.New[[]SearchHit](backend, "search", opts)
	}
}

// NewService creates a Service. Zero config values take the defaults of
// config.Default.
func NewService(store *catalog.Store, rc config.RecommendConfig, sc config.SearchConfig, opts ...Option) *Service {
	def := config.Default()
	if rc.MaxK < 1 {
		rc.MaxK = def.Recommend.MaxK
	}
	if rc.DefaultK < 1 || rc.DefaultK > rc.MaxK {
		rc.DefaultK = min(def.Recommend.DefaultK, rc.MaxK)
	}
	if rc.FuzzyThreshold <= 0 {
		rc.FuzzyThreshold = def.Recommend.FuzzyThreshold
	}
	if rc.RankWorkers < 1 {
		rc.RankWorkers = def.Recommend.RankWorkers
	}
	if sc.MaxLimit < 1 {
		sc.MaxLimit = def.Search.MaxLimit
	}
	if sc.DefaultLimit < 1 || sc.DefaultLimit > sc.MaxLimit {
		sc.DefaultLimit = min(def.Search.DefaultLimit, sc.MaxLimit)
	}
	if sc.DefaultMinSimilarity < MinSearchSimilarity || sc.DefaultMinSimilarity > MaxSearchSimilarity {
		sc.DefaultMinSimilarity = def.Search.DefaultMinSimilarity
	}
	s := &Service{
		store:    store,
		engine:   ranker.NewEngine(rc.RankWorkers),
		resolver: resolver.New(rc.FuzzyThreshold),
		rc:       rc,
		sc:       sc,
		logger:   slog.Default().With("component", "recommender"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the effective recommend and search configuration.
func (s *Service) Limits() (config.RecommendConfig, config.SearchConfig) {
	return s.rc, s.sc
}

// Warm loads the catalog and publishes its size metrics.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.snapshot(ctx)
	return err
}

// Ready reports whether the catalog has been loaded successfully.
func (s *Service) Ready() bool {
	return s.store.Loaded()
}

func (s *Service) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CatalogMovies.Set(float64(snap.Size()))
		s.metrics.CatalogLoadSeconds.Set(s.store.LoadDuration().Seconds())
	}
	return snap, nil
}

// Recommend resolves req.Title and returns the K most similar movies that
// pass req.Filters.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req.Title = strings.TrimSpace(req.Title)
	ctx, span := s.tracer.Start(ctx, "recommend", logger.RequestID(ctx))
	span.SetAttr("title", req.Title)
	span.SetAttr("k", req.K)
	defer s.tracer.Finish(span)

	var (
		res *Result
		hit bool
	)
	err := s.validate(req)
	if err == nil {
		res, hit, err = s.recommendCached(ctx, req)
	}
	s.observeRecommend(ctx, req, res, hit, err, time.Since(start))
	return res, err
}

func (s *Service) validate(req Request) error {
	if req.Title == "" {
		return apperrors.InvalidParameter("title must not be empty")
	}
	if req.K < 1 || req.K > s.rc.MaxK {
		return apperrors.InvalidParameter("k must be between 1 and %d, got %d", s.rc.MaxK, req.K)
	}
	return req.Filters.Validate()
}

func (s *Service) recommendCached(ctx context.Context, req Request) (*Result, bool, error) {
	compute := func() (*Result, error) {
		var res *Result
		err := resilience.WithTimeout(ctx, s.rc.RequestTimeout, "recommend", func(ctx context.Context) error {
			r, err := s.recommend(ctx, req)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if s.recCache == nil {
		res, err := compute()
		return res, false, err
	}
	key := s.recCache.Key(
		catalog.ExactKey(req.Title),
		strconv.Itoa(req.K),
		strconv.FormatBool(req.Fuzzy),
		criteriaKey(req.Filters),
	)
	res, hit, err := s.recCache.GetOrCompute(ctx, key, compute)
	if err != nil || res == nil {
		return res, hit, err
	}
	// Entries are shared across titles that differ only in case.
	out := *res
	out.QueryTitle = req.Title
	return &out, hit, nil
}

func (s *Service) recommend(ctx context.Context, req Request) (*Result, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{QueryTitle: req.Title}

	idx, ok := snap.Titles().LookupExact(req.Title)
	if !ok && req.Fuzzy {
		_, rspan := tracing.StartChildSpan(ctx, "resolve")
		m, found := s.resolver.Resolve(snap, req.Title)
		rspan.SetAttr("found", found)
		rspan.End()
		if found {
			idx, ok = m.Index, true
			res.UsedFuzzy = true
			res.Match = &m
		}
	}
	if !ok {
		return nil, apperrors.TitleNotFound(req.Title, s.resolver.Suggest(snap, req.Title, s.rc.SuggestionCount))
	}
	rec, err := snap.Record(idx)
	if err != nil {
		return nil, err
	}
	res.ResolvedTitle = rec.Title
	res.ResolvedIndex = idx

	rankCtx, rankSpan := tracing.StartChildSpan(ctx, "rank")
	scored, err := s.engine.TopK(rankCtx, snap, idx, req.K)
	rankSpan.SetAttr("candidates", snap.Size()-1)
	rankSpan.End()
	if err != nil {
		return nil, err
	}

	_, filterSpan := tracing.StartChildSpan(ctx, "filter")
	records := make([]catalog.MovieRecord, len(scored))
	scores := make(map[int]float64, len(scored))
	for i, sc := range scored {
		records[i], _ = snap.Record(sc.Index)
		scores[sc.Index] = sc.Score
	}
	kept := filter.Apply(records, req.Filters)
	filterSpan.SetAttr("kept", len(kept))
	filterSpan.End()

	res.Recommendations = make([]Recommendation, len(kept))
	for i, r := range kept {
		res.Recommendations[i] = Recommendation{MovieRecord: r, Similarity: scores[r.Index]}
	}
	return res, nil
}

func (s *Service) observeRecommend(ctx context.Context, req Request, res *Result, hit bool, err error, took time.Duration) {
	outcome := outcomeOf(err)
	resolution := analytics.ResolutionMiss
	ev := analytics.RecommendEvent{
		Type:      analytics.EventRecommend,
		Query:     req.Title,
		K:         req.K,
		Filtered:  !req.Filters.IsZero(),
		Outcome:   outcome,
		CacheHit:  hit,
		LatencyMs: took.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}
	if res != nil {
		resolution = analytics.ResolutionExact
		if res.UsedFuzzy {
			resolution = analytics.ResolutionFuzzy
			if res.Match != nil {
				ev.FuzzyScore = res.Match.Score
			}
		}
		ev.ResolvedTitle = res.ResolvedTitle
		ev.Returned = len(res.Recommendations)
	}
	ev.Resolution = resolution

	if s.metrics != nil {
		s.metrics.RecommendRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.RecommendLatency.Observe(took.Seconds())
		if res != nil || errors.Is(err, apperrors.ErrTitleNotFound) {
			s.metrics.TitleResolutionsTotal.WithLabelValues(resolution).Inc()
		}
		if res != nil {
			s.metrics.RecommendationsReturned.Observe(float64(len(res.Recommendations)))
		}
	}
	if s.tracker != nil && outcome != analytics.OutcomeInvalid {
		s.tracker.Track(ev)
	}

	log := s.logger
	if id := logger.RequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}
	switch {
	case err == nil:
		log.Info("recommendation served",
			"title", req.Title,
			"resolved", res.ResolvedTitle,
			"fuzzy", res.UsedFuzzy,
			"returned", len(res.Recommendations),
			"cache_hit", hit,
			"latency", took,
		)
	case apperrors.IsUserError(err):
		log.Info("recommendation rejected", "title", req.Title, "reason", err, "latency", took)
	default:
		log.Error("recommendation failed", "title", req.Title, "error", err, "latency", took)
	}
}

// Search ranks catalog titles by trigram similarity to query.
func (s *Service) Search(ctx context.Context, query string, limit int, minSimilarity float64) ([]SearchHit, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	hits, hit, err := s.search(ctx, query, limit, minSimilarity)
	took := time.Since(start)

	outcome := outcomeOf(err)
	resultType := "hit"
	switch {
	case err != nil:
		resultType = "error"
	case len(hits) == 0:
		resultType = "zero_result"
	}
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		s.metrics.SearchLatency.Observe(took.Seconds())
	}
	if s.tracker != nil && outcome != analytics.OutcomeInvalid {
		ev := analytics.SearchEvent{
			Type:          analytics.EventSearch,
			Query:         query,
			MinSimilarity: minSimilarity,
			Returned:      len(hits),
			Outcome:       outcome,
			CacheHit:      hit,
			LatencyMs:     took.Milliseconds(),
			Timestamp:     time.Now().UTC(),
			RequestID:     logger.RequestID(ctx),
		}
		if len(hits) > 0 {
			ev.TopTitle = hits[0].Title
		}
		s.tracker.Track(ev)
	}
	if err != nil && !apperrors.IsUserError(err) {
		s.logger.Error("search failed", "query", query, "error", err)
	} else {
		s.logger.Debug("search served", "query", query, "results", len(hits), "latency", took)
	}
	return hits, err
}

func (s *Service) search(ctx context.Context, query string, limit int, minSimilarity float64) ([]SearchHit, bool, error) {
	if query == "" {
		return nil, false, apperrors.InvalidParameter("query must not be empty")
	}
	if limit < 1 || limit > s.sc.MaxLimit {
		return nil, false, apperrors.InvalidParameter("limit must be between 1 and %d, got %d", s.sc.MaxLimit, limit)
	}
	if !(minSimilarity >= MinSearchSimilarity && minSimilarity <= MaxSearchSimilarity) {
		return nil, false, apperrors.InvalidParameter("min_similarity must be between %.1f and %.1f", MinSearchSimilarity, MaxSearchSimilarity)
	}
	compute := func() ([]SearchHit, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		matches := s.resolver.Search(snap, query, minSimilarity, limit)
		hits := make([]SearchHit, len(matches))
		for i, m := range matches {
			rec, _ := snap.Record(m.Index)
			hits[i] = SearchHit{MovieRecord: rec, Similarity: m.Score}
		}
		return hits, nil
	}
	if s.searchCache == nil {
		hits, err := compute()
		return hits, false, err
	}
	key := s.searchCache.Key(
		strings.ToLower(query),
		strconv.Itoa(limit),
		strconv.FormatFloat(minSimilarity, 'f', -1, 64),
	)
	return s.searchCache.GetOrCompute(ctx, key, compute)
}

// ResolveFuzzyTitle returns the catalog title query resolves to by trigram
// similarity, if any.
func (s *Service) ResolveFuzzyTitle(ctx context.Context, query string) (string, bool, error) {
	start := time.Now()
	m, found, err := s.resolveFuzzy(ctx, query)
	if s.tracker != nil && err == nil {
		ev := analytics.SearchEvent{
			Type:      analytics.EventResolve,
			Query:     query,
			Outcome:   analytics.OutcomeOK,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		}
		if found {
			ev.Returned = 1
			ev.TopTitle = m.Title
		} else {
			ev.Outcome = analytics.OutcomeNotFound
		}
		s.tracker.Track(ev)
	}
	if err != nil {
		return "", false, err
	}
	return m.Title, found, nil
}

// ResolveMatch is ResolveFuzzyTitle with the matched row and score.
func (s *Service) ResolveMatch(ctx context.Context, query string) (resolver.Match, bool, error) {
	return s.resolveFuzzy(ctx, query)
}

func (s *Service) resolveFuzzy(ctx context.Context, query string) (resolver.Match, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return resolver.Match{}, false, apperrors.InvalidParameter("title must not be empty")
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return resolver.Match{}, false, err
	}
	m, found := s.resolver.Resolve(snap, query)
	if s.metrics != nil {
		kind := analytics.ResolutionFuzzy
		if !found {
			kind = analytics.ResolutionMiss
		}
		s.metrics.TitleResolutionsTotal.WithLabelValues(kind).Inc()
	}
	return m, found, nil
}

// Movie returns the record at a catalog index.
func (s *Service) Movie(ctx context.Context, index int) (catalog.MovieRecord, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return catalog.MovieRecord{}, err
	}
	return snap.Record(index)
}

// LookupTitle finds a movie through the normalized title index, so that
// "matrix" and "The Matrix!" both find "The Matrix".
func (s *Service) LookupTitle(ctx context.Context, title string) (catalog.MovieRecord, error) {
	if strings.TrimSpace(title) == "" {
		return catalog.MovieRecord{}, apperrors.InvalidParameter("title must not be empty")
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return catalog.MovieRecord{}, err
	}
	idx, ok := snap.Titles().Lookup(title)
	if !ok {
		return catalog.MovieRecord{}, apperrors.TitleNotFound(title, nil)
	}
	return snap.Record(idx)
}

// ByGenre lists up to limit movies tagged with genre, in catalog order.
func (s *Service) ByGenre(ctx context.Context, genre string, limit int) ([]catalog.MovieRecord, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, apperrors.InvalidParameter("genre must not be empty")
	}
	if limit < 1 || limit > 100 {
		return nil, apperrors.InvalidParameter("limit must be between 1 and 100, got %d", limit)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ByGenre(genre, limit), nil
}

// CacheEnabled reports whether responses are cached.
func (s *Service) CacheEnabled() bool {
	return s.recCache != nil
}

// CacheStats reports both response caches.
func (s *Service) CacheStats(ctx context.Context) []cache.Stats {
	if s.recCache == nil {
		return nil
	}
	return []cache.Stats{s.recCache.Stats(ctx), s.searchCache.Stats(ctx)}
}

// InvalidateCache drops every cached response.
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	if s.recCache == nil {
		return 0, nil
	}
	a, err := s.recCache.Invalidate(ctx)
	if err != nil {
		return a, err
	}
	b, err := s.searchCache.Invalidate(ctx)
	return a + b, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return analytics.OutcomeOK
	case errors.Is(err, apperrors.ErrTitleNotFound):
		return analytics.OutcomeNotFound
	case errors.Is(err, apperrors.ErrInvalidParameter):
		return analytics.OutcomeInvalid
	case errors.Is(err, apperrors.ErrDataUnavailable):
		return analytics.OutcomeUnavailable
	default:
		return analytics.OutcomeError
	}
}

func criteriaKey(c filter.Criteria) string {
	var b strings.Builder
	if c.MinRating != nil {
		fmt.Fprintf(&b, "r%g", *c.MinRating)
	}
	if c.MinVotes != nil {
		fmt.Fprintf(&b, "v%d", *c.MinVotes)
	}
	if c.YearFrom != nil {
		fmt.Fprintf(&b, "f%d", *c.YearFrom)
	}
	if c.YearTo != nil {
		fmt.Fprintf(&b, "t%d", *c.YearTo)
	}
	return b.String()
}
