// Package handler exposes the recommendation service over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/filter"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/logger"
)

const (
	defaultGenreLimit = 50
	maxGenreLimit     = 100
)

// Handler serves the recommendation HTTP API.
type Handler struct {
	svc     *recommender.Service
	service string
	version string
	logger  *slog.Logger
}

// New creates a Handler; service and version are reported by the banner route.
func New(svc *recommender.Service, service, version string) *Handler {
	return &Handler{
		svc:     svc,
		service: service,
		version: version,
		logger:  slog.Default().With("component", "recommend-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /api/v1/recommend/", h.Recommend)
	mux.HandleFunc("GET /api/v1/search/", h.Search)
	mux.HandleFunc("GET /api/v1/resolve/", h.Resolve)
	mux.HandleFunc("GET /api/v1/movies/lookup", h.LookupTitle)
	mux.HandleFunc("GET /api/v1/movies/genre/{genre}", h.ByGenre)
	mux.HandleFunc("GET /api/v1/movies/{index}", h.Movie)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type recommendResponse struct {
	Title string `json:"title"`
	*recommender.Result
	Count int `json:"count"`
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rc, _ := h.svc.Limits()

	req := recommender.Request{
		Title: q.Get("title"),
		K:     rc.DefaultK,
		Fuzzy: true,
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, r, apperrors.InvalidParameter("query parameter 'title' is required"))
		return
	}

	var err error
	if req.K, err = intParam(q.Get("k"), "k", rc.DefaultK); err != nil {
		h.writeError(w, r, err)
		return
	}
	if v := q.Get("fuzzy"); v != "" {
		if req.Fuzzy, err = strconv.ParseBool(v); err != nil {
			h.writeError(w, r, apperrors.InvalidParameter("fuzzy must be a boolean, got %q", v))
			return
		}
	}
	if req.Filters, err = parseCriteria(q); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recommendResponse{
		Title:  res.ResolvedTitle,
		Result: res,
		Count:  len(res.Recommendations),
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, sc := h.svc.Limits()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		h.writeError(w, r, apperrors.InvalidParameter("query parameter 'q' is required"))
		return
	}
	limit, err := intParam(q.Get("limit"), "limit", sc.DefaultLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	minSim := sc.DefaultMinSimilarity
	if v := q.Get("min_similarity"); v != "" {
		if minSim, err = strconv.ParseFloat(v, 64); err != nil {
			h.writeError(w, r, apperrors.InvalidParameter("min_similarity must be a number, got %q", v))
			return
		}
	}

	hits, err := h.svc.Search(r.Context(), query, limit, minSim)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if hits == nil {
		hits = []recommender.SearchHit{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
		"count":   len(hits),
	})
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("title")
	m, found, err := h.svc.ResolveMatch(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := map[string]any{
		"query":          strings.TrimSpace(query),
		"found":          found,
		"resolved_title": nil,
	}
	if found {
		resp["resolved_title"] = m.Title
		resp["index"] = m.Index
		resp["score"] = m.Score
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, r, apperrors.InvalidParameter("movie index must be an integer, got %q", raw))
		return
	}
	rec, err := h.svc.Movie(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) LookupTitle(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.LookupTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genre := r.PathValue("genre")
	limit, err := intParam(r.URL.Query().Get("limit"), "limit", defaultGenreLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if limit > maxGenreLimit {
		limit = maxGenreLimit
	}
	movies, err := h.svc.ByGenre(r.Context(), genre, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if movies == nil {
		movies = []catalog.MovieRecord{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"genre":  genre,
		"movies": movies,
		"count":  len(movies),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CacheEnabled() {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "enabled",
		"caches": h.svc.CacheStats(r.Context()),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CacheEnabled() {
		h.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "caching is disabled", Code: http.StatusServiceUnavailable})
		return
	}
	n, err := h.svc.InvalidateCache(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "cache invalidation failed", Code: http.StatusInternalServerError})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys": n})
}

// Root is the service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.svc.Ready() {
		status = "loading"
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"service": h.service,
		"version": h.version,
	})
}

type errorBody struct {
	Error       string   `json:"error"`
	Code        int      `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if errors.Is(err, apperrors.ErrIndexOutOfRange) {
		status = http.StatusNotFound
	}
	body := errorBody{Code: status, Suggestions: apperrors.SuggestionsOf(err)}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		body.Error = appErr.Message
	case status >= http.StatusInternalServerError:
		body.Error = http.StatusText(status)
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	default:
		body.Error = err.Error()
	}
	h.writeJSON(w, status, body)
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidParameter("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func parseCriteria(q map[string][]string) (filter.Criteria, error) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	var c filter.Criteria
	if v := get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, apperrors.InvalidParameter("min_rating must be a number, got %q", v)
		}
		c.MinRating = &f
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_votes", &c.MinVotes},
		{"year_from", &c.YearFrom},
		{"year_to", &c.YearTo},
	} {
		v := get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, apperrors.InvalidParameter("%s must be an integer, got %q", p.name, v)
		}
		*p.dst = &n
	}
	return c, nil
}
