// Package resolver matches free-text queries against catalog titles by
// trigram similarity. It backs both fuzzy title resolution and the title
// search endpoint.
package resolver

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/normalizer"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/trigram"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.30

// suggestionFloor is the Jaro-Winkler similarity a title needs to be
// offered as a did-you-mean suggestion.
const suggestionFloor = 0.75

// Match is a catalog title matched by similarity.
type Match struct {
	Index int     `json:"index"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Resolver scores catalog titles against free-text queries.
type Resolver struct {
	threshold float64
	logger    *slog.Logger
}

// New creates a Resolver. A threshold outside (0, 1] falls back to
// DefaultThreshold.
func New(threshold float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		threshold: threshold,
		logger:    slog.Default().With("component", "resolver"),
	}
}

func (r *Resolver) Threshold() float64 {
	return r.threshold
}

type query struct {
	raw  trigram.Set
	norm trigram.Set
}

func newQuery(q string) query {
	return query{
		raw:  trigram.Extract(strings.ToLower(q)),
		norm: trigram.Extract(normalizer.Normalize(q)),
	}
}

// score is the better of the normalized and the raw lower-cased comparison.
func (q query) score(snap *catalog.Snapshot, i int) float64 {
	raw, norm := snap.TitleGrams(i)
	a := trigram.Compare(norm, q.norm)
	b := trigram.Compare(raw, q.raw)
	if b > a {
		return b
	}
	return a
}

// Resolve returns the single best-scoring title at or above the threshold.
// Ties go to the earliest catalog row. A query that shares no trigram with
// any title never matches.
func (r *Resolver) Resolve(snap *catalog.Snapshot, q string) (Match, bool) {
	qs := newQuery(q)
	best := Match{Index: -1}
	for i := 0; i < snap.Size(); i++ {
		s := qs.score(snap, i)
		if s <= 0 || s < r.threshold {
			continue
		}
		if best.Index < 0 || s > best.Score {
			best = Match{Index: i, Score: s}
		}
	}
	if best.Index < 0 {
		r.logger.Debug("no fuzzy match", "query", q, "threshold", r.threshold)
		return Match{}, false
	}
	rec, _ := snap.Record(best.Index)
	best.Title = rec.Title
	r.logger.Debug("fuzzy match",
		"query", q,
		"title", best.Title,
		"score", best.Score,
	)
	return best, true
}

// Search returns up to limit titles scoring at least minSimilarity, best
// first, ties by ascending catalog index.
func (r *Resolver) Search(snap *catalog.Snapshot, q string, minSimilarity float64, limit int) []Match {
	qs := newQuery(q)
	var hits []Match
	for i := 0; i < snap.Size(); i++ {
		s := qs.score(snap, i)
		if s <= 0 || s < minSimilarity {
			continue
		}
		hits = append(hits, Match{Index: i, Score: s})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Index < hits[j].Index
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		rec, _ := snap.Record(hits[i].Index)
		hits[i].Title = rec.Title
	}
	return hits
}

// Suggest proposes up to n distinct catalog titles close to q by
// Jaro-Winkler similarity of the normalized strings. It is used to enrich
// not-found errors and never resolves a title on its own.
func (r *Resolver) Suggest(snap *catalog.Snapshot, q string, n int) []string {
	if n <= 0 {
		return nil
	}
	nq := normalizer.Normalize(q)
	if nq == "" {
		return nil
	}
	type candidate struct {
		title string
		index int
		score float32
	}
	seen := make(map[string]struct{})
	var cands []candidate
	for i := 0; i < snap.Size(); i++ {
		rec, _ := snap.Record(i)
		nt := normalizer.Normalize(rec.Title)
		if _, dup := seen[nt]; dup {
			continue
		}
		seen[nt] = struct{}{}
		s := edlib.JaroWinklerSimilarity(nq, nt)
		if s >= suggestionFloor {
			cands = append(cands, candidate{title: rec.Title, index: i, score: s})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].index < cands[j].index
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.title
	}
	return out
}
