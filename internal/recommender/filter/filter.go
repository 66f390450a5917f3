// Package filter narrows a ranked recommendation list by rating, vote
// count and release year.
package filter

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

// Criteria holds optional inclusive bounds. A nil field is not applied.
type Criteria struct {
	MinRating *float64 `json:"min_rating,omitempty"`
	MinVotes  *int     `json:"min_votes,omitempty"`
	YearFrom  *int     `json:"year_from,omitempty"`
	YearTo    *int     `json:"year_to,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c Criteria) IsZero() bool {
	return c.MinRating == nil && c.MinVotes == nil && c.YearFrom == nil && c.YearTo == nil
}

// Validate rejects bounds that can never be satisfied meaningfully.
func (c Criteria) Validate() error {
	if c.MinRating != nil {
		if math.IsNaN(*c.MinRating) || math.IsInf(*c.MinRating, 0) || *c.MinRating < 0 {
			return apperrors.InvalidParameter("min_rating must be a non-negative number")
		}
	}
	if c.MinVotes != nil && *c.MinVotes < 0 {
		return apperrors.InvalidParameter("min_votes must be non-negative")
	}
	if c.YearFrom != nil && *c.YearFrom < 0 {
		return apperrors.InvalidParameter("year_from must be non-negative")
	}
	if c.YearTo != nil && *c.YearTo < 0 {
		return apperrors.InvalidParameter("year_to must be non-negative")
	}
	if c.YearFrom != nil && c.YearTo != nil && *c.YearFrom > *c.YearTo {
		return apperrors.InvalidParameter("year_from %d is after year_to %d", *c.YearFrom, *c.YearTo)
	}
	return nil
}

// Match reports whether r satisfies every set bound. A record missing a
// constrained field does not match.
func (c Criteria) Match(r catalog.MovieRecord) bool {
	if c.MinRating != nil && (r.Rating == nil || *r.Rating < *c.MinRating) {
		return false
	}
	if c.MinVotes != nil && (r.Votes == nil || *r.Votes < *c.MinVotes) {
		return false
	}
	if c.YearFrom != nil && (r.Year == nil || *r.Year < *c.YearFrom) {
		return false
	}
	if c.YearTo != nil && (r.Year == nil || *r.Year > *c.YearTo) {
		return false
	}
	return true
}

// Apply returns the records of recs that match c, in their original order.
// It never adds records.
func Apply(recs []catalog.MovieRecord, c Criteria) []catalog.MovieRecord {
	if c.IsZero() {
		return recs
	}
	out := make([]catalog.MovieRecord, 0, len(recs))
	for _, r := range recs {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
