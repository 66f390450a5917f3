package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog/catalogtest"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

func ip(v int) *int { return &v }

func fp(v float64) *float64 { return &v }

func TestApply(t *testing.T) {
	recs := catalogtest.Records(catalogtest.Classics())
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, titles(recs)},
		{"min rating inclusive", Criteria{MinRating: fp(8.7)},
			[]string{"The Matrix", "Inception", "Interstellar", "The Dark Knight"}},
		{"min votes", Criteria{MinVotes: ip(2100000)},
			[]string{"Inception", "Interstellar", "The Dark Knight"}},
		{"year window inclusive", Criteria{YearFrom: ip(2003), YearTo: ip(2008)},
			[]string{"The Matrix Reloaded", "The Dark Knight", "Speed Racer"}},
		{"combined", Criteria{MinRating: fp(8.0), YearTo: ip(2005)},
			[]string{"The Matrix", "Amelie"}},
		{"missing field excluded", Criteria{MinRating: fp(0)},
			[]string{"The Matrix", "The Matrix Reloaded", "Inception", "Interstellar", "The Dark Knight", "Amelie"}},
		{"nothing matches", Criteria{MinRating: fp(9.5)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(recs, tt.c)
			assert.Equal(t, tt.want, titles(got))
			assert.LessOrEqual(t, len(got), len(recs))
		})
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	recs := catalogtest.Records(catalogtest.Classics())
	reversed := make([]catalog.MovieRecord, len(recs))
	for i, r := range recs {
		reversed[len(recs)-1-i] = r
	}
	got := Apply(reversed, Criteria{MinVotes: ip(1)})
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].Index, got[i].Index)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Criteria{}.Validate())
	assert.NoError(t, Criteria{YearFrom: ip(1990), YearTo: ip(1990)}.Validate())

	bad := []Criteria{
		{MinRating: fp(math.NaN())},
		{MinRating: fp(-1)},
		{MinVotes: ip(-5)},
		{YearFrom: ip(2010), YearTo: ip(2000)},
		{YearTo: ip(-1)},
	}
	for _, c := range bad {
		assert.ErrorIs(t, c.Validate(), apperrors.ErrInvalidParameter)
	}
}

func titles(recs []catalog.MovieRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}
