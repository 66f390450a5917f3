package ranker

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog/catalogtest"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

func TestTopKClassics(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	got, err := NewEngine(1).TopK(context.Background(), snap, 0, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	for _, s := range got {
		assert.NotEqual(t, 0, s.Index)
	}
	assertOrdered(t, got)
}

func TestTopKUnderFill(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	got, err := NewEngine(4).TopK(context.Background(), snap, 2, 50)
	require.NoError(t, err)
	assert.Len(t, got, snap.Size()-1)
	assertOrdered(t, got)
}

func TestTopKTiesByIndex(t *testing.T) {
	movies := []catalogtest.Movie{
		{Title: "Q", Genres: []string{"Drama"}},
		{Title: "B", Genres: []string{"Drama"}},
		{Title: "A", Genres: []string{"Drama"}},
		{Title: "Z"},
		{Title: "C", Genres: []string{"Drama"}},
	}
	snap := catalogtest.Snapshot(t, movies)
	got, err := NewEngine(2).TopK(context.Background(), snap, 0, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 2, 4, 3}, indices(got))
	assert.Equal(t, 0.0, got[3].Score)
}

func TestTopKZeroQueryVector(t *testing.T) {
	movies := []catalogtest.Movie{{Title: "Empty"}, {Title: "X", Genres: []string{"Drama"}}, {Title: "Y"}}
	snap := catalogtest.Snapshot(t, movies)
	got, err := NewEngine(1).TopK(context.Background(), snap, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indices(got))
	for _, s := range got {
		assert.Equal(t, 0.0, s.Score)
	}
}

func TestTopKErrors(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	e := NewEngine(1)
	_, err := e.TopK(context.Background(), snap, 99, 3)
	assert.ErrorIs(t, err, apperrors.ErrIndexOutOfRange)
	_, err = e.TopK(context.Background(), snap, -1, 3)
	assert.ErrorIs(t, err, apperrors.ErrIndexOutOfRange)
	_, err = e.TopK(context.Background(), snap, 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestTopKSingleRowCatalog(t *testing.T) {
	snap := catalogtest.Snapshot(t, []catalogtest.Movie{{Title: "Alone", Genres: []string{"Drama"}}})
	got, err := NewEngine(3).TopK(context.Background(), snap, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// The parallel sweep must agree with a brute-force sort on a catalog large
// enough to be split into several chunks.
func TestTopKParallelMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const rows, terms = 3*minChunk + 17, 40
	records := make([]catalog.MovieRecord, rows)
	vectors := make([]catalog.DocumentVector, rows)
	for i := range records {
		records[i] = catalog.MovieRecord{Title: "m"}
		var ts []int
		var ws []float64
		for term := 0; term < terms; term++ {
			if rng.Intn(6) == 0 {
				ts = append(ts, term)
				ws = append(ws, float64(rng.Intn(3)+1))
			}
		}
		v, err := catalog.NewDocumentVector(ts, ws)
		require.NoError(t, err)
		vectors[i] = v
	}
	snap, err := catalog.NewSnapshot(records, vectors)
	require.NoError(t, err)

	query := 123
	var want []Scored
	for i := 0; i < rows; i++ {
		if i != query {
			want = append(want, Scored{Index: i, Score: vectors[query].Cosine(vectors[i])})
		}
	}
	sort.Slice(want, func(i, j int) bool { return Better(want[i], want[j]) })

	for _, workers := range []int{1, 2, 4, 8} {
		got, err := NewEngine(workers).TopK(context.Background(), snap, query, 25)
		require.NoError(t, err)
		assert.Equal(t, want[:25], got, "workers=%d", workers)
	}
}

func TestTopKCancelled(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(1).TopK(ctx, snap, 0, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerge(t *testing.T) {
	parts := [][]Scored{
		{{Index: 5, Score: 0.5}, {Index: 1, Score: 0.9}},
		{{Index: 2, Score: 0.9}, {Index: 0, Score: 0.1}},
		nil,
	}
	got := Merge(parts, 3)
	assert.Equal(t, []Scored{{1, 0.9}, {2, 0.9}, {5, 0.5}}, got)
}

func assertOrdered(t *testing.T, got []Scored) {
	t.Helper()
	for i := 1; i < len(got); i++ {
		assert.True(t, Better(got[i-1], got[i]), "position %d out of order", i)
	}
}

func indices(s []Scored) []int {
	out := make([]int, len(s))
	for i, x := range s {
		out[i] = x.Index
	}
	return out
}
