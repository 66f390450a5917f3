// Package benchmark measures the hot paths of a recommendation request on
// synthetic catalogs of increasing size.
//
// Run with:
//
//	go test -bench=. -benchmem ./test/benchmark/...
package benchmark

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
)

var (
	genres = []string{"action", "adventure", "comedy", "crime", "drama", "fantasy", "horror", "romance", "sci-fi", "thriller"}
	words  = []string{"night", "city", "dark", "love", "return", "king", "star", "river", "ghost", "summer",
		"shadow", "lost", "empire", "dream", "storm", "last", "silent", "golden", "iron", "winter"}
)

// syntheticCatalog builds n movies whose vectors draw on a vocabulary of
// genre, director and keyword terms, roughly as sparse as real tag bags.
func syntheticCatalog(b *testing.B, n int) *catalog.Snapshot {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	const vocab = 5000

	records := make([]catalog.MovieRecord, n)
	vectors := make([]catalog.DocumentVector, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("The %s %s %d", words[rng.Intn(len(words))], words[rng.Intn(len(words))], i)
		year := 1950 + rng.Intn(75)
		rating := 1 + rng.Float64()*9
		records[i] = catalog.MovieRecord{
			Title:  title,
			Year:   &year,
			Rating: &rating,
			Genres: []string{genres[rng.Intn(len(genres))], genres[rng.Intn(len(genres))]},
		}

		seen := map[int]bool{}
		var terms []int
		var weights []float64
		size := 8 + rng.Intn(16)
		for len(terms) < size {
			t := rng.Intn(vocab)
			if seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}
		sort.Ints(terms)
		for range terms {
			weights = append(weights, 1+float64(rng.Intn(3)))
		}
		v, err := catalog.NewDocumentVector(terms, weights)
		if err != nil {
			b.Fatal(err)
		}
		vectors[i] = v
	}
	snap, err := catalog.NewSnapshot(records, vectors)
	if err != nil {
		b.Fatal(err)
	}
	return snap
}
