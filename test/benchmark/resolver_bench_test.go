package benchmark

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/normalizer"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/resolver"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/trigram"
)

func BenchmarkNormalize(b *testing.B) {
	titles := []struct {
		name  string
		title string
	}{
		{"short", "The Matrix"},
		{"punctuated", "Mission: Impossible - Dead Reckoning Part One"},
		{"nested_articles", "The A An Hitchhiker's Guide"},
	}
	for _, tt := range titles {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = normalizer.Normalize(tt.title)
			}
		})
	}
}

func BenchmarkTrigramSimilarity(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = trigram.Similarity("teh matrix reloaded", "the matrix reloaded")
	}
}

// BenchmarkResolve measures the full trigram scan that backs fuzzy
// resolution and title search.
func BenchmarkResolve(b *testing.B) {
	for _, n := range sizes {
		snap := syntheticCatalog(b, n)
		r := resolver.New(resolver.DefaultThreshold)
		b.Run(fmt.Sprintf("resolve/movies_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r.Resolve(snap, "teh dark knigth")
			}
		})
		b.Run(fmt.Sprintf("search/movies_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r.Search(snap, "dark night", 0.3, 10)
			}
		})
	}
}
