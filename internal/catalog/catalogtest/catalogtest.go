// Package catalogtest builds small catalogs for tests.
package catalogtest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog/artifact"
)

// Movie describes one fixture row. Its vector is the bag of its director,
// writer and genre tags.
type Movie struct {
	Title     string
	Year      int
	Rating    float64
	Votes     int
	Directors []string
	Writers   []string
	Genres    []string
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

// Records converts fixtures to catalog records. Zero Year, Rating and
// Votes are left absent.
func Records(movies []Movie) []catalog.MovieRecord {
	records := make([]catalog.MovieRecord, len(movies))
	for i, m := range movies {
		r := catalog.MovieRecord{
			Index:     i,
			ID:        "tt" + strconv.Itoa(1000000+i),
			Title:     m.Title,
			Directors: m.Directors,
			Writers:   m.Writers,
			Genres:    m.Genres,
		}
		if m.Year != 0 {
			r.Year = IntPtr(m.Year)
		}
		if m.Rating != 0 {
			r.Rating = FloatPtr(m.Rating)
		}
		if m.Votes != 0 {
			r.Votes = IntPtr(m.Votes)
		}
		records[i] = r
	}
	return records
}

// Rows builds the sparse vectors of movies over a shared vocabulary.
func Rows(movies []Movie) (*artifact.Vocabulary, []artifact.Row) {
	vocab := artifact.NewVocabulary()
	rows := make([]artifact.Row, len(movies))
	for i, m := range movies {
		rows[i] = artifact.BagOfTerms(vocab, artifact.TagTerms(m.Directors, m.Writers, m.Genres))
	}
	return vocab, rows
}

// Snapshot builds an in-memory snapshot.
func Snapshot(t testing.TB, movies []Movie) *catalog.Snapshot {
	t.Helper()
	_, rows := Rows(movies)
	vectors := make([]catalog.DocumentVector, len(rows))
	for i, row := range rows {
		v, err := catalog.NewDocumentVector(row.Terms, row.Weights)
		if err != nil {
			t.Fatalf("building vector %d: %v", i, err)
		}
		vectors[i] = v
	}
	snap, err := catalog.NewSnapshot(Records(movies), vectors)
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}
	return snap
}

// WriteFiles writes the vector artifact and metadata CSV into dir and
// returns their paths.
func WriteFiles(t testing.TB, dir string, movies []Movie) (vectorPath, metadataPath string) {
	t.Helper()
	vocab, rows := Rows(movies)
	vectorPath = filepath.Join(dir, "tfidf_matrix.mvec")
	if err := artifact.NewWriter(vocab.Size()).WriteFile(vectorPath, rows); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	metadataPath = filepath.Join(dir, "movies_meta.csv")
	f, err := os.Create(metadataPath)
	if err != nil {
		t.Fatalf("creating metadata: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"tconst", "primaryTitle", "startYear", "averageRating", "numVotes", "directors", "writers", "genres"})
	for _, r := range Records(movies) {
		_ = w.Write([]string{
			r.ID,
			r.Title,
			optional(r.Year),
			optionalFloat(r.Rating),
			optional(r.Votes),
			strings.Join(r.Directors, ","),
			strings.Join(r.Writers, ","),
			strings.Join(r.Genres, ","),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("writing metadata: %v", err)
	}
	return vectorPath, metadataPath
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return `\N`
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Classics is a small catalog shared by tests. "Matrix Reloaded" shares
// every tag with "The Matrix"; "Amelie" shares none.
func Classics() []Movie {
	return []Movie{
		{Title: "The Matrix", Year: 1999, Rating: 8.7, Votes: 2000000,
			Directors: []string{"Lana Wachowski", "Lilly Wachowski"}, Genres: []string{"Action", "Sci-Fi"}},
		{Title: "The Matrix Reloaded", Year: 2003, Rating: 7.2, Votes: 600000,
			Directors: []string{"Lana Wachowski", "Lilly Wachowski"}, Genres: []string{"Action", "Sci-Fi"}},
		{Title: "Inception", Year: 2010, Rating: 8.8, Votes: 2500000,
			Directors: []string{"Christopher Nolan"}, Genres: []string{"Action", "Sci-Fi", "Thriller"}},
		{Title: "Interstellar", Year: 2014, Rating: 8.7, Votes: 2100000,
			Directors: []string{"Christopher Nolan"}, Genres: []string{"Adventure", "Drama", "Sci-Fi"}},
		{Title: "The Dark Knight", Year: 2008, Rating: 9.0, Votes: 2800000,
			Directors: []string{"Christopher Nolan"}, Genres: []string{"Action", "Crime", "Drama"}},
		{Title: "Amelie", Year: 2001, Rating: 8.3, Votes: 780000,
			Directors: []string{"Jean-Pierre Jeunet"}, Genres: []string{"Comedy", "Romance"}},
		{Title: "Speed Racer", Year: 2008,
			Directors: []string{"Lana Wachowski", "Lilly Wachowski"}, Genres: []string{"Action", "Family"}},
	}
}
