// Package catalog holds the read-only movie catalog: per-row metadata,
// sparse document vectors and the title lookup tables. A Store loads the
// catalog from its artifacts once per process and hands out an immutable
// Snapshot that may be read concurrently without locking.
package catalog

import "strings"

// MovieRecord is the metadata of one catalog row. Optional numeric fields
// are nil when the source cell was empty.
type MovieRecord struct {
	Index          int      `json:"index"`
	ID             string   `json:"tconst,omitempty"`
	Title          string   `json:"title"`
	Year           *int     `json:"year,omitempty"`
	Rank           *int     `json:"rank,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Votes          *int     `json:"votes,omitempty"`
	RuntimeMinutes *int     `json:"runtime_minutes,omitempty"`
	Directors      []string `json:"directors,omitempty"`
	Writers        []string `json:"writers,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	IMDbLink       string   `json:"imdb_link,omitempty"`
	TitleIMDbLink  string   `json:"title_imdb_link,omitempty"`
}

// HasGenre reports whether the record is tagged with genre, ignoring case.
func (r MovieRecord) HasGenre(genre string) bool {
	for _, g := range r.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}
