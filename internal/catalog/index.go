package catalog

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/normalizer"
)

// TitleIndex maps titles to catalog rows. The normalized table keys on
// normalizer.Normalize; the exact table keys on lower-cased, trimmed
// titles. Both are built in catalog order and the last row wins.
type TitleIndex struct {
	normalized map[string]int
	exact      map[string]int
}

// ExactKey is the key used by the exact lookup table.
func ExactKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// NewTitleIndex builds both tables from records in catalog order.
func NewTitleIndex(records []MovieRecord) *TitleIndex {
	idx := &TitleIndex{
		normalized: make(map[string]int, len(records)),
		exact:      make(map[string]int, len(records)),
	}
	for i, r := range records {
		idx.normalized[normalizer.Normalize(r.Title)] = i
		idx.exact[ExactKey(r.Title)] = i
	}
	return idx
}

// Lookup resolves title through the normalized table.
func (t *TitleIndex) Lookup(title string) (int, bool) {
	i, ok := t.normalized[normalizer.Normalize(title)]
	return i, ok
}

// LookupExact resolves title through the exact table.
func (t *TitleIndex) LookupExact(title string) (int, bool) {
	i, ok := t.exact[ExactKey(title)]
	return i, ok
}

// Len returns the number of distinct normalized titles.
func (t *TitleIndex) Len() int {
	return len(t.normalized)
}
