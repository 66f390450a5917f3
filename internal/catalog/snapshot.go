package catalog

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/normalizer"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/textmatch/trigram"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

// Snapshot is an immutable, fully built catalog.
type Snapshot struct {
	records []MovieRecord
	vectors []DocumentVector
	titles  *TitleIndex
	// Trigram sets of each title, raw and normalized, for fuzzy matching.
	rawGrams  []trigram.Set
	normGrams []trigram.Set
}

// NewSnapshot assembles a snapshot from parallel records and vectors. Each
// record's Index is set to its position.
func NewSnapshot(records []MovieRecord, vectors []DocumentVector) (*Snapshot, error) {
	if len(records) != len(vectors) {
		return nil, apperrors.DataUnavailable(
			fmt.Errorf("metadata has %d rows but vector artifact has %d", len(records), len(vectors)))
	}
	recs := make([]MovieRecord, len(records))
	copy(recs, records)
	s := &Snapshot{
		records:   recs,
		vectors:   append([]DocumentVector(nil), vectors...),
		rawGrams:  make([]trigram.Set, len(recs)),
		normGrams: make([]trigram.Set, len(recs)),
	}
	for i := range recs {
		recs[i].Index = i
		s.rawGrams[i] = trigram.Extract(recs[i].Title)
		s.normGrams[i] = trigram.Extract(normalizer.Normalize(recs[i].Title))
	}
	s.titles = NewTitleIndex(recs)
	return s, nil
}

// Size returns the number of rows.
func (s *Snapshot) Size() int {
	return len(s.records)
}

// Record returns the metadata of row i.
func (s *Snapshot) Record(i int) (MovieRecord, error) {
	if i < 0 || i >= len(s.records) {
		return MovieRecord{}, apperrors.IndexOutOfRange(i, len(s.records))
	}
	return s.records[i], nil
}

// Vector returns the document vector of row i.
func (s *Snapshot) Vector(i int) (DocumentVector, error) {
	if i < 0 || i >= len(s.vectors) {
		return DocumentVector{}, apperrors.IndexOutOfRange(i, len(s.vectors))
	}
	return s.vectors[i], nil
}

// Titles returns the title lookup tables.
func (s *Snapshot) Titles() *TitleIndex {
	return s.titles
}

// TitleGrams returns the precomputed trigram sets of row i's title, raw
// and normalized. Callers must not modify them.
func (s *Snapshot) TitleGrams(i int) (raw, normalized trigram.Set) {
	return s.rawGrams[i], s.normGrams[i]
}

// ByGenre returns up to limit records tagged with genre, in catalog order.
func (s *Snapshot) ByGenre(genre string, limit int) []MovieRecord {
	var out []MovieRecord
	for _, r := range s.records {
		if limit > 0 && len(out) >= limit {
			break
		}
		if r.HasGenre(genre) {
			out = append(out, r)
		}
	}
	return out
}
