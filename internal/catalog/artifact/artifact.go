// Package artifact reads and writes the binary vector artifact (.mvec) that
// holds one sparse weighted-term vector per catalog row.
//
// Layout: a 64-byte little-endian header, the JSON-encoded rows back to
// back, a JSON offset table addressing each row, and a 32-byte footer
// carrying CRC32 checksums of the row section and the offset table.
package artifact

import (
	"sort"
	"strings"
)

const (
	MagicBytes    uint32 = 0x4345564D // "MVEC"
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32
)

// Header is the fixed-size header at the start of every artifact.
type Header struct {
	Magic       uint32
	Version     uint32
	RowCount    uint32
	TermCount   uint32
	CreatedAt   int64
	RowsOffset  int64
	RowsSize    int64
	TableOffset int64
	TableSize   int64
}

// Row is one sparse vector: parallel term indices and weights.
type Row struct {
	Terms   []int     `json:"t"`
	Weights []float64 `json:"w"`
}

// TableEntry locates a row relative to the start of the row section.
type TableEntry struct {
	Offset int64 `json:"o"`
	Len    int   `json:"l"`
}

// Vocabulary assigns term indices in first-seen order.
type Vocabulary struct {
	ids map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{ids: make(map[string]int)}
}

// ID returns the index of term, allocating one if needed.
func (v *Vocabulary) ID(term string) int {
	if id, ok := v.ids[term]; ok {
		return id
	}
	id := len(v.ids)
	v.ids[term] = id
	return id
}

func (v *Vocabulary) Size() int {
	return len(v.ids)
}

// TagTerms turns credit and genre tags into vocabulary terms: each tag is
// lower-cased and its spaces become underscores, so "Christopher Nolan"
// is a single term.
func TagTerms(tags ...[]string) []string {
	var terms []string
	for _, group := range tags {
		for _, tag := range group {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			terms = append(terms, strings.ReplaceAll(strings.ToLower(tag), " ", "_"))
		}
	}
	return terms
}

// BagOfTerms builds a row with weight equal to the term count.
func BagOfTerms(vocab *Vocabulary, terms []string) Row {
	counts := make(map[int]float64, len(terms))
	for _, t := range terms {
		counts[vocab.ID(t)]++
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	row := Row{Terms: ids, Weights: make([]float64, len(ids))}
	for i, id := range ids {
		row.Weights[i] = counts[id]
	}
	return row
}
