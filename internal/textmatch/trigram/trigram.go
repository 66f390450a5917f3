// Package trigram implements word-padded trigram similarity with the same
// semantics as PostgreSQL's pg_trgm similarity() function.
package trigram

import (
	"strings"
	"unicode"
)

// Set is the distinct trigrams of a string.
type Set map[string]struct{}

// Extract returns the trigram set of s. Each alphanumeric word is
// lower-cased and padded with two leading spaces and one trailing space
// before being split into three-rune windows.
func Extract(s string) Set {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(Set, len(s)+2*len(words))
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Similarity returns |A∩B| / |A∪B| over the two trigram sets, in [0, 1].
// Two strings without any trigrams score 0.
func Similarity(a, b string) float64 {
	return Compare(Extract(a), Extract(b))
}

// Compare scores two pre-extracted sets.
func Compare(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	common := 0
	for g := range a {
		if _, ok := b[g]; ok {
			common++
		}
	}
	union := len(a) + len(b) - common
	return float64(common) / float64(union)
}
