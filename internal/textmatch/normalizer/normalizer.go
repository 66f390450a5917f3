// Package normalizer canonicalizes movie titles for comparison. It
// lower-cases input, drops a leading English article, replaces punctuation
// with spaces and collapses whitespace.
package normalizer

import (
	"strings"
	"unicode"
)

var articles = []string{"the", "a", "an"}

// Normalize returns the canonical form of title. It never fails and
// Normalize(Normalize(x)) == Normalize(x) for every input.
func Normalize(title string) string {
	out := normalizeOnce(title)
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func normalizeOnce(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = stripArticle(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// stripArticle removes one leading article that is followed by whitespace.
func stripArticle(s string) string {
	for _, a := range articles {
		if !strings.HasPrefix(s, a) {
			continue
		}
		rest := s[len(a):]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if len(trimmed) < len(rest) {
			return trimmed
		}
	}
	return s
}
