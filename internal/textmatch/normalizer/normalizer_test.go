package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "matrix"},
		{"  THE   Matrix  ", "matrix"},
		{"Star Wars: Episode IV - A New Hope", "star wars episode iv a new hope"},
		{"An American Tail", "american tail"},
		{"A Beautiful Mind", "beautiful mind"},
		{"Theodore Rex", "theodore rex"},
		{"Anatomy of a Murder", "anatomy of a murder"},
		{"Amélie", "amélie"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
		{"The", "the"},
		{"WALL·E", "wall e"},
		{"Se7en", "se7en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Matrix",
		"the the matrix",
		"The. The Film",
		"the.matrix",
		"An a the Film",
		"  ...A   ",
		"Mission: Impossible - Ghost Protocol",
		"\t\nThe\tGodfather\n",
		"L'Avventura",
		"12 Angry Men",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeOutputShape(t *testing.T) {
	for _, in := range []string{"  Hello,   World!  ", "a\t\tb", "x--y"} {
		out := Normalize(in)
		assert.NotContains(t, out, "  ")
		assert.Equal(t, out, trimmed(out))
	}
}

func trimmed(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
