package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `tconst,primaryTitle,startYear,rank,averageRating,numVotes,runtimeMinutes,directors,writers,genres,IMDbLink,Title_IMDb_Link
tt0133093,The Matrix,1999,16,8.7,2000000,136,"Lana Wachowski,Lilly Wachowski","Lilly Wachowski,Lana Wachowski","Action,Sci-Fi",https://www.imdb.com/title/tt0133093/,"<a href=""x"">The Matrix</a>"
tt0000001,Carmencita,\N,,nan,1900.0,,,,Documentary,,
`

func TestReadMetadata(t *testing.T) {
	records, err := ReadMetadata(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	m := records[0]
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "tt0133093", m.ID)
	assert.Equal(t, "The Matrix", m.Title)
	require.NotNil(t, m.Year)
	assert.Equal(t, 1999, *m.Year)
	require.NotNil(t, m.Rank)
	assert.Equal(t, 16, *m.Rank)
	require.NotNil(t, m.Rating)
	assert.InDelta(t, 8.7, *m.Rating, 1e-9)
	require.NotNil(t, m.RuntimeMinutes)
	assert.Equal(t, 136, *m.RuntimeMinutes)
	assert.Equal(t, []string{"Lana Wachowski", "Lilly Wachowski"}, m.Directors)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, m.Genres)
	assert.Equal(t, "https://www.imdb.com/title/tt0133093/", m.IMDbLink)
	assert.Equal(t, `<a href="x">The Matrix</a>`, m.TitleIMDbLink)

	c := records[1]
	assert.Equal(t, 1, c.Index)
	assert.Nil(t, c.Year)
	assert.Nil(t, c.Rank)
	assert.Nil(t, c.Rating)
	assert.Nil(t, c.RuntimeMinutes)
	require.NotNil(t, c.Votes)
	assert.Equal(t, 1900, *c.Votes)
	assert.Empty(t, c.Directors)
	assert.Equal(t, []string{"Documentary"}, c.Genres)
}

func TestReadMetadataHeaderCaseInsensitive(t *testing.T) {
	records, err := ReadMetadata(strings.NewReader("PRIMARYTITLE,STARTYEAR\nAlien,1979\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alien", records[0].Title)
	assert.Equal(t, 1979, *records[0].Year)
}

func TestReadMetadataErrors(t *testing.T) {
	_, err := ReadMetadata(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadMetadata(strings.NewReader("tconst,startYear\ntt1,1999\n"))
	assert.ErrorContains(t, err, "primaryTitle")

	_, err = ReadMetadata(strings.NewReader("primaryTitle,startYear\nAlien,soon\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadMetadata(strings.NewReader("primaryTitle,numVotes\nAlien,12.5\n"))
	assert.Error(t, err)
}
