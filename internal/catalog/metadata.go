package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Metadata CSV column names, matched case-insensitively.
const (
	colID            = "tconst"
	colTitle         = "primarytitle"
	colYear          = "startyear"
	colRank          = "rank"
	colRating        = "averagerating"
	colVotes         = "numvotes"
	colRuntime       = "runtimeminutes"
	colDirectors     = "directors"
	colWriters       = "writers"
	colGenres        = "genres"
	colIMDbLink      = "imdblink"
	colTitleIMDbLink = "title_imdb_link"
)

// ReadMetadataFile parses the metadata CSV at path.
func ReadMetadataFile(path string) ([]MovieRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata: %w", err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

// ReadMetadata parses a metadata CSV with a header row. Only the
// primaryTitle column is required; unknown columns are ignored.
func ReadMetadata(r io.Reader) ([]MovieRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols[colTitle]; !ok {
		return nil, errors.New("metadata header has no primaryTitle column")
	}

	var records []MovieRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata line %d: %w", line, err)
		}
		rec, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		rec.Index = len(records)
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(cols map[string]int, row []string) (MovieRecord, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		v := strings.TrimSpace(row[i])
		if isMissing(v) {
			return ""
		}
		return v
	}
	rec := MovieRecord{
		ID:            cell(colID),
		Title:         strings.TrimSpace(rowValue(cols, row, colTitle)),
		Directors:     splitTags(cell(colDirectors)),
		Writers:       splitTags(cell(colWriters)),
		Genres:        splitTags(cell(colGenres)),
		IMDbLink:      cell(colIMDbLink),
		TitleIMDbLink: cell(colTitleIMDbLink),
	}
	var err error
	if rec.Year, err = optionalInt(cell(colYear)); err != nil {
		return rec, fmt.Errorf("startYear: %w", err)
	}
	if rec.Rank, err = optionalInt(cell(colRank)); err != nil {
		return rec, fmt.Errorf("rank: %w", err)
	}
	if rec.Votes, err = optionalInt(cell(colVotes)); err != nil {
		return rec, fmt.Errorf("numVotes: %w", err)
	}
	if rec.RuntimeMinutes, err = optionalInt(cell(colRuntime)); err != nil {
		return rec, fmt.Errorf("runtimeMinutes: %w", err)
	}
	if rec.Rating, err = optionalFloat(cell(colRating)); err != nil {
		return rec, fmt.Errorf("averageRating: %w", err)
	}
	return rec, nil
}

// rowValue returns the raw cell so that a title literally spelled "nan"
// survives.
func rowValue(cols map[string]int, row []string, name string) string {
	i := cols[name]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func isMissing(v string) bool {
	return v == "" || v == `\N` || strings.EqualFold(v, "nan")
}

func splitTags(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// optionalInt accepts integral floats such as "1999.0", which pandas
// writes for nullable integer columns.
func optionalInt(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("not an integer: %q", v)
	}
	n := int(f)
	return &n, nil
}

func optionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", v)
	}
	return &f, nil
}
