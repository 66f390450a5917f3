package artifact

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows(t *testing.T) (*Vocabulary, []Row) {
	t.Helper()
	vocab := NewVocabulary()
	rows := []Row{
		BagOfTerms(vocab, TagTerms([]string{"Lana Wachowski"}, []string{"Action", "Sci-Fi"})),
		BagOfTerms(vocab, TagTerms([]string{"Christopher Nolan"}, []string{"Sci-Fi"})),
		{},
	}
	return vocab, rows
}

func TestTagTerms(t *testing.T) {
	got := TagTerms([]string{"Christopher Nolan", " "}, []string{"Drama"})
	assert.Equal(t, []string{"christopher_nolan", "drama"}, got)
}

func TestBagOfTermsSortedCounts(t *testing.T) {
	vocab := NewVocabulary()
	vocab.ID("zeta")
	row := BagOfTerms(vocab, []string{"drama", "zeta", "drama"})
	assert.Equal(t, []int{0, 1}, row.Terms)
	assert.Equal(t, []float64{1, 2}, row.Weights)
}

func TestWriteReadRoundTrip(t *testing.T) {
	vocab, rows := sampleRows(t)
	path := filepath.Join(t.TempDir(), "models", "tfidf.mvec")
	require.NoError(t, NewWriter(vocab.Size()).WriteFile(path, rows))

	header, got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), header.RowCount)
	assert.Equal(t, uint32(vocab.Size()), header.TermCount)
	require.Len(t, got, 3)
	assert.Equal(t, rows[0], got[0])
	assert.Equal(t, rows[1], got[1])
	assert.Empty(t, got[2].Terms)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriterRejectsBadRows(t *testing.T) {
	w := NewWriter(3)
	var buf bytes.Buffer
	assert.Error(t, w.Write(&buf, []Row{{Terms: []int{1, 0}, Weights: []float64{1, 1}}}))
	assert.Error(t, w.Write(&buf, []Row{{Terms: []int{5}, Weights: []float64{1}}}))
	assert.Error(t, w.Write(&buf, []Row{{Terms: []int{1}, Weights: []float64{-1}}}))
	assert.Error(t, w.Write(&buf, []Row{{Terms: []int{1}}}))
}

func encode(t *testing.T) []byte {
	t.Helper()
	vocab, rows := sampleRows(t)
	var buf bytes.Buffer
	require.NoError(t, NewWriter(vocab.Size()).Write(&buf, rows))
	return buf.Bytes()
}

func TestDecodeDetectsCorruption(t *testing.T) {
	t.Run("truncated", func(t *testing.T) {
		data := encode(t)
		_, _, err := Decode(data[:HeaderSize])
		assert.Error(t, err)
	})
	t.Run("bad magic", func(t *testing.T) {
		data := encode(t)
		binary.LittleEndian.PutUint32(data[0:4], 0xdeadbeef)
		_, _, err := Decode(data)
		assert.ErrorContains(t, err, "magic")
	})
	t.Run("flipped row byte", func(t *testing.T) {
		data := encode(t)
		data[HeaderSize+2] ^= 0xff
		_, _, err := Decode(data)
		assert.ErrorContains(t, err, "checksum")
	})
	t.Run("row count mismatch", func(t *testing.T) {
		data := encode(t)
		binary.LittleEndian.PutUint32(data[8:12], 7)
		_, _, err := Decode(data)
		assert.Error(t, err)
	})
	t.Run("trailing garbage", func(t *testing.T) {
		data := append(encode(t), 0)
		_, _, err := Decode(data)
		assert.Error(t, err)
	})
}

// withTable frames rowsSection with a hand-written offset table and valid
// checksums.
func withTable(t *testing.T, rowsSection []byte, table []TableEntry) []byte {
	t.Helper()
	tableData, err := json.Marshal(table)
	require.NoError(t, err)
	header, footer := frame(rowsSection, tableData, len(table), 4)
	return bytes.Join([][]byte{header, rowsSection, tableData, footer}, nil)
}

func TestDecodeRejectsOutOfBoundsTable(t *testing.T) {
	rowsSection := []byte(`{"t":[1],"w":[1]}`)
	size := int64(len(rowsSection))

	_, rows, err := Decode(withTable(t, rowsSection, []TableEntry{{Offset: 0, Len: int(size)}}))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []int{1}, rows[0].Terms)

	tests := []struct {
		name  string
		entry TableEntry
	}{
		{"offset overflows", TableEntry{Offset: math.MaxInt64 - 2, Len: 10}},
		{"offset past end", TableEntry{Offset: size + 1, Len: 0}},
		{"length past end", TableEntry{Offset: 1, Len: int(size)}},
		{"negative offset", TableEntry{Offset: -1, Len: 2}},
		{"negative length", TableEntry{Offset: 0, Len: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				_, _, err = Decode(withTable(t, rowsSection, []TableEntry{tt.entry}))
			})
			assert.ErrorContains(t, err, "out of bounds")
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "absent.mvec"))
	assert.Error(t, err)
}
