package artifact

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Writer serialises rows into .mvec artifacts.
type Writer struct {
	termCount int
}

// NewWriter creates a Writer for a vocabulary of termCount terms.
func NewWriter(termCount int) *Writer {
	return &Writer{termCount: termCount}
}

// WriteFile atomically creates path. It writes to a .tmp file first and
// renames on success.
func (w *Writer) WriteFile(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	defer f.Close()
	if err := w.Write(f, rows); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing artifact file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming artifact file: %w", err)
	}
	return nil
}

// Write encodes rows to out.
func (w *Writer) Write(out io.Writer, rows []Row) error {
	for i, row := range rows {
		if err := validateRow(row, w.termCount); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	var rowsSection []byte
	table := make([]TableEntry, 0, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshaling row %d: %w", i, err)
		}
		table = append(table, TableEntry{Offset: int64(len(rowsSection)), Len: len(data)})
		rowsSection = append(rowsSection, data...)
	}
	tableData, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshaling offset table: %w", err)
	}

	header, footer := frame(rowsSection, tableData, len(rows), w.termCount)
	for _, part := range [][]byte{header, rowsSection, tableData, footer} {
		if _, err := out.Write(part); err != nil {
			return fmt.Errorf("writing artifact: %w", err)
		}
	}
	return nil
}

// frame builds the header and footer enclosing rowsSection and tableData.
func frame(rowsSection, tableData []byte, rowCount, termCount int) (header, footer []byte) {
	rowsOffset := int64(HeaderSize)
	tableOffset := rowsOffset + int64(len(rowsSection))

	header = make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(rowCount))
	binary.LittleEndian.PutUint32(header[12:16], uint32(termCount))
	binary.LittleEndian.PutUint64(header[16:24], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(header[24:32], uint64(rowsOffset))
	binary.LittleEndian.PutUint64(header[32:40], uint64(len(rowsSection)))
	binary.LittleEndian.PutUint64(header[40:48], uint64(tableOffset))
	binary.LittleEndian.PutUint64(header[48:56], uint64(len(tableData)))

	footer = make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(rowsSection))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(tableData))
	binary.LittleEndian.PutUint32(footer[8:12], uint32(rowCount))
	binary.LittleEndian.PutUint64(footer[16:24], uint64(tableOffset))
	binary.LittleEndian.PutUint64(footer[24:32], uint64(len(tableData)))

	return header, footer
}

func validateRow(row Row, termCount int) error {
	if len(row.Terms) != len(row.Weights) {
		return fmt.Errorf("%d terms but %d weights", len(row.Terms), len(row.Weights))
	}
	for i, t := range row.Terms {
		if t < 0 || t >= termCount {
			return fmt.Errorf("term %d outside vocabulary of %d", t, termCount)
		}
		if i > 0 && t <= row.Terms[i-1] {
			return fmt.Errorf("terms not strictly ascending at position %d", i)
		}
		if w := row.Weights[i]; w < 0 || w != w {
			return fmt.Errorf("invalid weight %v for term %d", w, t)
		}
	}
	return nil
}
