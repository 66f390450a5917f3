package artifact

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/goccy/go-json"
)

// ReadFile loads and fully verifies an artifact.
func ReadFile(path string) (Header, []Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("reading artifact: %w", err)
	}
	return Decode(data)
}

// Decode verifies the header, offset table and checksums of data and
// returns its rows in artifact order.
func Decode(data []byte) (Header, []Row, error) {
	if len(data) < HeaderSize+FooterSize {
		return Header{}, nil, fmt.Errorf("artifact truncated: %d bytes", len(data))
	}
	h := data[:HeaderSize]
	header := Header{
		Magic:       binary.LittleEndian.Uint32(h[0:4]),
		Version:     binary.LittleEndian.Uint32(h[4:8]),
		RowCount:    binary.LittleEndian.Uint32(h[8:12]),
		TermCount:   binary.LittleEndian.Uint32(h[12:16]),
		CreatedAt:   int64(binary.LittleEndian.Uint64(h[16:24])),
		RowsOffset:  int64(binary.LittleEndian.Uint64(h[24:32])),
		RowsSize:    int64(binary.LittleEndian.Uint64(h[32:40])),
		TableOffset: int64(binary.LittleEndian.Uint64(h[40:48])),
		TableSize:   int64(binary.LittleEndian.Uint64(h[48:56])),
	}
	if header.Magic != MagicBytes {
		return header, nil, fmt.Errorf("invalid artifact: bad magic bytes %x", header.Magic)
	}
	if header.Version != FormatVersion {
		return header, nil, fmt.Errorf("unsupported artifact version %d", header.Version)
	}

	body := int64(len(data) - FooterSize)
	if header.RowsOffset != int64(HeaderSize) ||
		header.RowsSize < 0 ||
		header.TableOffset != header.RowsOffset+header.RowsSize ||
		header.TableSize < 0 ||
		header.TableOffset+header.TableSize != body {
		return header, nil, fmt.Errorf("invalid artifact: section bounds do not match file size %d", len(data))
	}

	rowsSection := data[header.RowsOffset:header.TableOffset]
	tableData := data[header.TableOffset:body]
	f := data[body:]
	if got, want := crc32.ChecksumIEEE(rowsSection), binary.LittleEndian.Uint32(f[0:4]); got != want {
		return header, nil, fmt.Errorf("row section checksum mismatch: got %08x want %08x", got, want)
	}
	if got, want := crc32.ChecksumIEEE(tableData), binary.LittleEndian.Uint32(f[4:8]); got != want {
		return header, nil, fmt.Errorf("offset table checksum mismatch: got %08x want %08x", got, want)
	}
	if binary.LittleEndian.Uint32(f[8:12]) != header.RowCount ||
		int64(binary.LittleEndian.Uint64(f[16:24])) != header.TableOffset ||
		int64(binary.LittleEndian.Uint64(f[24:32])) != header.TableSize {
		return header, nil, fmt.Errorf("footer does not match header")
	}

	var table []TableEntry
	if err := json.Unmarshal(tableData, &table); err != nil {
		return header, nil, fmt.Errorf("parsing offset table: %w", err)
	}
	if len(table) != int(header.RowCount) {
		return header, nil, fmt.Errorf("offset table has %d entries, header says %d rows", len(table), header.RowCount)
	}

	rows := make([]Row, len(table))
	size := int64(len(rowsSection))
	for i, e := range table {
		if e.Offset < 0 || e.Len < 0 || e.Offset > size || int64(e.Len) > size-e.Offset {
			return header, nil, fmt.Errorf("row %d: offset out of bounds", i)
		}
		if err := json.Unmarshal(rowsSection[e.Offset:e.Offset+int64(e.Len)], &rows[i]); err != nil {
			return header, nil, fmt.Errorf("parsing row %d: %w", i, err)
		}
		if err := validateRow(rows[i], int(header.TermCount)); err != nil {
			return header, nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return header, rows, nil
}
