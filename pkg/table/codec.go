package table

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gopacket/gopacket"

	"github.com/matzehuels/hexroute/pkg/network"
)

// Row sizes of the two encodings, in bytes.
const (
	LoaderRowSize  = 16
	RuntimeRowSize = 12
)

// MaxLoaderRows is the largest table the loader format can describe; index
// and count 0xFFFF are reserved for the terminator.
const MaxLoaderRows = 0xFFFE

// Format selects a table encoding.
type Format string

const (
	FormatLoader  Format = "loader"
	FormatRuntime Format = "runtime"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatLoader, FormatRuntime}

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatLoader, FormatRuntime:
		return f, nil
	}
	return "", fmt.Errorf("table: unknown format %q", s)
}

// Extension returns the file suffix used for the format.
func (f Format) Extension() string {
	if f == FormatRuntime {
		return ".rtab"
	}
	return ".bin"
}

// =============================================================================
// Loader Format
// =============================================================================

// EncodeLoader encodes rows in the loader format. The output always ends with
// an all-ones terminator row, so an empty table is 16 bytes of 0xFF.
func EncodeLoader(rows []Row) ([]byte, error) {
	if len(rows) > MaxLoaderRows {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(rows), MaxLoaderRows)
	}
	buf := gopacket.NewSerializeBuffer()
	for i, r := range rows {
		b, err := buf.AppendBytes(LoaderRowSize)
		if err != nil {
			return nil, err
		}
		putLoaderRow(b, uint16(i), uint16(len(rows)), r)
	}
	b, err := buf.AppendBytes(LoaderRowSize)
	if err != nil {
		return nil, err
	}
	putLoaderRow(b, 0xFFFF, 0xFFFF, Row{Key: 0xFFFFFFFF, Mask: 0xFFFFFFFF, Route: 0xFFFFFFFF})
	return buf.Bytes(), nil
}

func putLoaderRow(b []byte, index, count uint16, r Row) {
	binary.LittleEndian.PutUint16(b[0:2], index)
	binary.LittleEndian.PutUint16(b[2:4], count)
	binary.LittleEndian.PutUint32(b[4:8], r.Route)
	binary.LittleEndian.PutUint32(b[8:12], r.Key)
	binary.LittleEndian.PutUint32(b[12:16], r.Mask)
}

// DecodeLoader parses a loader-format table. It checks row numbering, the row
// count and the terminator.
func DecodeLoader(data []byte) ([]Row, error) {
	if len(data) < LoaderRowSize || len(data)%LoaderRowSize != 0 {
		return nil, fmt.Errorf("%w: loader table of %d bytes", ErrMalformed, len(data))
	}
	n := len(data)/LoaderRowSize - 1
	for _, c := range data[n*LoaderRowSize:] {
		if c != 0xFF {
			return nil, fmt.Errorf("%w: missing terminator row", ErrMalformed)
		}
	}

	rows := make([]Row, n)
	for i := range rows {
		b := data[i*LoaderRowSize : (i+1)*LoaderRowSize]
		index := binary.LittleEndian.Uint16(b[0:2])
		count := binary.LittleEndian.Uint16(b[2:4])
		if int(index) != i || int(count) != n {
			return nil, fmt.Errorf("%w: row %d has index %d and count %d, want %d and %d",
				ErrMalformed, i, index, count, i, n)
		}
		rows[i] = Row{
			Route: binary.LittleEndian.Uint32(b[4:8]),
			Key:   binary.LittleEndian.Uint32(b[8:12]),
			Mask:  binary.LittleEndian.Uint32(b[12:16]),
		}
	}
	return rows, nil
}

// =============================================================================
// Runtime Format
// =============================================================================

// EncodeRuntime encodes rows in the runtime format and returns the row count
// that accompanies the bytes.
func EncodeRuntime(rows []Row) ([]byte, int) {
	buf := gopacket.NewSerializeBuffer()
	for _, r := range rows {
		// The in-memory buffer never fails to grow.
		b, _ := buf.AppendBytes(RuntimeRowSize)
		binary.LittleEndian.PutUint32(b[0:4], r.Key)
		binary.LittleEndian.PutUint32(b[4:8], r.Mask)
		binary.LittleEndian.PutUint32(b[8:12], r.Route)
	}
	return buf.Bytes(), len(rows)
}

// DecodeRuntime parses a runtime-format table.
func DecodeRuntime(data []byte) ([]Row, error) {
	if len(data)%RuntimeRowSize != 0 {
		return nil, fmt.Errorf("%w: runtime table of %d bytes", ErrMalformed, len(data))
	}
	rows := make([]Row, len(data)/RuntimeRowSize)
	for i := range rows {
		b := data[i*RuntimeRowSize : (i+1)*RuntimeRowSize]
		rows[i] = Row{
			Key:   binary.LittleEndian.Uint32(b[0:4]),
			Mask:  binary.LittleEndian.Uint32(b[4:8]),
			Route: binary.LittleEndian.Uint32(b[8:12]),
		}
	}
	return rows, nil
}

// =============================================================================
// Dispatch
// =============================================================================

// Encode encodes rows in format f.
func Encode(f Format, rows []Row) ([]byte, error) {
	switch f {
	case FormatLoader:
		return EncodeLoader(rows)
	case FormatRuntime:
		data, _ := EncodeRuntime(rows)
		return data, nil
	}
	return nil, fmt.Errorf("table: unknown format %q", f)
}

// Decode parses data in format f.
func Decode(f Format, data []byte) ([]Row, error) {
	switch f {
	case FormatLoader:
		return DecodeLoader(data)
	case FormatRuntime:
		return DecodeRuntime(data)
	}
	return nil, fmt.Errorf("table: unknown format %q", f)
}

// Generate builds and encodes the routing table of router in format f.
func Generate(n *network.Network, router network.NodeID, f Format) ([]byte, error) {
	rows, err := Rows(n, router)
	if err != nil {
		return nil, err
	}
	return Encode(f, rows)
}
