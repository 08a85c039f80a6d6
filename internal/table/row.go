package table

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"flatdb/internal/column"
)

// ColumnSlice returns the byte range within row that holds c's value.
func ColumnSlice(row []byte, c column.Definition) []byte {
	return row[c.Offset : c.Offset+c.Size]
}

// WriteInt encodes v as a little-endian 32-bit integer into dst, which
// must be exactly 4 bytes wide.
func WriteInt(dst []byte, v int32) {
	binary.LittleEndian.PutUint32(dst, uint32(v))
}

// ReadInt decodes a little-endian 32-bit integer from src.
func ReadInt(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

// WriteReal encodes v into dst as either a 32-bit or 64-bit IEEE-754
// float, chosen by dst's width.
func WriteReal(dst []byte, v float64) error {
	switch len(dst) {
	case 4:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case 8:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	default:
		return errors.Errorf("table: unsupported REAL width %d", len(dst))
	}
	return nil
}

// ReadReal decodes a REAL value from src, sized the same way WriteReal
// chooses its encoding.
func ReadReal(src []byte) (float64, error) {
	switch len(src) {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(src))), nil
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(src)), nil
	default:
		return 0, errors.Errorf("table: unsupported REAL width %d", len(src))
	}
}

// WriteVarchar copies s into dst, NUL-padding any unused tail. It reports
// an error if s is wider than dst.
func WriteVarchar(dst []byte, s string) error {
	if len(s) > len(dst) {
		return errors.Errorf("table: string of length %d exceeds column width %d", len(s), len(dst))
	}
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// ReadVarchar decodes a VARCHAR value from src, trimming the trailing
// NUL padding WriteVarchar leaves behind.
func ReadVarchar(src []byte) string {
	return strings.TrimRight(string(src), "\x00")
}

// CopyRow copies the RowSize bytes of src into dst.
func CopyRow(dst, src []byte) {
	copy(dst, src)
}

// FormatValue renders the column c's value out of row the way the REPL
// prints it: integers and reals in their canonical decimal form, VARCHAR
// with its padding trimmed.
func FormatValue(row []byte, c column.Definition) (string, error) {
	slice := ColumnSlice(row, c)
	switch c.Type {
	case column.Int:
		return strconv.FormatInt(int64(ReadInt(slice)), 10), nil
	case column.Real:
		v, err := ReadReal(slice)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'f', 6, 64), nil
	case column.Varchar:
		return ReadVarchar(slice), nil
	default:
		return "", errors.Errorf("table: unknown column type %v", c.Type)
	}
}
