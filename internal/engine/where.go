// Package engine evaluates WHERE predicates against deserialized rows
// and runs the four verbs' scan-based execution, including two-pass
// delete compaction.
package engine

import (
	"bytes"

	"github.com/pkg/errors"

	"flatdb/internal/column"
	"flatdb/internal/statement"
	"flatdb/internal/table"
)

// evaluate reports whether row satisfies w. VARCHAR only defines
// equality and inequality; any other operator on a VARCHAR column is an
// internal error, since the parser is responsible for rejecting it
// before a WhereClause with that shape can exist.
func evaluate(row []byte, w *statement.WhereClause) (bool, error) {
	slice := table.ColumnSlice(row, w.Column)

	switch w.Column.Type {
	case column.Int:
		return compareInt(table.ReadInt(slice), table.ReadInt(w.Literal), w.Op)
	case column.Real:
		left, err := table.ReadReal(slice)
		if err != nil {
			return false, err
		}
		right, err := table.ReadReal(w.Literal)
		if err != nil {
			return false, err
		}
		return compareFloat(left, right, w.Op)
	case column.Varchar:
		left := bytes.TrimRight(slice, "\x00")
		right := bytes.TrimRight(w.Literal, "\x00")
		switch w.Op {
		case statement.OpEq:
			return bytes.Equal(left, right), nil
		case statement.OpNeq:
			return !bytes.Equal(left, right), nil
		default:
			return false, errors.New("engine: ordering operator on VARCHAR column")
		}
	default:
		return false, errors.Errorf("engine: unknown column type %v", w.Column.Type)
	}
}

func compareInt(left, right int32, op statement.Op) (bool, error) {
	switch op {
	case statement.OpEq:
		return left == right, nil
	case statement.OpNeq:
		return left != right, nil
	case statement.OpGt:
		return left > right, nil
	case statement.OpLt:
		return left < right, nil
	case statement.OpGte:
		return left >= right, nil
	case statement.OpLte:
		return left <= right, nil
	default:
		return false, errors.Errorf("engine: unknown operator %v", op)
	}
}

func compareFloat(left, right float64, op statement.Op) (bool, error) {
	switch op {
	case statement.OpEq:
		return left == right, nil
	case statement.OpNeq:
		return left != right, nil
	case statement.OpGt:
		return left > right, nil
	case statement.OpLt:
		return left < right, nil
	case statement.OpGte:
		return left >= right, nil
	case statement.OpLte:
		return left <= right, nil
	default:
		return false, errors.Errorf("engine: unknown operator %v", op)
	}
}
