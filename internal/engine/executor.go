package engine

import (
	"bytes"
	"fmt"
	"io"

	"flatdb/internal/column"
	"flatdb/internal/errcode"
	"flatdb/internal/statement"
	"flatdb/internal/table"
)

// Execute runs stmt to completion, writing SELECT projections to out.
// It returns an *errcode.Error for resource exhaustion (TABLE_FULL); any
// other returned error is a fatal I/O or invariant failure the caller
// must treat as unrecoverable, per the three-tier error taxonomy.
func Execute(stmt *statement.Statement, out io.Writer) error {
	switch stmt.Kind {
	case statement.KindInsert:
		return executeInsert(stmt)
	case statement.KindSelect:
		return executeSelect(stmt, out)
	case statement.KindUpdate:
		return executeUpdate(stmt)
	case statement.KindDelete:
		return executeDelete(stmt)
	default:
		return errcode.New(errcode.InternalError, "")
	}
}

func executeInsert(stmt *statement.Statement) error {
	t := stmt.Table
	if t.NumRows == t.Layout.MaxRows {
		return errcode.New(errcode.TableFull, "")
	}

	cur := t.End()
	dst, err := cur.Value()
	if err != nil {
		return err
	}

	table.CopyRow(dst, stmt.Insert.Row)
	t.NumRows++
	return nil
}

func executeSelect(stmt *statement.Statement, out io.Writer) error {
	t := stmt.Table
	projection := stmt.Select.Projection
	if projection == nil {
		projection = t.Layout.Columns
	}

	for cur := t.Start(); !cur.EndOfTable; cur.Advance() {
		row, err := cur.Value()
		if err != nil {
			return err
		}

		if stmt.Select.Where != nil {
			match, err := evaluate(row, stmt.Select.Where)
			if err != nil {
				return err
			}
			if !match {
				continue
			}
		}

		if err := printRow(out, row, projection); err != nil {
			return err
		}
	}

	return nil
}

func printRow(out io.Writer, row []byte, cols []column.Definition) error {
	var b bytes.Buffer
	b.WriteByte('(')
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		v, err := table.FormatValue(row, c)
		if err != nil {
			return err
		}
		b.WriteString(v)
	}
	b.WriteByte(')')
	_, err := fmt.Fprintln(out, b.String())
	return err
}

func executeUpdate(stmt *statement.Statement) error {
	t := stmt.Table
	u := stmt.Update

	for cur := t.Start(); !cur.EndOfTable; cur.Advance() {
		row, err := cur.Value()
		if err != nil {
			return err
		}

		match, err := evaluate(row, &u.Where)
		if err != nil {
			return err
		}
		if !match {
			continue
		}

		copy(table.ColumnSlice(row, u.Target), u.Value)
	}

	return nil
}

func executeDelete(stmt *statement.Statement) error {
	t := stmt.Table
	w := &stmt.Delete.Where

	deleted := uint32(0)
	for cur := t.Start(); !cur.EndOfTable; cur.Advance() {
		row, err := cur.Value()
		if err != nil {
			return err
		}
		match, err := evaluate(row, w)
		if err != nil {
			return err
		}
		if match {
			zeroRow(row)
			deleted++
		}
	}

	if deleted == 0 {
		return nil
	}

	if err := compact(t); err != nil {
		return err
	}
	t.NumRows -= deleted
	return nil
}

func zeroRow(row []byte) {
	for i := range row {
		row[i] = 0
	}
}
