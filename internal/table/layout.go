// Package table computes a table's fixed-width row layout, serves cursor
// based traversal over its backing pager, and implements the binary row
// codec every column type is read and written through.
package table

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"flatdb/internal/column"
	"flatdb/internal/pager"
)

// Layout is the deterministic, schema-derived geometry of a table: where
// each column sits in a row, how wide a row is, and how many rows fit in
// a page and in the whole file.
type Layout struct {
	Columns     []column.Definition
	RowSize     uint32
	RowsPerPage uint32
	MaxRows     uint32
}

// NewLayout assigns each column its offset (the prefix sum of the sizes of
// the columns before it) and derives RowSize, RowsPerPage and MaxRows.
func NewLayout(cols []column.Definition) (*Layout, error) {
	if len(cols) == 0 {
		return nil, errors.New("table: a table needs at least one column")
	}

	laidOut := make([]column.Definition, len(cols))
	var offset uint32
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if seen[c.Name] {
			return nil, errors.Errorf("table: duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		c.Offset = offset
		laidOut[i] = c
		offset += c.Size
	}

	rowSize := offset
	if rowSize == 0 {
		return nil, errors.New("table: row size must be greater than zero")
	}
	if rowSize > pager.PageSize {
		return nil, errors.Errorf("table: row size %d exceeds page size %d", rowSize, pager.PageSize)
	}

	rowsPerPage := pager.PageSize / rowSize

	return &Layout{
		Columns:     laidOut,
		RowSize:     rowSize,
		RowsPerPage: rowsPerPage,
		MaxRows:     rowsPerPage * pager.TableMaxPages,
	}, nil
}

// Column looks up a column definition by name, case-insensitively.
func (l *Layout) Column(name string) (column.Definition, bool) {
	for _, c := range l.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return column.Definition{}, false
}

// Table is a schema-bound, pager-backed collection of fixed-width rows.
type Table struct {
	Name    string
	Layout  *Layout
	Pager   *pager.Pager
	NumRows uint32
}

// Open lays out cols, opens (or creates) the table's backing file under
// dataDir, and infers NumRows from the file's length. The inference is
// exact only when the file respects the fixed row-per-page packing
// invariant, which is the only way this package ever writes one.
func Open(name string, cols []column.Definition, dataDir string) (*Table, error) {
	layout, err := NewLayout(cols)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, name+".table")
	pg, err := pager.Open(path)
	if err != nil {
		return nil, err
	}

	fileLength := pg.FileLength()
	fullPages := uint32(fileLength / pager.PageSize)
	remainder := uint32(fileLength % pager.PageSize)
	numRows := fullPages*layout.RowsPerPage + remainder/layout.RowSize

	return &Table{
		Name:    name,
		Layout:  layout,
		Pager:   pg,
		NumRows: numRows,
	}, nil
}

// Close flushes every page holding a live row and closes the backing file.
// Pages are flushed in full except for the last occupied page, which is
// flushed only up to its last live row.
func (t *Table) Close() error {
	fullPages := t.NumRows / t.Layout.RowsPerPage
	for i := uint32(0); i < fullPages; i++ {
		if !t.Pager.Populated(i) {
			continue
		}
		if err := t.Pager.Flush(i, pager.PageSize); err != nil {
			return err
		}
	}

	if leftover := t.NumRows % t.Layout.RowsPerPage; leftover > 0 {
		pageNum := fullPages
		if t.Pager.Populated(pageNum) {
			if err := t.Pager.Flush(pageNum, int(leftover*t.Layout.RowSize)); err != nil {
				return err
			}
		}
	}

	return t.Pager.Close()
}
