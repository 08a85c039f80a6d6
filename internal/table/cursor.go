package table

import "github.com/pkg/errors"

// Cursor positions a table traversal at a row number, resolving to a byte
// range inside a page buffer on demand.
type Cursor struct {
	table      *Table
	RowNum     uint32
	EndOfTable bool
}

// Start returns a cursor positioned at the first row of t.
func (t *Table) Start() *Cursor {
	return &Cursor{table: t, RowNum: 0, EndOfTable: t.NumRows == 0}
}

// End returns a cursor positioned one past the last row of t — the
// destination slot for the next insert.
func (t *Table) End() *Cursor {
	return &Cursor{table: t, RowNum: t.NumRows, EndOfTable: true}
}

// CursorAt returns a cursor positioned at an arbitrary row number, which
// may equal NumRows (the append position).
func (t *Table) CursorAt(rowNum uint32) (*Cursor, error) {
	if rowNum > t.NumRows {
		return nil, errors.Errorf("table: row %d beyond NumRows %d", rowNum, t.NumRows)
	}
	return &Cursor{table: t, RowNum: rowNum, EndOfTable: rowNum >= t.NumRows}, nil
}

// Value resolves the cursor's current position to a live slice of the
// page buffer holding that row. Mutations through the returned slice are
// visible to later reads of the same row until the page is flushed.
func (c *Cursor) Value() ([]byte, error) {
	rowsPerPage := c.table.Layout.RowsPerPage
	rowSize := c.table.Layout.RowSize

	pageNum := c.RowNum / rowsPerPage
	page, err := c.table.Pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	offset := (c.RowNum % rowsPerPage) * rowSize
	return page[offset : offset+rowSize], nil
}

// Advance moves the cursor to the next row, setting EndOfTable once it
// reaches the table's current row count.
func (c *Cursor) Advance() {
	c.RowNum++
	if c.RowNum >= c.table.NumRows {
		c.EndOfTable = true
	}
}
