package engine

import "flatdb/internal/table"

// compact rescans t from the start, shifting non-zero rows into the
// holes left by zeroed (deleted) rows, preserving the relative order of
// survivors. It does not touch t.NumRows; the caller decrements it by
// the count of rows it zeroed.
//
// Known fragility (documented, not fixed): a live row whose payload
// happens to be all-zero bytes is indistinguishable from a hole. INSERT
// cannot produce such a row in a table with an integer column named
// "id", since it rejects id <= 0; UPDATE does not repeat that check, so
// setting id to 0 on a row whose other columns are all zero can.
func compact(t *table.Table) error {
	holeCursor, err := t.CursorAt(0)
	if err != nil {
		return err
	}
	holeValid := false

	readCursor, err := t.CursorAt(0)
	if err != nil {
		return err
	}

	for readCursor.RowNum < t.NumRows {
		row, err := readCursor.Value()
		if err != nil {
			return err
		}

		if isZero(row) {
			if !holeValid {
				hc, err := t.CursorAt(readCursor.RowNum)
				if err != nil {
					return err
				}
				holeCursor = hc
				holeValid = true
			}
			readCursor.Advance()
			continue
		}

		if holeValid {
			holeSlot, err := holeCursor.Value()
			if err != nil {
				return err
			}
			table.CopyRow(holeSlot, row)
			zeroRow(row)

			hc, err := t.CursorAt(holeCursor.RowNum + 1)
			if err != nil {
				return err
			}
			holeCursor = hc
		}

		readCursor.Advance()
	}

	return nil
}

func isZero(row []byte) bool {
	for _, b := range row {
		if b != 0 {
			return false
		}
	}
	return true
}
