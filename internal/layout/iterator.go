package layout

import "fmt"

// Entry is one logical cell produced by an iterator.
type Entry struct {
	// Label is the child name shown by the host: "[i]", "[row,col]" or "[x]".
	Label string

	// Row and Col are the logical 0-based indices. For vectors the
	// degenerate axis is 0.
	Row int
	Col int

	// Value is the scalar widened to float64.
	Value float64
}

// Iterator yields entries lazily. It is finite and cannot be restarted.
//
// Usage follows bufio.Scanner:
//
//	for it.Next() {
//		e := it.Entry()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator interface {
	Next() bool
	Entry() Entry
	Err() error
}

// Collect drains it into a slice.
func Collect(it Iterator) ([]Entry, error) {
	var out []Entry
	for it.Next() {
		out = append(out, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Empty returns an iterator with no entries.
func Empty() Iterator { return emptyIterator{} }

type emptyIterator struct{}

func (emptyIterator) Next() bool   { return false }
func (emptyIterator) Entry() Entry { return Entry{} }
func (emptyIterator) Err() error   { return nil }

// cursor walks (row, col) pairs in storage order.
//
// Column-major advances the row fastest and terminates when the column
// reaches cols; row-major advances the column fastest and terminates when the
// row reaches rows.
type cursor struct {
	rows, cols int
	row, col   int
	rowMajor   bool
}

func newCursor(rows, cols int, rowMajor bool) *cursor {
	return &cursor{rows: rows, cols: cols, rowMajor: rowMajor}
}

// next returns the current position and advances.
func (c *cursor) next() (row, col int, ok bool) {
	if c.rows <= 0 || c.cols <= 0 {
		return 0, 0, false
	}
	row, col = c.row, c.col
	if !c.rowMajor {
		if c.col >= c.cols {
			return 0, 0, false
		}
		c.row++
		if c.row >= c.rows {
			c.row = 0
			c.col++
		}
	} else {
		if c.row >= c.rows {
			return 0, 0, false
		}
		c.col++
		if c.col >= c.cols {
			c.col = 0
			c.row++
		}
	}
	return row, col, true
}

// Label formats the child name of a cell. Vectors (either axis of size 1)
// use the index along the non-degenerate axis.
func Label(rows, cols, row, col int) string {
	switch {
	case cols == 1:
		return fmt.Sprintf("[%d]", row)
	case rows == 1:
		return fmt.Sprintf("[%d]", col)
	default:
		return fmt.Sprintf("[%d,%d]", row, col)
	}
}
