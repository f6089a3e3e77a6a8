package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Text renders the grid as a right-aligned table, one line per row:
//
//	[ 1.0  2.0 ]
//	[ 3.0 ~0.0 ]
//
// Column widths are measured in terminal cells.
func (g *Grid) Text() string {
	if len(g.Rows) == 0 {
		return "[]\n"
	}

	widths := make([]int, 0)
	for _, r := range g.Rows {
		for c, cell := range r.Columns {
			w := runewidth.StringWidth(cell.Content)
			if c >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[c] {
				widths[c] = w
			}
		}
	}

	var b strings.Builder
	for _, r := range g.Rows {
		b.WriteString("[")
		for c, cell := range r.Columns {
			b.WriteString(" ")
			b.WriteString(runewidth.FillLeft(cell.Content, widths[c]))
		}
		b.WriteString(" ]\n")
	}
	return b.String()
}

// Table left-aligns rows of cells into columns separated by two spaces.
// Widths are measured in terminal cells, so names with wide or combining
// characters still line up. The last cell of each row is not padded.
func Table(rows [][]string) string {
	var widths []int
	for _, r := range rows {
		for c, cell := range r {
			w := runewidth.StringWidth(cell)
			if c >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[c] {
				widths[c] = w
			}
		}
	}

	var b strings.Builder
	for _, r := range rows {
		for c, cell := range r {
			if c == len(r)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[c]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
