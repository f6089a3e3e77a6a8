package render

import (
	"fmt"
	"math"

	"github.com/roach88/eigenview/internal/canonical"
	"github.com/roach88/eigenview/internal/layout"
	"github.com/roach88/eigenview/internal/typedesc"
)

// Cell is one rendered scalar.
type Cell struct {
	Content string `json:"content"`
}

// Row is one logical row of cells.
type Row struct {
	Columns []Cell `json:"columns"`
}

// Grid is the structured document returned for dense containers.
type Grid struct {
	Rows []Row `json:"rows"`
}

// Dims returns the row and column counts.
func (g *Grid) Dims() (rows, cols int) {
	if len(g.Rows) == 0 {
		return 0, 0
	}
	return len(g.Rows), len(g.Rows[0].Columns)
}

// maxPrealloc bounds the map size hint so a huge declared shape cannot
// allocate before any cell has been read.
const maxPrealloc = 1 << 16

// Collect drains it into a rows x cols grid.
//
// Entries are keyed by logical (row, col) first, so the grid is emitted in
// ascending index order whatever order storage was walked in. Every cell must
// be covered exactly once. A grid with no cells has no rows.
func Collect(it layout.Iterator, rows, cols int) (*Grid, error) {
	if rows < 0 || cols < 0 || (cols > 0 && rows > math.MaxInt/cols) {
		return nil, &typedesc.Error{
			Code:    typedesc.ErrCodeInvalidDimension,
			Message: fmt.Sprintf("grid of %d x %d cells", rows, cols),
		}
	}
	cells := rows * cols

	values := make(map[cellKey]float64, min(cells, maxPrealloc))
	for it.Next() {
		e := it.Entry()
		values[cellKey{e.Row, e.Col}] = e.Value
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	if cells == 0 {
		return &Grid{Rows: []Row{}}, nil
	}
	if len(values) < cells {
		r, c := firstMissing(values, rows, cols)
		return nil, &typedesc.Error{
			Code:    typedesc.ErrCodeIncompleteGrid,
			Message: fmt.Sprintf("no entry for cell [%d,%d] of %dx%d grid", r, c, rows, cols),
		}
	}

	g := &Grid{Rows: make([]Row, rows)}
	for r := 0; r < rows; r++ {
		g.Rows[r].Columns = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			v, ok := values[cellKey{r, c}]
			if !ok {
				return nil, &typedesc.Error{
					Code:    typedesc.ErrCodeIncompleteGrid,
					Message: fmt.Sprintf("no entry for cell [%d,%d] of %dx%d grid", r, c, rows, cols),
				}
			}
			g.Rows[r].Columns[c] = Cell{Content: FormatScalar(v)}
		}
	}
	return g, nil
}

type cellKey struct{ row, col int }

// firstMissing returns the first cell in row order with no entry. It stops
// after at most len(values)+1 lookups.
func firstMissing(values map[cellKey]float64, rows, cols int) (row, col int) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if _, ok := values[cellKey{r, c}]; !ok {
				return r, c
			}
		}
	}
	return rows, cols
}

// Document returns the grid as a generic JSON-shaped value:
//
//	{"kind": {"grid": true}, "rows": [{"columns": [{"content": "1.0"}]}]}
func (g *Grid) Document() map[string]any {
	rows := make([]any, len(g.Rows))
	for i, r := range g.Rows {
		cols := make([]any, len(r.Columns))
		for j, c := range r.Columns {
			cols[j] = map[string]any{"content": c.Content}
		}
		rows[i] = map[string]any{"columns": cols}
	}
	return map[string]any{
		"kind": map[string]any{"grid": true},
		"rows": rows,
	}
}

// JSON serializes the grid document as canonical JSON.
func (g *Grid) JSON() (string, error) {
	b, err := canonical.Marshal(g.Document())
	if err != nil {
		return "", fmt.Errorf("marshal grid: %w", err)
	}
	return string(b), nil
}
