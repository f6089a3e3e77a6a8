package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eigenview/internal/layout"
	"github.com/roach88/eigenview/internal/typedesc"
)

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{0.1, "0.1"},
		{1.0 / 3, "0.3333333333333333"},
		{123456789, "123456789.0"},
		{1e-4, "0.0001"},
		{1e-5, "1e-05"},
		{1.5e20, "1.5e+20"},
		{math.Ldexp(1, -23), "1.1920928955078125e-07"},
		{math.Ldexp(1, -24), "~0.0"},
		{-math.Ldexp(1, -30), "~0.0"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScalar(tt.in))
		})
	}
}

// entryIter replays a fixed slice of entries.
type entryIter struct {
	entries []layout.Entry
	pos     int
}

func (it *entryIter) Next() bool {
	if it.pos >= len(it.entries) {
		return false
	}
	it.pos++
	return true
}

func (it *entryIter) Entry() layout.Entry { return it.entries[it.pos-1] }
func (it *entryIter) Err() error          { return nil }

func entries(rows, cols int, rowMajor bool, values ...float64) layout.Iterator {
	var out []layout.Entry
	for i, v := range values {
		r, c := i%rows, i/rows
		if rowMajor {
			r, c = i/cols, i%cols
		}
		out = append(out, layout.Entry{Label: layout.Label(rows, cols, r, c), Row: r, Col: c, Value: v})
	}
	return &entryIter{entries: out}
}

func TestCollect_AscendingWhateverTheWalk(t *testing.T) {
	cm, err := Collect(entries(2, 2, false, 1, 3, 2, 4), 2, 2)
	require.NoError(t, err)
	rm, err := Collect(entries(2, 2, true, 1, 2, 3, 4), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, cm, rm)
	assert.Equal(t, "1.0", cm.Rows[0].Columns[0].Content)
	assert.Equal(t, "2.0", cm.Rows[0].Columns[1].Content)
	assert.Equal(t, "3.0", cm.Rows[1].Columns[0].Content)

	rows, cols := cm.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
}

func TestCollect_IncompleteGrid(t *testing.T) {
	_, err := Collect(entries(2, 2, false, 1, 2, 3), 2, 2)
	require.Error(t, err)
	assert.Equal(t, typedesc.ErrCodeIncompleteGrid, typedesc.CodeOf(err))
	assert.Contains(t, err.Error(), "no entry for cell [1,1] of 2x2 grid")
}

func TestCollect_BadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{-2, 4}, {4, -1}, {math.MaxInt / 2, 3}} {
		assert.NotPanics(t, func() {
			_, err := Collect(layout.Empty(), dims[0], dims[1])
			require.Error(t, err)
			assert.Equal(t, typedesc.ErrCodeInvalidDimension, typedesc.CodeOf(err), "%v", dims)
		})
	}
}

func TestCollect_HugeShapeFailsBeforeAllocating(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := Collect(entries(2, 1, false, 1, 2), 1<<40, 1)
		require.Error(t, err)
		assert.Equal(t, typedesc.ErrCodeIncompleteGrid, typedesc.CodeOf(err))
		assert.Contains(t, err.Error(), "no entry for cell [2,0]")
	})
}

func TestCollect_NoCells(t *testing.T) {
	g, err := Collect(layout.Empty(), 3, 0)
	require.NoError(t, err)
	rows, cols := g.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestGrid_JSON(t *testing.T) {
	g, err := Collect(entries(2, 2, false, 1, math.Ldexp(1, -24), -2, 0.5), 2, 2)
	require.NoError(t, err)

	got, err := g.JSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"kind":{"grid":true},"rows":[`+
			`{"columns":[{"content":"1.0"},{"content":"-2.0"}]},`+
			`{"columns":[{"content":"~0.0"},{"content":"0.5"}]}]}`,
		got)
}

func TestGrid_JSONEmpty(t *testing.T) {
	g, err := Collect(layout.Empty(), 0, 0)
	require.NoError(t, err)

	got, err := g.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"kind":{"grid":true},"rows":[]}`, got)

	rows, cols := g.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestGrid_Text(t *testing.T) {
	g, err := Collect(entries(2, 2, true, 1, -10, 100, math.Ldexp(1, -24)), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, "[   1.0 -10.0 ]\n[ 100.0  ~0.0 ]\n", g.Text())
	assert.Equal(t, "[]\n", (&Grid{}).Text())
}

func TestTable_AlignsByTerminalWidth(t *testing.T) {
	// "\u884c\u5217" is two double-width runes; "re\u0301sidu" carries a
	// combining accent and is six cells wide.
	got := Table([][]string{
		{"m", "Eigen::Matrix3d"},
		{"\u884c\u5217", "Eigen::MatrixXf"},
		{"re\u0301sidu", "Eigen::VectorXd"},
	})
	assert.Equal(t,
		"m       Eigen::Matrix3d\n"+
			"\u884c\u5217    Eigen::MatrixXf\n"+
			"re\u0301sidu  Eigen::VectorXd\n",
		got)
	assert.Empty(t, Table(nil))
}
