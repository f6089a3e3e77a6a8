package typedesc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eigenview/internal/host"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in   string
		want Axis
	}{
		{"-1", Dynamic},
		{"-0x000000001", Dynamic},
		{"-0x00000000000000001", Dynamic},
		{"0xffffffff", Dynamic},
		{"0xFFFFFFFFFFFFFFFF", Dynamic},
		{"0", Static(0)},
		{"3", Static(3)},
		{"16", Static(16)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAxis("T", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAxis_Invalid(t *testing.T) {
	for _, in := range []string{"Dynamic", "N", "", "3.0", "-0x2"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAxis("Eigen::Matrix<double, N, 1>", in)
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidDimension, CodeOf(err))
		})
	}
}

func TestAxis_String(t *testing.T) {
	assert.Equal(t, "Dynamic", Dynamic.String())
	assert.Equal(t, "Static(4)", Static(4).String())
}

func TestParseDenseShape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want DenseShape
	}{
		{
			name: "fixed column major",
			in:   "Eigen::Matrix<double, 2, 3, 0, 2, 3>",
			want: DenseShape{Rows: Static(2), Cols: Static(3)},
		},
		{
			name: "dynamic row major",
			in:   "Eigen::Matrix<float, -1, -1, 1, -1, -1>",
			want: DenseShape{Rows: Dynamic, Cols: Dynamic, Options: 1, RowMajor: true},
		},
		{
			name: "alignment bit only",
			in:   "Eigen::Array<int, 4, 1, 2, 4, 1>",
			want: DenseShape{Rows: Static(4), Cols: Static(1), Options: 2},
		},
		{
			name: "options default",
			in:   "Eigen::Matrix<double, -1, 1>",
			want: DenseShape{Rows: Dynamic, Cols: Static(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			got, err := ParseDenseShape(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDenseShape_Errors(t *testing.T) {
	tests := []struct {
		in   string
		code ErrorCode
	}{
		{"Eigen::Matrix<double>", ErrCodeMissingParameter},
		{"Eigen::Matrix<double, 2>", ErrCodeMissingParameter},
		{"Eigen::Matrix<double, R, 2>", ErrCodeInvalidDimension},
		{"Eigen::Matrix<double, 2, 2, RowMajor>", ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			_, err = ParseDenseShape(d)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestParseSparseOptions(t *testing.T) {
	tests := []struct {
		in       string
		rowMajor bool
	}{
		{"Eigen::SparseMatrix<double, 0, int>", false},
		{"Eigen::SparseMatrix<double, 1, int>", true},
		{"Eigen::SparseMatrix<double>", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			got, err := ParseSparseOptions(d)
			require.NoError(t, err)
			assert.Equal(t, tt.rowMajor, got)
		})
	}

	d, err := Parse("Eigen::SparseMatrix<double, RowMajor>")
	require.NoError(t, err)
	_, err = ParseSparseOptions(d)
	assert.Equal(t, ErrCodeInvalidDimension, CodeOf(err))
}

func TestCheckScalar(t *testing.T) {
	for _, in := range []string{
		"Eigen::Matrix<double, 2, 2>",
		"Eigen::Array<float, 2, 2>",
		"Eigen::Matrix<int, 2, 2>",
	} {
		d, err := Parse(in)
		require.NoError(t, err)
		assert.NoError(t, CheckScalar(d), in)
	}

	d, err := Parse("Eigen::Matrix<std::complex<double>, 2, 2>")
	require.NoError(t, err)
	err = CheckScalar(d)
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnsupportedScalar, CodeOf(err))
}

// fieldValue is a host.Value that only answers Field and Int, recording
// which fields were read.
type fieldValue struct {
	host.Value
	fields map[string]int64
	reads  *[]string
	n      int64
	isLeaf bool
}

func (v *fieldValue) Field(name string) (host.Value, error) {
	*v.reads = append(*v.reads, name)
	if name == FieldStorage {
		return v, nil
	}
	n, ok := v.fields[name]
	if !ok {
		return nil, errors.New("no field " + name)
	}
	return &fieldValue{n: n, isLeaf: true, reads: v.reads}, nil
}

func (v *fieldValue) Int() (int64, error) {
	if !v.isLeaf {
		return 0, errors.New("not a scalar")
	}
	return v.n, nil
}

func TestResolveDims(t *testing.T) {
	t.Run("static axes read nothing", func(t *testing.T) {
		var reads []string
		v := &fieldValue{reads: &reads}

		rows, cols, err := ResolveDims(DenseShape{Rows: Static(3), Cols: Static(4)}, v)
		require.NoError(t, err)
		assert.Equal(t, 3, rows)
		assert.Equal(t, 4, cols)
		assert.Empty(t, reads)
	})

	t.Run("dynamic rows only", func(t *testing.T) {
		var reads []string
		v := &fieldValue{reads: &reads, fields: map[string]int64{FieldRows: 7}}

		rows, cols, err := ResolveDims(DenseShape{Rows: Dynamic, Cols: Static(1)}, v)
		require.NoError(t, err)
		assert.Equal(t, 7, rows)
		assert.Equal(t, 1, cols)
		assert.Equal(t, []string{FieldStorage, FieldRows}, reads)
	})

	t.Run("both dynamic", func(t *testing.T) {
		var reads []string
		v := &fieldValue{reads: &reads, fields: map[string]int64{FieldRows: 2, FieldCols: 5}}

		rows, cols, err := ResolveDims(DenseShape{Rows: Dynamic, Cols: Dynamic}, v)
		require.NoError(t, err)
		assert.Equal(t, 2, rows)
		assert.Equal(t, 5, cols)
	})

	t.Run("missing field", func(t *testing.T) {
		var reads []string
		v := &fieldValue{reads: &reads, fields: map[string]int64{}}

		_, _, err := ResolveDims(DenseShape{Rows: Static(1), Cols: Dynamic}, v)
		require.Error(t, err)
		assert.Equal(t, ErrCodeHostAccess, CodeOf(err))
		assert.Contains(t, err.Error(), "read m_cols")
	})
	t.Run("negative extent", func(t *testing.T) {
		var reads []string
		v := &fieldValue{reads: &reads, fields: map[string]int64{FieldRows: -2, FieldCols: 4}}

		_, _, err := ResolveDims(DenseShape{Rows: Dynamic, Cols: Dynamic}, v)
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidDimension, CodeOf(err))
		assert.Contains(t, err.Error(), "m_rows holds -2")
	})
}

func TestDim(t *testing.T) {
	n, err := Dim(FieldRows, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = Dim(FieldCols, 1<<31)
	require.NoError(t, err)
	assert.Equal(t, 1<<31, n)

	for _, bad := range []int64{-1, -1 << 62} {
		_, err := Dim(FieldRows, bad)
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidDimension, CodeOf(err), "%d", bad)
	}
}
