package typedesc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "fixed matrix",
			in:   "Eigen::Matrix<double, 3, 3, 0, 3, 3>",
			want: []string{"double", "3", "3", "0", "3", "3"},
		},
		{
			name: "nested owner stays intact",
			in:   "Eigen::Block<Eigen::Matrix<double, -1, -1, 0, -1, -1>, -1, -1, false>",
			want: []string{"Eigen::Matrix<double,-1,-1,0,-1,-1>", "-1", "-1", "false"},
		},
		{
			name: "complex scalar",
			in:   "Eigen::Matrix<std::complex<float>, 2, 2, 0, 2, 2>",
			want: []string{"std::complex<float>", "2", "2", "0", "2", "2"},
		},
		{
			name: "trailing qualifier ignored",
			in:   "Eigen::Array<float, 4, 1, 0, 4, 1> const",
			want: []string{"float", "4", "1", "0", "4", "1"},
		},
		{
			name: "first segment only",
			in:   "Eigen::SparseMatrix<double, 1, int>::InnerIterator<x>",
			want: []string{"double", "1", "int"},
		},
		{
			name: "parenthesized argument",
			in:   "Eigen::Matrix<double, (3), 1>",
			want: []string{"double", "(3)", "1"},
		},
		{
			name: "single parameter",
			in:   "Eigen::Quaternion<float>",
			want: []string{"float"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in, d.Name)
			assert.Equal(t, tt.want, d.Params)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{
		"double",
		"Eigen::Matrix",
		"Eigen::Matrix<>",
		"Eigen::Matrix< >",
		"Eigen::Matrix<double, 2",
		"",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, IsMalformedType(err))
			assert.Equal(t, ErrCodeMalformedType, CodeOf(err))
		})
	}
}

func TestMatchingClose(t *testing.T) {
	s := "A<B<C>, D>::E"
	end, ok := MatchingClose(s, 1)
	require.True(t, ok)
	assert.Equal(t, 9, end)

	end, ok = MatchingClose(s, 3)
	require.True(t, ok)
	assert.Equal(t, 5, end)

	_, ok = MatchingClose(s, 0)
	assert.False(t, ok)

	_, ok = MatchingClose("A<B", 1)
	assert.False(t, ok)
}

func TestDescriptor_Param(t *testing.T) {
	d, err := Parse("Eigen::Matrix<double, 2, 2>")
	require.NoError(t, err)

	assert.Equal(t, "2", d.Param(1, "x"))
	assert.Equal(t, "0", d.Param(3, "0"))

	require.NoError(t, d.Require(3))
	err = d.Require(4)
	require.Error(t, err)
	assert.True(t, IsMissingParameter(err))
	assert.Contains(t, err.Error(), "expected at least 4 template arguments, got 3")
}

func TestError_Format(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{
		Code:     ErrCodeInvalidDimension,
		Message:  `size parameter "n"`,
		TypeName: "Eigen::Matrix<double, n, 1>",
		Err:      cause,
	}

	assert.Equal(t,
		`INVALID_DIMENSION: size parameter "n" (type=Eigen::Matrix<double, n, 1>): boom`,
		err.Error())
	assert.ErrorIs(t, err, cause)

	host := NewHostError("read m_rows", cause)
	assert.Equal(t, "HOST_ACCESS: read m_rows: boom", host.Error())
	assert.Equal(t, ErrCodeHostAccess, CodeOf(host))
	assert.Equal(t, ErrorCode(""), CodeOf(cause))
}
