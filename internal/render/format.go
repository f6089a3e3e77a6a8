package render

import (
	"math"
	"strconv"
	"strings"
)

// Epsilon is the magnitude below which a non-zero value is shown as
// approximately zero.
var Epsilon = math.Ldexp(1, -23)

// ApproxZero is the text of a clamped near-zero value.
const ApproxZero = "~0.0"

// FormatScalar renders v as shortest round-trip decimal text.
//
// Integral values keep a trailing ".0", magnitudes outside [1e-4, 1e16) use
// exponent form ("1e-05", "1.5e+20"), and non-zero values smaller than
// Epsilon render as ApproxZero.
func FormatScalar(v float64) string {
	if v != 0 && math.Abs(v) < Epsilon {
		return ApproxZero
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
