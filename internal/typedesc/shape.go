package typedesc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/eigenview/internal/host"
)

// Axis is the size of one spatial dimension as declared by the type.
type Axis struct {
	Size    int
	Dynamic bool
}

// Static returns a compile-time axis of size n.
func Static(n int) Axis { return Axis{Size: n} }

// Dynamic is an axis whose size lives in a runtime field.
var Dynamic = Axis{Dynamic: true}

// String renders the axis for diagnostics.
func (a Axis) String() string {
	if a.Dynamic {
		return "Dynamic"
	}
	return fmt.Sprintf("Static(%d)", a.Size)
}

// dynamicSentinels are the spellings of -1 a debugger may print for a
// dynamic size template argument.
var dynamicSentinels = map[string]bool{
	"-1":                   true,
	"-0x000000001":         true,
	"-0x00000000000000001": true,
	"0xffffffff":           true,
	"0xffffffffffffffff":   true,
}

// IsDynamicSentinel reports whether p encodes a dynamic size.
func IsDynamicSentinel(p string) bool {
	return dynamicSentinels[strings.ToLower(p)]
}

// ParseAxis classifies one size parameter.
func ParseAxis(typeName, p string) (Axis, error) {
	if IsDynamicSentinel(p) {
		return Dynamic, nil
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return Axis{}, &Error{
			Code:     ErrCodeInvalidDimension,
			Message:  fmt.Sprintf("size parameter %q", p),
			TypeName: typeName,
			Err:      err,
		}
	}
	return Static(n), nil
}

// ParseOptions parses a storage-option bitmask parameter.
func ParseOptions(typeName, p string) (int, error) {
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, &Error{
			Code:     ErrCodeInvalidDimension,
			Message:  fmt.Sprintf("options parameter %q", p),
			TypeName: typeName,
			Err:      err,
		}
	}
	return n, nil
}

// RowMajorBit selects row-major physical order in the options bitmask.
const RowMajorBit = 0x1

// DenseShape is the declared shape of a dense matrix or array type.
type DenseShape struct {
	Rows     Axis
	Cols     Axis
	Options  int
	RowMajor bool
}

// ParseDenseShape reads params 1..3 of a Matrix/Array descriptor.
// The scalar, rows and cols parameters are mandatory; options default to 0.
func ParseDenseShape(d Descriptor) (DenseShape, error) {
	if err := d.Require(3); err != nil {
		return DenseShape{}, err
	}
	rows, err := ParseAxis(d.Name, d.Params[1])
	if err != nil {
		return DenseShape{}, err
	}
	cols, err := ParseAxis(d.Name, d.Params[2])
	if err != nil {
		return DenseShape{}, err
	}
	opts, err := ParseOptions(d.Name, d.Param(3, "0"))
	if err != nil {
		return DenseShape{}, err
	}
	return DenseShape{
		Rows:     rows,
		Cols:     cols,
		Options:  opts,
		RowMajor: opts&RowMajorBit != 0,
	}, nil
}

// ParseSparseOptions reads the options parameter (param 1) of a sparse descriptor.
func ParseSparseOptions(d Descriptor) (rowMajor bool, err error) {
	if err := d.Require(1); err != nil {
		return false, err
	}
	opts, err := ParseOptions(d.Name, d.Param(1, "0"))
	if err != nil {
		return false, err
	}
	return opts&RowMajorBit != 0, nil
}

// Runtime field names of the dense storage object.
const (
	FieldStorage = "m_storage"
	FieldRows    = "m_rows"
	FieldCols    = "m_cols"
)

// ResolveAxis returns a's size, reading field from storage only when a is dynamic.
func ResolveAxis(a Axis, storage host.Value, field string) (int, error) {
	if !a.Dynamic {
		return a.Size, nil
	}
	f, err := storage.Field(field)
	if err != nil {
		return 0, NewHostError("read "+field, err)
	}
	n, err := f.Int()
	if err != nil {
		return 0, NewHostError("read "+field, err)
	}
	return Dim(field, n)
}

// Dim validates a size or stride read from memory. Uninitialized objects
// commonly hold negative or out-of-range words here.
func Dim(field string, n int64) (int, error) {
	if n < 0 || int64(int(n)) != n {
		return 0, &Error{
			Code:    ErrCodeInvalidDimension,
			Message: fmt.Sprintf("%s holds %d", field, n),
		}
	}
	return int(n), nil
}

// ResolveDims resolves rows then cols of shape against v's m_storage.
// Static axes never touch the runtime fields.
func ResolveDims(shape DenseShape, v host.Value) (rows, cols int, err error) {
	var storage host.Value
	if shape.Rows.Dynamic || shape.Cols.Dynamic {
		storage, err = v.Field(FieldStorage)
		if err != nil {
			return 0, 0, NewHostError("read "+FieldStorage, err)
		}
	}
	if rows, err = ResolveAxis(shape.Rows, storage, FieldRows); err != nil {
		return 0, 0, err
	}
	if cols, err = ResolveAxis(shape.Cols, storage, FieldCols); err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

// CheckScalar rejects scalar parameters outside the supported real types.
func CheckScalar(d Descriptor) error {
	if err := d.Require(1); err != nil {
		return err
	}
	if strings.HasPrefix(d.Params[0], "std::complex<") {
		return &Error{
			Code:     ErrCodeUnsupportedScalar,
			Message:  fmt.Sprintf("scalar type %s", d.Params[0]),
			TypeName: d.Name,
		}
	}
	return nil
}
