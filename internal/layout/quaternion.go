package layout

import (
	"fmt"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/typedesc"
)

// QuaternionLabels is the storage order of quaternion coefficients.
var QuaternionLabels = [4]string{"x", "y", "z", "w"}

// FieldCoeffs is the member holding a quaternion's coefficient vector.
const FieldCoeffs = "m_coeffs"

// QuaternionData returns a scalar pointer to the four inline coefficients of
// a Quaternion value (m_coeffs.m_storage.m_data.array).
func QuaternionData(v host.Value) (host.Value, error) {
	cur := v
	for _, name := range []string{FieldCoeffs, typedesc.FieldStorage, FieldData, FieldArray} {
		next, err := cur.Field(name)
		if err != nil {
			return nil, typedesc.NewHostError("read "+name, err)
		}
		cur = next
	}
	scalar, err := ScalarType(v)
	if err != nil {
		return nil, err
	}
	data, err := cur.Cast(scalar.Pointer())
	if err != nil {
		return nil, typedesc.NewHostError("cast coefficient array", err)
	}
	return data, nil
}

// QuaternionIter yields exactly four entries labelled [x], [y], [z], [w].
func QuaternionIter(data host.Value) Iterator {
	return &quaternionIterator{ptr: data}
}

type quaternionIterator struct {
	ptr   host.Value
	pos   int
	entry Entry
	err   error
}

func (it *quaternionIterator) Next() bool {
	if it.err != nil || it.pos >= len(QuaternionLabels) {
		return false
	}
	elem, err := it.ptr.Deref()
	if err != nil {
		it.err = typedesc.NewHostError("dereference coefficient", err)
		return false
	}
	val, err := elem.Float()
	if err != nil {
		it.err = typedesc.NewHostError("read coefficient", err)
		return false
	}
	it.entry = Entry{
		Label: fmt.Sprintf("[%s]", QuaternionLabels[it.pos]),
		Row:   it.pos,
		Value: val,
	}
	it.pos++
	if it.ptr, err = it.ptr.Advance(1); err != nil {
		it.err = typedesc.NewHostError("advance coefficient pointer", err)
		return false
	}
	return true
}

func (it *quaternionIterator) Entry() Entry { return it.entry }
func (it *quaternionIterator) Err() error   { return it.err }
