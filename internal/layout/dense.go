package layout

import (
	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/typedesc"
)

// Field names of dense storage.
const (
	FieldData  = "m_data"
	FieldArray = "array"
)

// DenseStorage describes a contiguous backing array.
type DenseStorage struct {
	// Data points at the first stored element, typed as a scalar pointer.
	Data host.Value

	Rows     int
	Cols     int
	RowMajor bool

	// OuterStride is the distance in elements between the starts of two
	// consecutive outer slices. Zero means the inner size (a packed walk).
	OuterStride int
}

func (s DenseStorage) innerSize() int {
	if s.RowMajor {
		return s.Cols
	}
	return s.Rows
}

// DenseFromValue resolves the storage of a Matrix or Array value whose type
// parameters decoded to shape.
func DenseFromValue(v host.Value, shape typedesc.DenseShape) (DenseStorage, error) {
	rows, cols, err := typedesc.ResolveDims(shape, v)
	if err != nil {
		return DenseStorage{}, err
	}
	data, err := storageData(v)
	if err != nil {
		return DenseStorage{}, err
	}

	// Fixed-size matrices embed a plain array struct; reinterpret it once as
	// a pointer to the scalar type.
	if host.Stripped(data.Type()).Kind() == host.KindStruct {
		scalar, err := ScalarType(v)
		if err != nil {
			return DenseStorage{}, err
		}
		arr, err := data.Field(FieldArray)
		if err != nil {
			return DenseStorage{}, typedesc.NewHostError("read "+FieldArray, err)
		}
		if data, err = arr.Cast(scalar.Pointer()); err != nil {
			return DenseStorage{}, typedesc.NewHostError("cast inline storage", err)
		}
	}

	return DenseStorage{
		Data:     data,
		Rows:     rows,
		Cols:     cols,
		RowMajor: shape.RowMajor,
	}, nil
}

func storageData(v host.Value) (host.Value, error) {
	storage, err := v.Field(typedesc.FieldStorage)
	if err != nil {
		return nil, typedesc.NewHostError("read "+typedesc.FieldStorage, err)
	}
	data, err := storage.Field(FieldData)
	if err != nil {
		return nil, typedesc.NewHostError("read "+FieldData, err)
	}
	return data, nil
}

// ScalarType returns the first template argument of v's stripped type.
func ScalarType(v host.Value) (host.Type, error) {
	t, err := host.Stripped(v.Type()).TemplateArgument(0)
	if err != nil {
		return nil, typedesc.NewHostError("scalar template argument", err)
	}
	return t, nil
}

// Iter walks the storage in physical order.
func (s DenseStorage) Iter() *DenseIterator {
	return &DenseIterator{
		s:   s,
		cur: newCursor(s.Rows, s.Cols, s.RowMajor),
		ptr: s.Data,
	}
}

// DenseIterator dereferences the data pointer once per cell and advances it
// by one element, skipping the outer-stride padding at each outer boundary.
type DenseIterator struct {
	s     DenseStorage
	cur   *cursor
	ptr   host.Value
	inner int

	entry Entry
	err   error
}

// Next reads the next cell.
func (it *DenseIterator) Next() bool {
	if it.err != nil {
		return false
	}
	row, col, ok := it.cur.next()
	if !ok {
		return false
	}

	elem, err := it.ptr.Deref()
	if err != nil {
		it.err = typedesc.NewHostError("dereference element", err)
		return false
	}
	val, err := elem.Float()
	if err != nil {
		it.err = typedesc.NewHostError("read element", err)
		return false
	}
	it.entry = Entry{
		Label: Label(it.s.Rows, it.s.Cols, row, col),
		Row:   row,
		Col:   col,
		Value: val,
	}

	step := 1
	it.inner++
	if inner := it.s.innerSize(); it.inner == inner {
		it.inner = 0
		if it.s.OuterStride > inner {
			step += it.s.OuterStride - inner
		}
	}
	if it.ptr, err = it.ptr.Advance(step); err != nil {
		it.err = typedesc.NewHostError("advance element pointer", err)
		return false
	}
	return true
}

// Entry returns the cell read by the last successful Next.
func (it *DenseIterator) Entry() Entry { return it.entry }

// Err returns the first error encountered.
func (it *DenseIterator) Err() error { return it.err }
