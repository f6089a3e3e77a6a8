package layout

import (
	"fmt"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/typedesc"
)

// Field names of sparse matrix storage.
const (
	FieldOuterSize     = "m_outerSize"
	FieldInnerSize     = "m_innerSize"
	FieldOuterIndex    = "m_outerIndex"
	FieldInnerNonZeros = "m_innerNonZeros"
	FieldValues        = "m_values"
	FieldIndices       = "m_indices"
)

// IndexArray reads element i of an integer array.
type IndexArray interface {
	Index(i int) (int64, error)
}

// ScalarArray reads element i of a scalar array.
type ScalarArray interface {
	Scalar(i int) (float64, error)
}

// PointerArray reads elements through a host pointer.
type PointerArray struct {
	Base host.Value
}

func (p PointerArray) at(i int) (host.Value, error) {
	ptr, err := p.Base.Advance(i)
	if err != nil {
		return nil, typedesc.NewHostError("advance array pointer", err)
	}
	elem, err := ptr.Deref()
	if err != nil {
		return nil, typedesc.NewHostError("dereference array element", err)
	}
	return elem, nil
}

// Index implements IndexArray.
func (p PointerArray) Index(i int) (int64, error) {
	elem, err := p.at(i)
	if err != nil {
		return 0, err
	}
	n, err := elem.Int()
	if err != nil {
		return 0, typedesc.NewHostError("read index", err)
	}
	return n, nil
}

// Scalar implements ScalarArray.
func (p PointerArray) Scalar(i int) (float64, error) {
	elem, err := p.at(i)
	if err != nil {
		return 0, err
	}
	f, err := elem.Float()
	if err != nil {
		return 0, typedesc.NewHostError("read value", err)
	}
	return f, nil
}

// SparseStorage is compressed sparse row/column storage.
//
// Each outer slice i owns the entry range [OuterIndex[i], end) where end is
// OuterIndex[i]+InnerNonZeros[i] when InnerNonZeros is present (non-compressed
// mode) and OuterIndex[i+1] otherwise. Inner indices within one slice must be
// strictly increasing; this is assumed, not checked.
type SparseStorage struct {
	OuterSize int
	InnerSize int
	RowMajor  bool

	OuterIndex    IndexArray
	InnerNonZeros IndexArray
	InnerIndices  IndexArray
	Values        ScalarArray
}

// Rows returns the logical row count.
func (s *SparseStorage) Rows() int {
	if s.RowMajor {
		return s.OuterSize
	}
	return s.InnerSize
}

// Cols returns the logical column count.
func (s *SparseStorage) Cols() int {
	if s.RowMajor {
		return s.InnerSize
	}
	return s.OuterSize
}

// Empty reports whether no value array is allocated.
func (s *SparseStorage) Empty() bool { return s.Values == nil }

// Compressed reports whether slices are packed back to back.
func (s *SparseStorage) Compressed() bool { return s.InnerNonZeros == nil }

// Status returns "empty", "compressed" or "not compressed".
func (s *SparseStorage) Status() string {
	switch {
	case s.Empty():
		return "empty"
	case s.Compressed():
		return "compressed"
	default:
		return "not compressed"
	}
}

// Lookup returns the value at (row, col), or zero when no entry is stored.
func (s *SparseStorage) Lookup(row, col int) (float64, error) {
	return s.lookup(row, col, true)
}

func (s *SparseStorage) lookup(row, col int, fastPath bool) (float64, error) {
	if s.Empty() || s.OuterIndex == nil {
		return 0, nil
	}

	outer, inner := col, row
	if s.RowMajor {
		outer, inner = row, col
	}

	start, end, err := s.segment(outer)
	if err != nil {
		return 0, err
	}
	if start >= end {
		return 0, nil
	}

	// Entries are usually appended, so the last slot is checked first.
	if fastPath {
		last, err := s.InnerIndices.Index(int(end - 1))
		if err != nil {
			return 0, err
		}
		if last == int64(inner) {
			return s.Values.Scalar(int(end - 1))
		}
	}

	idx, err := s.lowerBound(int(start), int(end-1), int64(inner))
	if err != nil {
		return 0, err
	}
	if idx < int(end) {
		got, err := s.InnerIndices.Index(idx)
		if err != nil {
			return 0, err
		}
		if got == int64(inner) {
			return s.Values.Scalar(idx)
		}
	}
	return 0, nil
}

// segment returns the [start, end) entry range of an outer slice.
func (s *SparseStorage) segment(outer int) (start, end int64, err error) {
	if start, err = s.OuterIndex.Index(outer); err != nil {
		return 0, 0, err
	}
	if s.InnerNonZeros != nil {
		nnz, err := s.InnerNonZeros.Index(outer)
		if err != nil {
			return 0, 0, err
		}
		return start, start + nnz, nil
	}
	if end, err = s.OuterIndex.Index(outer + 1); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// lowerBound returns the first position in [lo, hi) whose inner index is not
// less than target, or hi when there is none.
func (s *SparseStorage) lowerBound(lo, hi int, target int64) (int, error) {
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		got, err := s.InnerIndices.Index(mid)
		if err != nil {
			return 0, err
		}
		if got < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// Iter enumerates every logical cell in storage order, looking each one up.
// Empty storage yields nothing.
func (s *SparseStorage) Iter() Iterator {
	if s.Empty() {
		return Empty()
	}
	return &sparseIterator{s: s, cur: newCursor(s.Rows(), s.Cols(), s.RowMajor)}
}

type sparseIterator struct {
	s     *SparseStorage
	cur   *cursor
	entry Entry
	err   error
}

func (it *sparseIterator) Next() bool {
	if it.err != nil {
		return false
	}
	row, col, ok := it.cur.next()
	if !ok {
		return false
	}
	val, err := it.s.Lookup(row, col)
	if err != nil {
		it.err = err
		return false
	}
	it.entry = Entry{
		Label: fmt.Sprintf("[%d,%d]", row, col),
		Row:   row,
		Col:   col,
		Value: val,
	}
	return true
}

func (it *sparseIterator) Entry() Entry { return it.entry }
func (it *sparseIterator) Err() error   { return it.err }

// SparseFromValue reads the storage fields of a SparseMatrix value.
func SparseFromValue(v host.Value, rowMajor bool) (*SparseStorage, error) {
	s := &SparseStorage{RowMajor: rowMajor}

	var err error
	if s.OuterSize, err = intField(v, FieldOuterSize); err != nil {
		return nil, err
	}
	if s.InnerSize, err = intField(v, FieldInnerSize); err != nil {
		return nil, err
	}

	outerIndex, err := pointerField(v, FieldOuterIndex)
	if err != nil {
		return nil, err
	}
	innerNNZ, err := pointerField(v, FieldInnerNonZeros)
	if err != nil {
		return nil, err
	}
	data, err := v.Field(FieldData)
	if err != nil {
		return nil, typedesc.NewHostError("read "+FieldData, err)
	}
	values, err := pointerField(data, FieldValues)
	if err != nil {
		return nil, err
	}
	indices, err := pointerField(data, FieldIndices)
	if err != nil {
		return nil, err
	}

	if outerIndex != nil {
		s.OuterIndex = PointerArray{Base: outerIndex}
	}
	if innerNNZ != nil {
		s.InnerNonZeros = PointerArray{Base: innerNNZ}
	}
	if values != nil {
		if outerIndex == nil || indices == nil {
			return nil, &typedesc.Error{
				Code:    typedesc.ErrCodeHostAccess,
				Message: "value array allocated without index arrays",
			}
		}
		s.Values = PointerArray{Base: values}
		s.InnerIndices = PointerArray{Base: indices}
	}
	return s, nil
}

func intField(v host.Value, name string) (int, error) {
	f, err := v.Field(name)
	if err != nil {
		return 0, typedesc.NewHostError("read "+name, err)
	}
	n, err := f.Int()
	if err != nil {
		return 0, typedesc.NewHostError("read "+name, err)
	}
	return typedesc.Dim(name, n)
}

// pointerField returns the named pointer field, or nil when it is null.
func pointerField(v host.Value, name string) (host.Value, error) {
	f, err := v.Field(name)
	if err != nil {
		return nil, typedesc.NewHostError("read "+name, err)
	}
	p, err := f.Pointer()
	if err != nil {
		return nil, typedesc.NewHostError("read "+name, err)
	}
	if p == 0 {
		return nil, nil
	}
	return f, nil
}
