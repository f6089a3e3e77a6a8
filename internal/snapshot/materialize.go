package snapshot

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/memimage"
)

var scalarKinds = map[string]memimage.ScalarKind{
	"float":         memimage.Float32,
	"double":        memimage.Float64,
	"int":           memimage.Int32,
	"long":          memimage.Int64,
	"unsigned int":  memimage.Uint32,
	"unsigned long": memimage.Uint64,
}

// Frame is a materialized document: an image plus its named variables.
type Frame struct {
	image  *memimage.Image
	names  []string
	values map[string]*memimage.Value
}

// Session returns the type lookup for the frame's image.
func (f *Frame) Session() host.Session { return f.image }

// Image returns the backing memory image.
func (f *Frame) Image() *memimage.Image { return f.image }

// Names returns variable names in document order.
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// Lookup returns the named variable.
func (f *Frame) Lookup(name string) (host.Value, bool) {
	v, ok := f.values[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// object is a laid-out container before qualifiers are applied.
type object struct {
	def   *Value
	typ   *memimage.Type
	value *memimage.Value

	// data is the address of the first dense coefficient.
	data uint64
}

type builder struct {
	im      *memimage.Image
	long    *memimage.Type
	objects map[string]*object
}

// Materialize lays out every value of doc in a fresh image, the way the
// inspected library stores them.
func Materialize(doc *Document) (*Frame, error) {
	im := memimage.New()
	b := &builder{
		im:      im,
		long:    im.Scalar("long", memimage.Int64),
		objects: make(map[string]*object),
	}
	f := &Frame{image: im, values: make(map[string]*memimage.Value)}

	for i := range doc.Values {
		def := &doc.Values[i]
		obj, err := b.build(def)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", def.Name, err)
		}
		b.objects[def.Name] = obj

		v, err := b.qualify(obj)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", def.Name, err)
		}
		f.names = append(f.names, def.Name)
		f.values[def.Name] = v
	}
	return f, nil
}

func (b *builder) build(v *Value) (*object, error) {
	switch v.Kind {
	case KindMatrix:
		return b.dense(v, "Matrix")
	case KindArray:
		return b.dense(v, "Array")
	case KindBlock:
		return b.block(v)
	case KindVectorBlock:
		return b.vectorBlock(v)
	case KindSparse:
		return b.sparse(v)
	case KindQuaternion:
		return b.quaternion(v)
	default:
		return nil, fmt.Errorf("unknown kind %q", v.Kind)
	}
}

// qualify applies the typedef alias, const and reference qualifiers.
func (b *builder) qualify(obj *object) (*memimage.Value, error) {
	t := obj.typ
	if obj.def.Alias != "" {
		t = b.im.Typedef(obj.def.Alias, t)
	}
	if obj.def.Const {
		t = b.im.Const(t)
	}
	if !obj.def.Reference {
		return b.im.At(t, obj.value.Address()), nil
	}
	ref := b.im.NewValue(b.im.RefTo(t))
	if err := b.im.WritePointer(ref.Address(), obj.value.Address()); err != nil {
		return nil, err
	}
	return ref, nil
}

func (b *builder) scalar(v *Value) (*memimage.Type, memimage.ScalarKind) {
	k := scalarKinds[v.Scalar]
	return b.im.Scalar(v.Scalar, k), k
}

func sizeParam(n int, dynamic bool, sentinel string) string {
	if dynamic {
		return sentinel
	}
	return strconv.Itoa(n)
}

func optionsParam(rowMajor bool) int {
	if rowMajor {
		return 1
	}
	return 0
}

// denseType registers the owning container type and its storage. Shapes with
// a dynamic axis keep a heap pointer plus the dynamic extents; fully fixed
// shapes embed a plain array.
func (b *builder) denseType(template string, sc *memimage.Type, v *Value) *memimage.Type {
	r := sizeParam(v.Rows, v.DynamicRows, v.Sentinel)
	c := sizeParam(v.Cols, v.DynamicCols, v.Sentinel)
	opts := optionsParam(v.RowMajor)
	name := fmt.Sprintf("Eigen::%s<%s, %s, %s, %d, %s, %s>", template, sc.Name(), r, c, opts, r, c)
	if t := b.im.Type(name); t != nil {
		return t
	}

	var storage *memimage.Type
	if !v.DynamicRows && !v.DynamicCols {
		n := v.Rows * v.Cols
		arr := b.im.Struct(fmt.Sprintf("Eigen::internal::plain_array<%s, %d, %d, 16>", sc.Name(), n, opts), nil,
			memimage.FieldSpec{Name: "array", Type: b.im.ArrayOf(sc, n)})
		storage = b.im.Struct(fmt.Sprintf("Eigen::DenseStorage<%s, %d, %s, %s, %d>", sc.Name(), n, r, c, opts), nil,
			memimage.FieldSpec{Name: "m_data", Type: arr})
	} else {
		specs := []memimage.FieldSpec{{Name: "m_data", Type: b.im.PointerTo(sc)}}
		if v.DynamicRows {
			specs = append(specs, memimage.FieldSpec{Name: "m_rows", Type: b.long})
		}
		if v.DynamicCols {
			specs = append(specs, memimage.FieldSpec{Name: "m_cols", Type: b.long})
		}
		storage = b.im.Struct(fmt.Sprintf("Eigen::DenseStorage<%s, %s, %s, %s, %d>", sc.Name(), v.Sentinel, r, c, opts), nil, specs...)
	}
	return b.im.Struct(name, []*memimage.Type{sc}, memimage.FieldSpec{Name: "m_storage", Type: storage})
}

func (b *builder) dense(v *Value, template string) (*object, error) {
	sc, k := b.scalar(v)
	t := b.denseType(template, sc, v)
	val := b.im.NewValue(t)
	obj := &object{def: v, typ: t, value: val}

	n := v.Rows * v.Cols
	if !v.DynamicRows && !v.DynamicCols {
		addr, err := fieldAddress(val, "m_storage", "m_data", "array")
		if err != nil {
			return nil, err
		}
		obj.data = addr
	} else {
		obj.data = b.im.Alloc(n*k.Size(), k.Size())
		if err := b.writeField(val, obj.data, 8, "m_storage", "m_data"); err != nil {
			return nil, err
		}
		if v.DynamicRows {
			if err := b.writeField(val, uint64(v.Rows), 8, "m_storage", "m_rows"); err != nil {
				return nil, err
			}
		}
		if v.DynamicCols {
			if err := b.writeField(val, uint64(v.Cols), 8, "m_storage", "m_cols"); err != nil {
				return nil, err
			}
		}
	}

	for r := 0; r < v.Rows; r++ {
		for c := 0; c < v.Cols; c++ {
			idx := c*v.Rows + r
			if v.RowMajor {
				idx = r*v.Cols + c
			}
			addr := obj.data + uint64(idx*k.Size())
			if err := b.im.WriteScalar(addr, k, v.Data[r*v.Cols+c]); err != nil {
				return nil, err
			}
		}
	}
	return obj, nil
}

// window is the resolved placement of a block inside its owner.
type window struct {
	rows, cols         int
	startRow, startCol int
}

// viewType registers a Block or VectorBlock type. Its memory mirrors the
// owner's heap storage (data pointer, dynamic extents) followed by the outer
// stride.
func (b *builder) viewType(name string, owner *object) *memimage.Type {
	specs := []memimage.FieldSpec{{Name: "m_data", Type: b.im.PointerTo(b.ownerScalar(owner))}}
	if owner.def.DynamicRows {
		specs = append(specs, memimage.FieldSpec{Name: "m_rows", Type: b.long})
	}
	if owner.def.DynamicCols {
		specs = append(specs, memimage.FieldSpec{Name: "m_cols", Type: b.long})
	}
	specs = append(specs, memimage.FieldSpec{Name: "m_outerStride", Type: b.long})
	return b.im.Struct(name, []*memimage.Type{owner.typ}, specs...)
}

func (b *builder) ownerScalar(owner *object) *memimage.Type {
	sc, _ := b.scalar(owner.def)
	return sc
}

func (b *builder) owner(v *Value) (*object, error) {
	owner, ok := b.objects[v.Of]
	if !ok {
		return nil, fmt.Errorf("unknown owner %q", v.Of)
	}
	if owner.def.Kind != KindMatrix && owner.def.Kind != KindArray {
		return nil, fmt.Errorf("owner %q is a %s", v.Of, owner.def.Kind)
	}
	return owner, nil
}

func (b *builder) block(v *Value) (*object, error) {
	owner, err := b.owner(v)
	if err != nil {
		return nil, err
	}
	if v.DynamicRows && !owner.def.DynamicRows || v.DynamicCols && !owner.def.DynamicCols {
		return nil, fmt.Errorf("dynamic window axis over a fixed axis of %q", v.Of)
	}
	name := fmt.Sprintf("Eigen::Block<%s, %s, %s, false>", owner.typ.Name(),
		sizeParam(v.Rows, v.DynamicRows, v.Sentinel), sizeParam(v.Cols, v.DynamicCols, v.Sentinel))
	w := window{rows: v.Rows, cols: v.Cols, startRow: v.StartRow, startCol: v.StartCol}
	return b.view(v, owner, b.viewType(name, owner), w)
}

func (b *builder) vectorBlock(v *Value) (*object, error) {
	owner, err := b.owner(v)
	if err != nil {
		return nil, err
	}
	var w window
	switch {
	case !owner.def.DynamicCols && owner.def.Cols == 1:
		if v.DynamicSize && !owner.def.DynamicRows {
			return nil, fmt.Errorf("dynamic segment of a fixed vector %q", v.Of)
		}
		w = window{rows: v.Size, cols: 1, startRow: v.Start}
	case !owner.def.DynamicRows && owner.def.Rows == 1:
		if v.DynamicSize && !owner.def.DynamicCols {
			return nil, fmt.Errorf("dynamic segment of a fixed vector %q", v.Of)
		}
		w = window{rows: 1, cols: v.Size, startCol: v.Start}
	default:
		return nil, fmt.Errorf("owner %q is not a vector", v.Of)
	}
	name := fmt.Sprintf("Eigen::VectorBlock<%s, %s>", owner.typ.Name(), sizeParam(v.Size, v.DynamicSize, v.Sentinel))
	return b.view(v, owner, b.viewType(name, owner), w)
}

func (b *builder) view(v *Value, owner *object, t *memimage.Type, w window) (*object, error) {
	o := owner.def
	if w.startRow+w.rows > o.Rows || w.startCol+w.cols > o.Cols {
		return nil, fmt.Errorf("window %dx%d at (%d,%d) exceeds %dx%d owner %q",
			w.rows, w.cols, w.startRow, w.startCol, o.Rows, o.Cols, o.Name)
	}

	_, k := b.scalar(o)
	inner, offset := o.Rows, w.startCol*o.Rows+w.startRow
	if o.RowMajor {
		inner, offset = o.Cols, w.startRow*o.Cols+w.startCol
	}

	val := b.im.NewValue(t)
	data := owner.data + uint64(offset*k.Size())
	if err := b.writeField(val, data, 8, "m_data"); err != nil {
		return nil, err
	}
	if o.DynamicRows {
		if err := b.writeField(val, uint64(w.rows), 8, "m_rows"); err != nil {
			return nil, err
		}
	}
	if o.DynamicCols {
		if err := b.writeField(val, uint64(w.cols), 8, "m_cols"); err != nil {
			return nil, err
		}
	}
	if err := b.writeField(val, uint64(inner), 8, "m_outerStride"); err != nil {
		return nil, err
	}
	return &object{def: v, typ: t, value: val, data: data}, nil
}

func (b *builder) sparse(v *Value) (*object, error) {
	sc, k := b.scalar(v)
	index := b.im.Scalar("int", memimage.Int32)
	opts := optionsParam(v.RowMajor)

	compressed := b.im.Struct(fmt.Sprintf("Eigen::internal::CompressedStorage<%s, int>", sc.Name()), nil,
		memimage.FieldSpec{Name: "m_values", Type: b.im.PointerTo(sc)},
		memimage.FieldSpec{Name: "m_indices", Type: b.im.PointerTo(index)},
		memimage.FieldSpec{Name: "m_size", Type: b.long},
		memimage.FieldSpec{Name: "m_allocatedSize", Type: b.long},
	)
	t := b.im.Struct(fmt.Sprintf("Eigen::SparseMatrix<%s, %d, int>", sc.Name(), opts), []*memimage.Type{sc, index},
		memimage.FieldSpec{Name: "m_outerSize", Type: b.long},
		memimage.FieldSpec{Name: "m_innerSize", Type: b.long},
		memimage.FieldSpec{Name: "m_outerIndex", Type: b.im.PointerTo(index)},
		memimage.FieldSpec{Name: "m_innerNonZeros", Type: b.im.PointerTo(index)},
		memimage.FieldSpec{Name: "m_data", Type: compressed},
	)
	val := b.im.NewValue(t)

	outerSize, innerSize := v.Cols, v.Rows
	if v.RowMajor {
		outerSize, innerSize = v.Rows, v.Cols
	}
	if err := b.writeField(val, uint64(outerSize), 8, "m_outerSize"); err != nil {
		return nil, err
	}
	if err := b.writeField(val, uint64(innerSize), 8, "m_innerSize"); err != nil {
		return nil, err
	}

	segments, err := sparseSegments(v, outerSize)
	if err != nil {
		return nil, err
	}

	// Uncompressed storage leaves one free slot after every outer segment.
	slack := 0
	if v.Uncompressed {
		slack = 1
	}
	starts := make([]int, outerSize+1)
	for o, seg := range segments {
		starts[o+1] = starts[o] + len(seg) + slack
	}
	capacity := starts[outerSize]

	outerIndex := b.im.Alloc((outerSize+1)*4, 4)
	for o, s := range starts {
		if err := b.im.WriteInt(outerIndex+uint64(o*4), memimage.Int32, int64(s)); err != nil {
			return nil, err
		}
	}
	if err := b.writeField(val, outerIndex, 8, "m_outerIndex"); err != nil {
		return nil, err
	}

	if v.Uncompressed {
		nnz := b.im.Alloc(outerSize*4, 4)
		for o, seg := range segments {
			if err := b.im.WriteInt(nnz+uint64(o*4), memimage.Int32, int64(len(seg))); err != nil {
				return nil, err
			}
		}
		if err := b.writeField(val, nnz, 8, "m_innerNonZeros"); err != nil {
			return nil, err
		}
	}

	if len(v.Entries) == 0 {
		return &object{def: v, typ: t, value: val}, nil
	}

	values := b.im.Alloc(capacity*k.Size(), k.Size())
	indices := b.im.Alloc(capacity*4, 4)
	for o, seg := range segments {
		for i, e := range seg {
			slot := uint64(starts[o] + i)
			inner := e.Row
			if v.RowMajor {
				inner = e.Col
			}
			if err := b.im.WriteScalar(values+slot*uint64(k.Size()), k, e.Value); err != nil {
				return nil, err
			}
			if err := b.im.WriteInt(indices+slot*4, memimage.Int32, int64(inner)); err != nil {
				return nil, err
			}
		}
	}
	for path, word := range map[string]uint64{
		"m_values":        values,
		"m_indices":       indices,
		"m_size":          uint64(len(v.Entries)),
		"m_allocatedSize": uint64(capacity),
	} {
		if err := b.writeField(val, word, 8, "m_data", path); err != nil {
			return nil, err
		}
	}
	return &object{def: v, typ: t, value: val}, nil
}

// sparseSegments groups entries by outer index, sorted by inner index.
func sparseSegments(v *Value, outerSize int) ([][]Triplet, error) {
	segments := make([][]Triplet, outerSize)
	seen := make(map[[2]int]bool, len(v.Entries))
	for _, e := range v.Entries {
		key := [2]int{e.Row, e.Col}
		if seen[key] {
			return nil, fmt.Errorf("duplicate entry (%d,%d)", e.Row, e.Col)
		}
		seen[key] = true
		outer := e.Col
		if v.RowMajor {
			outer = e.Row
		}
		segments[outer] = append(segments[outer], e)
	}
	for _, seg := range segments {
		sort.Slice(seg, func(i, j int) bool {
			if v.RowMajor {
				return seg[i].Col < seg[j].Col
			}
			return seg[i].Row < seg[j].Row
		})
	}
	return segments, nil
}

func (b *builder) quaternion(v *Value) (*object, error) {
	sc, k := b.scalar(v)
	coeffs := b.denseType("Matrix", sc, &Value{Rows: 4, Cols: 1, Sentinel: v.Sentinel})
	t := b.im.Struct(fmt.Sprintf("Eigen::Quaternion<%s, 0>", sc.Name()), []*memimage.Type{sc},
		memimage.FieldSpec{Name: "m_coeffs", Type: coeffs})
	val := b.im.NewValue(t)

	addr, err := fieldAddress(val, "m_coeffs", "m_storage", "m_data", "array")
	if err != nil {
		return nil, err
	}
	for i, c := range v.Coeffs {
		if err := b.im.WriteScalar(addr+uint64(i*k.Size()), k, c); err != nil {
			return nil, err
		}
	}
	return &object{def: v, typ: t, value: val, data: addr}, nil
}

// fieldAddress follows a path of struct members and returns the address of
// the last one.
func fieldAddress(v *memimage.Value, path ...string) (uint64, error) {
	var cur host.Value = v
	for _, name := range path {
		next, err := cur.Field(name)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return cur.(*memimage.Value).Address(), nil
}

func (b *builder) writeField(v *memimage.Value, word uint64, size int, path ...string) error {
	addr, err := fieldAddress(v, path...)
	if err != nil {
		return err
	}
	return b.im.WriteUint(addr, size, word)
}
