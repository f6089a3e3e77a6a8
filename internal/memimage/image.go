package memimage

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/eigenview/internal/host"
)

// DefaultBase is the address of the first byte of a new image. It is
// non-zero so that a zero pointer is always null.
const DefaultBase uint64 = 0x10000

// pointerSize is the width of pointers and references in the image.
const pointerSize = 8

// Image is a flat little-endian address space with a type table.
// It implements host.Session.
type Image struct {
	order binary.ByteOrder
	base  uint64
	mem   []byte

	types    map[string]*Type
	pointers map[*Type]*Type
	consts   map[*Type]*Type
	refs     map[*Type]*Type
}

var _ host.Session = (*Image)(nil)

// New creates an empty image starting at DefaultBase.
func New() *Image {
	return &Image{
		order:    binary.LittleEndian,
		base:     DefaultBase,
		types:    make(map[string]*Type),
		pointers: make(map[*Type]*Type),
		consts:   make(map[*Type]*Type),
		refs:     make(map[*Type]*Type),
	}
}

// typeKey normalizes whitespace so that "Eigen::Matrix<double, 2, 2>" and
// "Eigen::Matrix<double,2,2>" name the same type.
func typeKey(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// LookupType resolves a registered scalar, struct or typedef by name.
func (im *Image) LookupType(name string) (host.Type, error) {
	t, ok := im.types[typeKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}

// Type is LookupType returning the concrete type, or nil.
func (im *Image) Type(name string) *Type {
	return im.types[typeKey(name)]
}

func (im *Image) register(t *Type) *Type {
	key := typeKey(t.name)
	if existing, ok := im.types[key]; ok {
		return existing
	}
	im.types[key] = t
	return t
}

// Scalar registers (or returns) a scalar type.
func (im *Image) Scalar(name string, k ScalarKind) *Type {
	return im.register(&Type{
		im:     im,
		name:   name,
		kind:   host.KindScalar,
		scalar: k,
		size:   k.Size(),
		align:  k.Size(),
	})
}

// PointerTo returns the pointer type for t.
func (im *Image) PointerTo(t *Type) *Type {
	if p, ok := im.pointers[t]; ok {
		return p
	}
	p := &Type{
		im:     im,
		name:   t.name + " *",
		kind:   host.KindPointer,
		size:   pointerSize,
		align:  pointerSize,
		target: t,
	}
	im.pointers[t] = p
	return p
}

// RefTo returns the reference type for t.
func (im *Image) RefTo(t *Type) *Type {
	if r, ok := im.refs[t]; ok {
		return r
	}
	r := &Type{
		im:     im,
		name:   t.name + " &",
		kind:   host.KindRef,
		size:   pointerSize,
		align:  pointerSize,
		target: t,
	}
	im.refs[t] = r
	return r
}

// Const returns the const-qualified t.
func (im *Image) Const(t *Type) *Type {
	if t.isConst {
		return t
	}
	if c, ok := im.consts[t]; ok {
		return c
	}
	c := &Type{
		im:      im,
		name:    "const " + t.name,
		kind:    t.kind,
		isConst: true,
		base:    t,
	}
	im.consts[t] = c
	return c
}

// ArrayOf returns an inline array of n elements of t.
func (im *Image) ArrayOf(t *Type, n int) *Type {
	return &Type{
		im:     im,
		name:   fmt.Sprintf("%s [%d]", t.name, n),
		kind:   host.KindArray,
		size:   t.Size() * n,
		align:  t.resolve().align,
		target: t,
		length: n,
	}
}

// Typedef registers name as an alias for t.
func (im *Image) Typedef(name string, t *Type) *Type {
	return im.register(&Type{
		im:     im,
		name:   name,
		kind:   host.KindTypedef,
		size:   t.Size(),
		align:  t.resolve().align,
		target: t,
	})
}

// Struct registers a struct laid out with natural alignment. args are the
// type template arguments reported by TemplateArgument. Registering a name
// twice returns the first definition.
func (im *Image) Struct(name string, args []*Type, specs ...FieldSpec) *Type {
	if existing := im.Type(name); existing != nil {
		return existing
	}
	t := &Type{
		im:    im,
		name:  name,
		kind:  host.KindStruct,
		align: 1,
		args:  args,
	}
	off := 0
	for _, s := range specs {
		a := s.Type.resolve().align
		off = alignUp(off, a)
		t.fields = append(t.fields, Field{Name: s.Name, Type: s.Type, Offset: off})
		off += s.Type.Size()
		if a > t.align {
			t.align = a
		}
	}
	t.size = alignUp(off, t.align)
	return im.register(t)
}

// Alloc reserves size zeroed bytes aligned to align and returns their address.
func (im *Image) Alloc(size, align int) uint64 {
	start := alignUp(len(im.mem), align)
	grown := start + size
	if grown > len(im.mem) {
		im.mem = append(im.mem, make([]byte, grown-len(im.mem))...)
	}
	return im.base + uint64(start)
}

// NewValue allocates a zeroed instance of t and returns it as a value.
func (im *Image) NewValue(t *Type) *Value {
	addr := im.Alloc(t.Size(), t.resolve().align)
	return im.At(t, addr)
}

// At returns the value of type t stored at addr.
func (im *Image) At(t *Type, addr uint64) *Value {
	return &Value{im: im, typ: t, addr: addr}
}

// ReadAt implements io.ReaderAt over image addresses.
func (im *Image) ReadAt(p []byte, off int64) (int, error) {
	start, err := im.offset(uint64(off), len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, im.mem[start:start+len(p)]), nil
}

func (im *Image) offset(addr uint64, n int) (int, error) {
	if addr < im.base || addr-im.base+uint64(n) > uint64(len(im.mem)) {
		return 0, fmt.Errorf("%w: 0x%x+%d", ErrOutOfBounds, addr, n)
	}
	return int(addr - im.base), nil
}

// WriteUint stores the low size bytes of v at addr.
func (im *Image) WriteUint(addr uint64, size int, v uint64) error {
	start, err := im.offset(addr, size)
	if err != nil {
		return err
	}
	b := im.mem[start : start+size]
	switch size {
	case 4:
		im.order.PutUint32(b, uint32(v))
	case 8:
		im.order.PutUint64(b, v)
	default:
		return fmt.Errorf("memimage: unsupported width %d", size)
	}
	return nil
}

// WriteScalar stores v at addr using the representation of k.
func (im *Image) WriteScalar(addr uint64, k ScalarKind, v float64) error {
	switch k {
	case Float32:
		return im.WriteUint(addr, 4, uint64(math.Float32bits(float32(v))))
	case Float64:
		return im.WriteUint(addr, 8, math.Float64bits(v))
	default:
		return im.WriteInt(addr, k, int64(v))
	}
}

// WriteInt stores an integer at addr using the representation of k.
func (im *Image) WriteInt(addr uint64, k ScalarKind, v int64) error {
	if k.IsFloat() {
		return im.WriteScalar(addr, k, float64(v))
	}
	return im.WriteUint(addr, k.Size(), uint64(v))
}

// WritePointer stores a pointer to target at addr.
func (im *Image) WritePointer(addr, target uint64) error {
	return im.WriteUint(addr, pointerSize, target)
}

// Len returns the number of allocated bytes.
func (im *Image) Len() int {
	return len(im.mem)
}
