package memimage

import (
	"fmt"
	"math"

	"github.com/roach88/eigenview/internal/host"
)

// Value is a typed location in an Image. It implements host.Value.
//
// Pointers produced by Cast and Advance have no storage of their own; they
// carry their address immediately, the way a debugger's computed values do.
type Value struct {
	im   *Image
	typ  *Type
	addr uint64

	immediate bool
	ptr       uint64
}

var _ host.Value = (*Value)(nil)

// Type returns the static type.
func (v *Value) Type() host.Type { return v.typ }

// Address returns the location of the value, or 0 for computed pointers.
func (v *Value) Address() uint64 {
	if v.immediate {
		return 0
	}
	return v.addr
}

func (v *Value) reader() *reader {
	return newReader(v.im, v.im.order)
}

// followRef returns the referent when v is a reference, else v.
func (v *Value) followRef() (*Value, error) {
	if v.typ.resolve().kind != host.KindRef {
		return v, nil
	}
	return v.deref()
}

// Field reads a struct member.
func (v *Value) Field(name string) (host.Value, error) {
	obj, err := v.followRef()
	if err != nil {
		return nil, err
	}
	st := obj.typ.resolve()
	if st.kind != host.KindStruct || obj.immediate {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, obj.typ.name)
	}
	f, ok := st.field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoField, st.name, name)
	}
	return obj.im.At(f.Type, obj.addr+uint64(f.Offset)), nil
}

// Cast reinterprets the value. Arrays and pointers cast to a pointer type
// yield a computed pointer; everything else is reinterpreted in place.
func (v *Value) Cast(t host.Type) (host.Value, error) {
	dst, ok := t.(*Type)
	if !ok || dst.im != v.im {
		return nil, fmt.Errorf("%w: type %s is not from this image", ErrBadCast, t.Name())
	}
	src, err := v.followRef()
	if err != nil {
		return nil, err
	}

	srcKind := src.typ.resolve().kind
	if dst.resolve().kind == host.KindPointer {
		switch srcKind {
		case host.KindArray:
			return &Value{im: v.im, typ: dst, immediate: true, ptr: src.addr}, nil
		case host.KindPointer:
			p, err := src.pointer()
			if err != nil {
				return nil, err
			}
			return &Value{im: v.im, typ: dst, immediate: true, ptr: p}, nil
		default:
			return nil, fmt.Errorf("%w: %s to %s", ErrBadCast, src.typ.name, dst.name)
		}
	}
	if src.immediate {
		return nil, fmt.Errorf("%w: computed %s to %s", ErrBadCast, src.typ.name, dst.name)
	}
	return v.im.At(dst, src.addr), nil
}

// Deref follows a pointer or reference.
func (v *Value) Deref() (host.Value, error) {
	return v.deref()
}

func (v *Value) deref() (*Value, error) {
	t := v.typ.resolve()
	if t.kind != host.KindPointer && t.kind != host.KindRef {
		return nil, fmt.Errorf("%w: %s", ErrNotPointer, v.typ.name)
	}
	p, err := v.pointer()
	if err != nil {
		return nil, err
	}
	if p == 0 {
		return nil, ErrNullPointer
	}
	return v.im.At(t.target, p), nil
}

// Advance moves a pointer by n elements.
func (v *Value) Advance(n int) (host.Value, error) {
	t := v.typ.resolve()
	if t.kind != host.KindPointer {
		return nil, fmt.Errorf("%w: %s", ErrNotPointer, v.typ.name)
	}
	p, err := v.pointer()
	if err != nil {
		return nil, err
	}
	step := int64(n) * int64(t.target.Size())
	return &Value{im: v.im, typ: v.typ, immediate: true, ptr: uint64(int64(p) + step)}, nil
}

// Pointer returns the address a pointer or reference holds.
func (v *Value) Pointer() (uint64, error) {
	t := v.typ.resolve()
	if t.kind != host.KindPointer && t.kind != host.KindRef {
		return 0, fmt.Errorf("%w: %s", ErrNotPointer, v.typ.name)
	}
	return v.pointer()
}

func (v *Value) pointer() (uint64, error) {
	if v.immediate {
		return v.ptr, nil
	}
	return v.reader().Uint(v.addr, pointerSize)
}

// Int reads a scalar as int64. Floating-point scalars are truncated.
func (v *Value) Int() (int64, error) {
	k, err := v.scalarKind()
	if err != nil {
		return 0, err
	}
	r := v.reader()
	switch k {
	case Float32, Float64:
		f, err := v.Float()
		return int64(f), err
	case Int32:
		u, err := r.Uint(v.addr, 4)
		return int64(int32(uint32(u))), err
	case Uint32:
		u, err := r.Uint(v.addr, 4)
		return int64(u), err
	default:
		u, err := r.Uint(v.addr, 8)
		return int64(u), err
	}
}

// Float reads a scalar as float64.
func (v *Value) Float() (float64, error) {
	k, err := v.scalarKind()
	if err != nil {
		return 0, err
	}
	r := v.reader()
	switch k {
	case Float32:
		u, err := r.Uint(v.addr, 4)
		return float64(math.Float32frombits(uint32(u))), err
	case Float64:
		u, err := r.Uint(v.addr, 8)
		return math.Float64frombits(u), err
	case Uint64:
		u, err := r.Uint(v.addr, 8)
		return float64(u), err
	default:
		i, err := v.Int()
		return float64(i), err
	}
}

func (v *Value) scalarKind() (ScalarKind, error) {
	t := v.typ.resolve()
	if t.kind != host.KindScalar || v.immediate {
		return 0, fmt.Errorf("%w: %s", ErrNotScalar, v.typ.name)
	}
	return t.scalar, nil
}

// String renders the value for diagnostics.
func (v *Value) String() string {
	if v.immediate {
		return fmt.Sprintf("(%s) 0x%x", v.typ.name, v.ptr)
	}
	return fmt.Sprintf("%s @ 0x%x", v.typ.name, v.addr)
}
