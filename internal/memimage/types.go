package memimage

import (
	"fmt"

	"github.com/roach88/eigenview/internal/host"
)

// ScalarKind is the machine representation of a scalar type.
type ScalarKind int

const (
	Float32 ScalarKind = iota + 1
	Float64
	Int32
	Int64
	Uint32
	Uint64
)

// Size returns the width of the scalar in bytes.
func (k ScalarKind) Size() int {
	switch k {
	case Float32, Int32, Uint32:
		return 4
	default:
		return 8
	}
}

// IsFloat reports whether k is an IEEE 754 type.
func (k ScalarKind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// Field is a struct member at a fixed byte offset.
type Field struct {
	Name   string
	Type   *Type
	Offset int
}

// FieldSpec declares a struct member; offsets are computed by Image.Struct.
type FieldSpec struct {
	Name string
	Type *Type
}

// Type is a type in an Image's type table. It implements host.Type.
type Type struct {
	im      *Image
	name    string
	kind    host.Kind
	scalar  ScalarKind
	size    int
	align   int
	target  *Type
	length  int
	fields  []Field
	args    []*Type
	isConst bool
	base    *Type
}

var _ host.Type = (*Type)(nil)

// Name returns the display name.
func (t *Type) Name() string { return t.name }

// Tag returns the struct tag without qualifiers.
func (t *Type) Tag() string {
	u := t
	if u.isConst {
		u = u.base
	}
	if u.kind != host.KindStruct {
		return ""
	}
	return u.name
}

// Kind returns the type's kind. Const types report the kind of their base.
func (t *Type) Kind() host.Kind {
	if t.isConst {
		return t.base.Kind()
	}
	return t.kind
}

// Target returns the pointee, referent, aliased or element type.
func (t *Type) Target() host.Type {
	u := t
	if u.isConst {
		u = u.base
	}
	if u.target == nil {
		return nil
	}
	return u.target
}

// Unqualified drops const.
func (t *Type) Unqualified() host.Type {
	if t.isConst {
		return t.base
	}
	return t
}

// StripTypedefs follows typedefs to the underlying type.
func (t *Type) StripTypedefs() host.Type {
	return t.strip()
}

func (t *Type) strip() *Type {
	u := t
	for u.kind == host.KindTypedef {
		u = u.target
	}
	return u
}

// resolve drops qualifiers and typedefs in any nesting order.
func (t *Type) resolve() *Type {
	u := t
	for {
		switch {
		case u.isConst:
			u = u.base
		case u.kind == host.KindTypedef:
			u = u.target
		default:
			return u
		}
	}
}

// Pointer returns the pointer-to-t type.
func (t *Type) Pointer() host.Type {
	return t.im.PointerTo(t)
}

// TemplateArgument returns the i-th type template argument.
func (t *Type) TemplateArgument(i int) (host.Type, error) {
	u := t.resolve()
	if i < 0 || i >= len(u.args) {
		return nil, fmt.Errorf("%w: %s has no template argument %d", ErrNoTemplateArgument, t.name, i)
	}
	return u.args[i], nil
}

// Size returns the size in bytes.
func (t *Type) Size() int {
	if t.isConst {
		return t.base.Size()
	}
	return t.size
}

// Scalar returns the scalar kind, or 0 for non-scalar types.
func (t *Type) Scalar() ScalarKind {
	return t.resolve().scalar
}

// Fields returns the struct members in declaration order.
func (t *Type) Fields() []Field {
	return t.resolve().fields
}

func (t *Type) field(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
