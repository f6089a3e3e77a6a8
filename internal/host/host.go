// Package host defines the capability interface the printers need from a
// debugging environment.
//
// The printers never talk to a concrete debugger API. Any integration (a
// live debugger binding, a core-file reader, the in-memory image used by the
// CLI and tests) implements Value, Type and Session, and the printer core
// depends only on these three interfaces.
//
// Values are borrowed for the duration of one display request. Nothing in
// the printer core retains a Value after returning, and nothing writes
// through one.
package host

// Kind classifies a Type the way a debugger's type system does.
type Kind int

const (
	// KindScalar is an arithmetic type (float, double, int, long, ...).
	KindScalar Kind = iota
	// KindPointer is a pointer to Target().
	KindPointer
	// KindArray is a fixed-length inline array of Target().
	KindArray
	// KindStruct is a class or struct with named fields.
	KindStruct
	// KindRef is a C++ reference to Target().
	KindRef
	// KindTypedef is an alias for Target().
	KindTypedef
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindRef:
		return "reference"
	case KindTypedef:
		return "typedef"
	default:
		return "unknown"
	}
}

// Type is the debugger's view of a type.
type Type interface {
	// Name is the display name, including qualifiers ("const Eigen::...").
	Name() string

	// Tag is the struct tag with qualifiers removed. Empty for non-struct types.
	Tag() string

	// Kind classifies the type.
	Kind() Kind

	// Target is the referent of a pointer, reference or typedef, or the
	// element type of an array. Nil for other kinds.
	Target() Type

	// Unqualified drops const/volatile.
	Unqualified() Type

	// StripTypedefs follows typedef chains to the underlying type.
	StripTypedefs() Type

	// Pointer returns the pointer-to-this type.
	Pointer() Type

	// TemplateArgument returns the i-th type template argument.
	TemplateArgument(i int) (Type, error)

	// Size is the size of one instance in bytes.
	Size() int
}

// Value is a typed handle onto inspected-process memory.
type Value interface {
	// Type returns the static type of the value.
	Type() Type

	// Field reads a named member. References are followed first.
	Field(name string) (Value, error)

	// Cast reinterprets the value as t. Casting an inline array to a pointer
	// type yields a pointer to its first element.
	Cast(t Type) (Value, error)

	// Deref follows a pointer or reference.
	Deref() (Value, error)

	// Advance moves a pointer by n elements of its target type.
	Advance(n int) (Value, error)

	// Int reads a scalar as a signed integer.
	Int() (int64, error)

	// Float reads a scalar as a float64.
	Float() (float64, error)

	// Pointer returns the address held by a pointer value. Zero is null.
	Pointer() (uint64, error)
}

// Session is the part of the debugger that is not tied to one value.
type Session interface {
	// LookupType resolves a type by its display name.
	LookupType(name string) (Type, error)
}

// Stripped returns the type printers dispatch on: references are followed,
// qualifiers dropped and typedefs stripped.
func Stripped(t Type) Type {
	if t == nil {
		return nil
	}
	if t.Kind() == KindRef {
		if target := t.Target(); target != nil {
			t = target
		}
	}
	return t.Unqualified().StripTypedefs()
}
