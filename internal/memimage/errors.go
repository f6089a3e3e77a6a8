package memimage

import "errors"

var (
	// ErrOutOfBounds indicates a read or write outside the image.
	ErrOutOfBounds = errors.New("memimage: address out of bounds")

	// ErrNullPointer indicates a dereference of a null pointer.
	ErrNullPointer = errors.New("memimage: null pointer dereference")

	// ErrNoField indicates a struct has no member of the requested name.
	ErrNoField = errors.New("memimage: no such field")

	// ErrNotStruct indicates a field access on a non-struct value.
	ErrNotStruct = errors.New("memimage: value is not a struct")

	// ErrNotPointer indicates a pointer operation on a non-pointer value.
	ErrNotPointer = errors.New("memimage: value is not a pointer")

	// ErrNotScalar indicates a scalar read on a non-scalar value.
	ErrNotScalar = errors.New("memimage: value is not a scalar")

	// ErrBadCast indicates a cast the image cannot express.
	ErrBadCast = errors.New("memimage: invalid cast")

	// ErrUnknownType indicates a type name absent from the type table.
	ErrUnknownType = errors.New("memimage: unknown type")

	// ErrNoTemplateArgument indicates a template argument index out of range.
	ErrNoTemplateArgument = errors.New("memimage: no template argument")
)
