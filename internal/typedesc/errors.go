package typedesc

import (
	"errors"
	"fmt"
)

// Error represents a failure to decode a container from its type metadata or
// memory.
//
// Decode errors include:
//   - Malformed type: no template-argument segment in the type name
//   - Missing parameter: fewer template arguments than the family requires
//   - Invalid dimension: a size parameter is neither a sentinel nor an integer
//   - Unrecognized view encoding: no owning type inside a block/view name
//   - Host access: a field, pointer or scalar read failed
//
// Every failure is a distinguishable value; the dispatcher decides whether to
// surface it or fall back to "no printer".
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// TypeName is the type being decoded, when known.
	TypeName string

	// Err is the underlying cause (parse error, host error).
	Err error
}

// ErrorCode categorizes decode errors.
type ErrorCode string

const (
	// ErrCodeMalformedType indicates the <...> segment is absent or empty.
	ErrCodeMalformedType ErrorCode = "MALFORMED_TYPE"

	// ErrCodeMissingParameter indicates too few template arguments.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"

	// ErrCodeInvalidDimension indicates a size or option parameter failed to parse.
	ErrCodeInvalidDimension ErrorCode = "INVALID_DIMENSION"

	// ErrCodeUnrecognizedView indicates the owning type of a view could not be located.
	ErrCodeUnrecognizedView ErrorCode = "UNRECOGNIZED_VIEW_ENCODING"

	// ErrCodeUnsupportedView indicates a view whose owning type stores data inline.
	ErrCodeUnsupportedView ErrorCode = "UNSUPPORTED_VIEW"

	// ErrCodeUnsupportedScalar indicates a scalar type outside the supported set (complex).
	ErrCodeUnsupportedScalar ErrorCode = "UNSUPPORTED_SCALAR"

	// ErrCodeHostAccess indicates the host failed to read a field or memory.
	ErrCodeHostAccess ErrorCode = "HOST_ACCESS"

	// ErrCodeIncompleteGrid indicates iteration did not cover every logical cell.
	ErrCodeIncompleteGrid ErrorCode = "INCOMPLETE_GRID"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.TypeName != "" {
		msg = fmt.Sprintf("%s (type=%s)", msg, e.TypeName)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsMalformedType reports whether err is a malformed type error.
func IsMalformedType(err error) bool {
	return CodeOf(err) == ErrCodeMalformedType
}

// IsMissingParameter reports whether err is a missing parameter error.
func IsMissingParameter(err error) bool {
	return CodeOf(err) == ErrCodeMissingParameter
}

// IsUnrecognizedView reports whether err is an unrecognized view encoding error.
func IsUnrecognizedView(err error) bool {
	return CodeOf(err) == ErrCodeUnrecognizedView
}

// NewMalformedTypeError creates an Error for a type name without template arguments.
func NewMalformedTypeError(typeName string) *Error {
	return &Error{
		Code:     ErrCodeMalformedType,
		Message:  "template argument list not found",
		TypeName: typeName,
	}
}

// NewMissingParameterError creates an Error for a short template argument list.
func NewMissingParameterError(typeName string, got, want int) *Error {
	return &Error{
		Code:     ErrCodeMissingParameter,
		Message:  fmt.Sprintf("expected at least %d template arguments, got %d", want, got),
		TypeName: typeName,
	}
}

// NewHostError wraps a host access failure with the operation that failed.
func NewHostError(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeHostAccess,
		Message: op,
		Err:     err,
	}
}
