package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decoding error kinds. Every failure returned by this package matches
// exactly one of these with errors.Is. ErrUnsupported is kept for
// defined wire features without a decoder; double, datetime and fault
// are all decoded, so nothing currently returns it.
var (
	ErrTruncatedInput     = errors.New("truncated input")
	ErrInvalidEncoding    = errors.New("invalid utf-8 encoding")
	ErrUnknownTag         = errors.New("unknown value tag")
	ErrUnknownEnvelopeTag = errors.New("unknown envelope tag")
	ErrUnsupported        = errors.New("unsupported wire feature")
	ErrMissingMagic       = errors.New("missing protocol magic header")
	ErrInvalidFault       = errors.New("invalid fault response")
	ErrDuplicateField     = errors.New("duplicate struct field")
	ErrMaxDepthExceeded   = errors.New("maximum nesting depth exceeded")
	ErrAllocationTooLarge = errors.New("length exceeds allocation limit")
)

// TruncatedError reports a read past the end of the buffer.
type TruncatedError struct {
	Pos  int    // cursor offset where the read started
	Need int    // bytes the read required
	Have int    // bytes that were left
	What string // the field being read, e.g. "tag" or "text length"
}

// Error implements the error interface.
func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%v reading %s at offset %d: need %d bytes, have %d (%d short)",
		ErrTruncatedInput, e.What, e.Pos, e.Need, e.Have, e.Short())
}

// Short returns how many bytes were missing.
func (e *TruncatedError) Short() int {
	return e.Need - e.Have
}

// Unwrap returns ErrTruncatedInput.
func (e *TruncatedError) Unwrap() error {
	return ErrTruncatedInput
}

// FieldError represents a decoding error inside an aggregate, with the
// path of struct members and array indices leading to it.
type FieldError struct {
	FieldPath []string // e.g., ["args", "[2]", "name"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at path %s: %v", e.Path(), e.Err)
}

// Path joins the field path, attaching index segments without a dot.
func (e *FieldError) Path() string {
	var sb strings.Builder
	for i, segment := range e.FieldPath {
		if i > 0 && !strings.HasPrefix(segment, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(segment)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// wrapWithField prefixes the error path with a struct member name
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}

// wrapWithIndex prefixes the error path with an array index
func wrapWithIndex(err error, index uint64) error {
	return wrapWithField(err, fmt.Sprintf("[%d]", index))
}
