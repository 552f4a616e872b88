package schema

import (
	"errors"
	"fmt"

	"github.com/eure-format/go-eure/ir/epath"
)

var (
	// ErrNotFinalized reports extraction attempted on a document still
	// in its builder phase.
	ErrNotFinalized = errors.New("document is not finalized")

	// ErrConflict reports mutually exclusive type annotations on one
	// node, e.g. an inline "$type" next to "$variants", or a
	// ".$types.Name" reference combined with inline constraints.
	ErrConflict = errors.New("conflicting type annotations")

	// ErrDuplicateField reports two record fields with the same
	// serialized name.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrMalformedConstraint reports a constraint annotation whose
	// value has the wrong kind, e.g. a string "$min".
	ErrMalformedConstraint = errors.New("malformed constraint")

	// ErrBadType reports an unparseable "$type" designator.
	ErrBadType = errors.New("bad type designator")

	// ErrBadAnnotation reports a recognized annotation with an
	// unusable value.
	ErrBadAnnotation = errors.New("bad annotation")

	// ErrEmptyVariant reports a zero-field union variant under a
	// representation that cannot express unit variants.
	ErrEmptyVariant = errors.New("zero-field variant not representable")
)

// Error is an extraction-time structural defect. It aborts extraction
// and carries the offending path.
type Error struct {
	Path epath.Path
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(path epath.Path, err error) *Error {
	return &Error{Path: path, Err: err}
}

func errAtf(path epath.Path, sentinel error, format string, args ...any) *Error {
	return &Error{Path: path, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}
