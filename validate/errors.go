package validate

import (
	"errors"
	"fmt"

	"github.com/eure-format/go-eure/ir/epath"
)

// Code classifies a diagnostic. Codes are stable identifiers for
// programmatic handling; messages are for people.
type Code string

const (
	CodeTypeMismatch      Code = "type_mismatch"
	CodeMissingField      Code = "missing_field"
	CodeUnknownField      Code = "unknown_field"
	CodeArityMismatch     Code = "arity_mismatch"
	CodeLiteralMismatch   Code = "literal_mismatch"
	CodeOutOfRange        Code = "out_of_range"
	CodeNotMultipleOf     Code = "not_multiple_of"
	CodeTooShort          Code = "too_short"
	CodeTooLong           Code = "too_long"
	CodePatternMismatch   Code = "pattern_mismatch"
	CodeTooFewItems       Code = "too_few_items"
	CodeTooManyItems      Code = "too_many_items"
	CodeVariantTagMissing Code = "variant_tag_missing"
	CodeVariantUnknown    Code = "variant_unknown"
	CodeVariantAmbiguous  Code = "variant_ambiguous"
	CodeDanglingReference Code = "dangling_reference"
	CodeDeprecated        Code = "deprecated"
)

// Error is one document defect: where, what class, and a message.
// Expected and Actual carry renderings of the two sides where a
// comparison failed; diagnostics use them for diffs.
type Error struct {
	Path     epath.Path
	Code     Code
	Message  string
	Expected string
	Actual   string
}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// Warning is advisory: the document validates, but something deserves
// attention, e.g. use of a deprecated field.
type Warning struct {
	Path    epath.Path
	Code    Code
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Path, w.Code, w.Message)
}

// Result collects every diagnostic of a validation run. Structural
// errors order before completeness errors; within a pass, document
// order.
type Result struct {
	Errors   []Error
	Warnings []Warning
}

// OK reports whether the document validates. Warnings do not fail a
// document.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Validation aborts with an error, as opposed to producing Result
// diagnostics, only when the run itself cannot proceed.
var (
	// ErrNotFinalized reports validation of a document still in its
	// builder phase.
	ErrNotFinalized = errors.New("document is not finalized")

	// ErrDepthExceeded reports nesting beyond Options.MaxDepth.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")

	// ErrSchemaCorrupt reports a schema node id that does not resolve,
	// which can only come from a hand-built schema.
	ErrSchemaCorrupt = errors.New("schema is corrupt")
)
