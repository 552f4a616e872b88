// Package schema implements the Eure schema type system and the
// extractor that synthesizes a schema from the extension-namespaced
// annotations of an ordinary document.
//
// # Data model
//
// A Schema owns all of its nodes in one growable table addressed by
// NodeId, the same arena discipline package ir uses for documents.
// The schema graph may be cyclic — recursive types are expressed as
// Reference nodes resolved lazily against the schema's registry of
// named types — so children are always ids, never pointers.
//
// Node content is a closed set: the primitives (Text, Integer, Float,
// Boolean, Null, Any) with optional constraints, Literal (an exact
// value), Record (ordered unique named fields with an unknown-fields
// policy), Array, Map, Tuple, Union (named variants with a variant
// representation), and Reference.
//
// # Extraction
//
// Extract walks a finalized document and reads its '$'-annotations:
//
//	script.$type = ".string"            inline overlay on a data field
//	$types.Point.x.$type = ".float"     reusable named type
//	shape.$variants.circle.radius ...   per-variant field schemas
//
// The extractor reports whether the source was a pure schema
// (declarations only) or a self-describing document mixing example
// data with inline overlays. Unrecognized '$' keys are preserved as
// metadata rather than rejected.
package schema
