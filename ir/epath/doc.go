// Package epath implements Eure paths: the addressing scheme that names
// a node in a document from its root.
//
// A path is an ordered sequence of segments:
//   - "a.b" → map field "b" under map field "a"
//   - "a.$types" → extension field "$types" (a separate key namespace)
//   - "a[0]" → array element 0
//   - "a[]" → unspecified array position (append position)
//   - "a.0" → tuple element 0
//   - `a["x y"]` → map entry keyed by the literal "x y"
//
// Paths render deterministically, so two diagnostics that point at the
// same node always print the same string.
package epath
