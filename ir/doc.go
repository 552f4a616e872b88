// Package ir implements the generic document tree that Eure data and
// Eure schemas are both built on.
//
// A Document owns all of its nodes in one table addressed by NodeId.
// Ids are issued only by the owning document and are never valid in
// another document. A document is exclusively owned by its builder
// until Finalize is called; afterwards it is an immutable snapshot
// that may be shared freely across concurrent readers.
//
// Node content is a closed set: Hole (declared but unfilled), the
// primitives (null, bool, integer, float, string, language-tagged
// text), Map (ordered, unique keys), Array, and Tuple. Map keys live
// in three non-colliding namespaces: plain identifiers, extension
// identifiers (the '$' namespace reserved for schema annotations), and
// arbitrary literal values.
package ir
