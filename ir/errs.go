package ir

import "errors"

var (
	// ErrFinalized reports a mutation attempted on a finalized document.
	ErrFinalized = errors.New("document is finalized")

	// ErrPathNotFound reports a read-mode path resolution that ran off
	// the document.
	ErrPathNotFound = errors.New("path not found")

	// ErrWrongKind reports a container operation applied to a node of
	// another kind.
	ErrWrongKind = errors.New("wrong node kind")
)
