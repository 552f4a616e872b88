package schema

import "github.com/eure-format/go-eure/ir"

// Metadata is documentation attached to a schema node. It never
// affects whether a document validates; consumers are diagnostics,
// editor hover, and code generation.
type Metadata struct {
	Description string
	Deprecated  bool
	Default     *ir.Value
	Examples    []ir.Value

	// Rename is the serialized name override for code generators.
	Rename string

	// Extra preserves unrecognized '$' annotations in document order,
	// for forward compatibility.
	Extra []Annotation
}

type Annotation struct {
	Key   string
	Value ir.Value
}

func (m *Metadata) empty() bool {
	return m.Description == "" && !m.Deprecated && m.Default == nil &&
		len(m.Examples) == 0 && m.Rename == "" && len(m.Extra) == 0
}

// NamingOptions carry the informational naming conventions declared by
// "$rename-all"; external code generation consumes them, validation
// ignores them.
type NamingOptions struct {
	// RenameAll is a case convention name, e.g. "camelCase" or
	// "kebab-case".
	RenameAll string
}
