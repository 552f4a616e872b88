package schema

import "fmt"

// Schema is a schema document: a root node, the node table it lives
// in, and a registry of reusable named types. Once extraction (or
// programmatic construction) finishes, a Schema is treated as an
// immutable snapshot and may be shared across concurrent validations.
type Schema struct {
	nodes []Node

	// Root is the schema applied to a document's root.
	Root NodeId

	// Types is the registry "$types" declarations populate.
	Types *Registry

	// Naming carries informational naming options for code
	// generators.
	Naming NamingOptions
}

func New() *Schema {
	return &Schema{Types: NewRegistry()}
}

// Add appends a node to the table and returns its id.
func (s *Schema) Add(n Node) NodeId {
	s.nodes = append(s.nodes, n)
	return NodeId(len(s.nodes))
}

// Node dereferences an id issued by this schema. A zero or foreign id
// returns nil; the validator treats that as a corrupt-schema input,
// not a document mistake.
func (s *Schema) Node(id NodeId) *Node {
	if id == InvalidNode || int(id) > len(s.nodes) {
		return nil
	}
	return &s.nodes[id-1]
}

// Resolve looks up a named type in the registry.
func (s *Schema) Resolve(name string) (NodeId, bool) {
	return s.Types.Get(name)
}

func (s *Schema) Len() int { return len(s.nodes) }

func (s *Schema) String() string {
	return fmt.Sprintf("Schema{%d nodes, %d types}", len(s.nodes), s.Types.Len())
}
