package schema

import "fmt"

// Registry maps reusable type names to schema nodes, preserving
// declaration order. Unlike a live registry behind a lock, a schema's
// registry is written only during extraction and is immutable
// afterwards, so reads need no synchronization.
type Registry struct {
	names  []string
	byName map[string]NodeId
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]NodeId)}
}

// Register binds name to id. Duplicate names are rejected.
func (r *Registry) Register(name string, id NodeId) error {
	if name == "" {
		return fmt.Errorf("type name cannot be empty")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("type %q already registered", name)
	}
	r.names = append(r.names, name)
	r.byName[name] = id
	return nil
}

// Get looks up a type by name.
func (r *Registry) Get(name string) (NodeId, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Names returns the registered names in declaration order.
func (r *Registry) Names() []string {
	res := make([]string, len(r.names))
	copy(res, r.names)
	return res
}

func (r *Registry) Len() int { return len(r.names) }
