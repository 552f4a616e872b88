package ir

import "fmt"

// Document owns a tree of nodes. It starts in a mutable builder phase,
// exclusively owned by its creator; Finalize turns it into an
// immutable snapshot that can be shared freely.
type Document struct {
	nodes []Node
	root  NodeId
	final bool
}

// New returns a document whose root is an empty map.
func New() *Document {
	d := &Document{}
	d.root = d.add(Node{Kind: MapKind})
	return d
}

func (d *Document) add(n Node) NodeId {
	d.nodes = append(d.nodes, n)
	return NodeId(len(d.nodes))
}

// Root returns the root node's id.
func (d *Document) Root() NodeId { return d.root }

// Finalize freezes the document. Further builder calls fail with
// ErrFinalized.
func (d *Document) Finalize() { d.final = true }

func (d *Document) Finalized() bool { return d.final }

// Node dereferences an id issued by this document. It never fails for
// such ids; a foreign or zero id is a caller bug and panics.
func (d *Document) Node(id NodeId) *Node {
	if id == InvalidNode || int(id) > len(d.nodes) {
		panic(fmt.Sprintf("ir: invalid node id %d (document has %d nodes)", id, len(d.nodes)))
	}
	return &d.nodes[id-1]
}

// Kind is a convenience for Node(id).Kind.
func (d *Document) Kind(id NodeId) Kind { return d.Node(id).Kind }

// Len returns the number of nodes the document has issued.
func (d *Document) Len() int { return len(d.nodes) }

func (d *Document) new(n Node) (NodeId, error) {
	if d.final {
		return InvalidNode, ErrFinalized
	}
	return d.add(n), nil
}

func (d *Document) NewHole() (NodeId, error) { return d.new(Node{Kind: HoleKind}) }
func (d *Document) NewNull() (NodeId, error) { return d.new(Node{Kind: NullKind}) }

func (d *Document) NewBool(v bool) (NodeId, error) {
	return d.new(Node{Kind: BoolKind, Bool: v})
}

func (d *Document) NewInteger(v int64) (NodeId, error) {
	return d.new(Node{Kind: IntegerKind, Int: v})
}

func (d *Document) NewFloat(v float64) (NodeId, error) {
	return d.new(Node{Kind: FloatKind, Float: v})
}

func (d *Document) NewString(v string) (NodeId, error) {
	return d.new(Node{Kind: StringKind, Str: v})
}

// NewText creates a language-tagged text node, e.g. lang "en".
func (d *Document) NewText(lang, v string) (NodeId, error) {
	return d.new(Node{Kind: TextKind, Lang: lang, Str: v})
}

func (d *Document) NewMap() (NodeId, error)   { return d.new(Node{Kind: MapKind}) }
func (d *Document) NewArray() (NodeId, error) { return d.new(Node{Kind: ArrayKind}) }
func (d *Document) NewTuple() (NodeId, error) { return d.new(Node{Kind: TupleKind}) }

// MapSet binds key to v in map m, replacing the binding if the key is
// already present. Keys stay unique and keep insertion order.
func (d *Document) MapSet(m NodeId, key ObjectKey, v NodeId) error {
	if d.final {
		return ErrFinalized
	}
	n := d.Node(m)
	if n.Kind != MapKind {
		return fmt.Errorf("%w: MapSet on %s", ErrWrongKind, n.Kind)
	}
	for i, k := range n.Keys {
		if k.Equal(key) {
			n.Kids[i] = v
			return nil
		}
	}
	n.Keys = append(n.Keys, key)
	n.Kids = append(n.Kids, v)
	return nil
}

// MapGet looks up key in map m.
func (d *Document) MapGet(m NodeId, key ObjectKey) (NodeId, bool) {
	n := d.Node(m)
	if n.Kind != MapKind {
		return InvalidNode, false
	}
	for i, k := range n.Keys {
		if k.Equal(key) {
			return n.Kids[i], true
		}
	}
	return InvalidNode, false
}

// MapIdent looks up a plain identifier key in map m.
func (d *Document) MapIdent(m NodeId, name string) (NodeId, bool) {
	return d.MapGet(m, IdentKey(name))
}

// MapExt looks up an extension key in map m.
func (d *Document) MapExt(m NodeId, name string) (NodeId, bool) {
	return d.MapGet(m, ExtKey(name))
}

func (d *Document) Append(container, v NodeId) error {
	if d.final {
		return ErrFinalized
	}
	n := d.Node(container)
	if n.Kind != ArrayKind && n.Kind != TupleKind {
		return fmt.Errorf("%w: Append on %s", ErrWrongKind, n.Kind)
	}
	n.Kids = append(n.Kids, v)
	return nil
}
