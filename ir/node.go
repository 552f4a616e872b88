package ir

import "fmt"

// NodeId is an opaque handle into one Document's node table. The zero
// value is invalid. Ids are only issued by their owning document.
type NodeId uint32

// InvalidNode is the zero NodeId.
const InvalidNode NodeId = 0

type Kind int

const (
	HoleKind Kind = iota
	NullKind
	BoolKind
	IntegerKind
	FloatKind
	StringKind
	TextKind
	MapKind
	ArrayKind
	TupleKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		HoleKind:    "Hole",
		NullKind:    "Null",
		BoolKind:    "Bool",
		IntegerKind: "Integer",
		FloatKind:   "Float",
		StringKind:  "String",
		TextKind:    "Text",
		MapKind:     "Map",
		ArrayKind:   "Array",
		TupleKind:   "Tuple",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) IsLeaf() bool {
	switch k {
	case MapKind, ArrayKind, TupleKind:
		return false
	default:
		return true
	}
}

// Node is one addressable tree unit. Exactly the fields selected by
// Kind are meaningful; children are held as ids into the owning
// document, never as pointers.
type Node struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string
	// Lang is the language tag of TextKind nodes.
	Lang string

	// Keys parallels Kids for MapKind; keys are unique.
	Keys []ObjectKey
	// Kids holds map values, array elements, or tuple elements.
	Kids []NodeId
}

type KeyKind int

const (
	IdentKeyKind KeyKind = iota
	ExtensionKeyKind
	ValueKeyKind
)

// ObjectKey is a map key. Plain identifiers and extension identifiers
// are distinct namespaces: an ident "type" and the extension "$type"
// never collide.
type ObjectKey struct {
	Kind KeyKind
	// Name is the identifier for ident and extension keys.
	Name string
	// Lit is the literal for value keys.
	Lit *Value
}

func IdentKey(name string) ObjectKey {
	return ObjectKey{Kind: IdentKeyKind, Name: name}
}

func ExtKey(name string) ObjectKey {
	return ObjectKey{Kind: ExtensionKeyKind, Name: name}
}

func ValueKey(v Value) ObjectKey {
	return ObjectKey{Kind: ValueKeyKind, Lit: &v}
}

func (k ObjectKey) Equal(o ObjectKey) bool {
	if k.Kind != o.Kind {
		return false
	}
	if k.Kind == ValueKeyKind {
		return k.Lit.Equal(*o.Lit)
	}
	return k.Name == o.Name
}

// Canonical renders the key deterministically: idents verbatim,
// extensions with a '$' sigil, literal keys in canonical value form.
func (k ObjectKey) Canonical() string {
	switch k.Kind {
	case IdentKeyKind:
		return k.Name
	case ExtensionKeyKind:
		return "$" + k.Name
	case ValueKeyKind:
		return k.Lit.String()
	}
	return fmt.Sprintf("<bad key kind %d>", int(k.Kind))
}
