package schema

import (
	"fmt"

	"github.com/eure-format/go-eure/ir"
)

// NodeId is an opaque handle into one Schema's node table. The zero
// value is invalid.
type NodeId uint32

const InvalidNode NodeId = 0

type Kind int

const (
	AnyKind Kind = iota
	TextKind
	IntegerKind
	FloatKind
	BooleanKind
	NullKind
	LiteralKind
	RecordKind
	ArrayKind
	MapKind
	TupleKind
	UnionKind
	ReferenceKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		AnyKind:       "Any",
		TextKind:      "Text",
		IntegerKind:   "Integer",
		FloatKind:     "Float",
		BooleanKind:   "Boolean",
		NullKind:      "Null",
		LiteralKind:   "Literal",
		RecordKind:    "Record",
		ArrayKind:     "Array",
		MapKind:       "Map",
		TupleKind:     "Tuple",
		UnionKind:     "Union",
		ReferenceKind: "Reference",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

// UnknownFieldsPolicy is the per-record choice between ignoring and
// rejecting document fields the record does not declare.
type UnknownFieldsPolicy int

const (
	AllowUnknown UnknownFieldsPolicy = iota
	DenyUnknown
)

type Field struct {
	Name     string
	Node     NodeId
	Optional bool
}

type Variant struct {
	Name string
	// Node is the variant's record.
	Node NodeId
}

type ReprKind int

const (
	// TaggedRepr selects the variant by the reserved "$variant"
	// extension field. It is the default representation.
	TaggedRepr ReprKind = iota
	// ExternalRepr selects by a single wrapping key equal to the
	// variant name.
	ExternalRepr
	// InternalRepr reads the tag from a literal-string field among the
	// variant's own fields.
	InternalRepr
	// AdjacentRepr reads the tag from one field and the variant
	// content from a sibling field.
	AdjacentRepr
)

func (k ReprKind) String() string {
	s, ok := map[ReprKind]string{
		TaggedRepr:   "tagged",
		ExternalRepr: "external",
		InternalRepr: "internal",
		AdjacentRepr: "adjacent",
	}[k]
	if ok {
		return s
	}
	return "<unknown repr>"
}

// VariantRepr is the wire convention encoding which case of a tagged
// union a value belongs to.
type VariantRepr struct {
	Kind ReprKind
	// Tag is the tag field name for internal and adjacent
	// representations.
	Tag string
	// Content is the content field name for the adjacent
	// representation.
	Content string
}

// Node is one schema tree unit. Exactly the fields selected by Kind
// are meaningful.
type Node struct {
	Kind Kind
	Meta Metadata

	// Text constrains TextKind.
	Text *TextConstraints
	// Num constrains IntegerKind and FloatKind.
	Num *NumConstraints

	// Literal is the exact value a LiteralKind node accepts.
	Literal *ir.Value

	// Fields and Unknown describe RecordKind.
	Fields  []Field
	Unknown UnknownFieldsPolicy

	// Item and the bounds describe ArrayKind.
	Item     NodeId
	MinItems *int
	MaxItems *int

	// Key and Value describe MapKind.
	Key   NodeId
	Value NodeId

	// Elems describe TupleKind; arity is fixed.
	Elems []NodeId

	// Variants and Repr describe UnionKind.
	Variants []Variant
	Repr     VariantRepr

	// Ref names a registry entry for ReferenceKind; resolution is
	// lazy, a dangling name is a validation-time diagnostic.
	Ref string
}

// Field returns the record field named name.
func (n *Node) Field(name string) (*Field, bool) {
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return &n.Fields[i], true
		}
	}
	return nil, false
}

// Variant returns the union variant named name.
func (n *Node) Variant(name string) (*Variant, bool) {
	for i := range n.Variants {
		if n.Variants[i].Name == name {
			return &n.Variants[i], true
		}
	}
	return nil, false
}

func parseRepr(v ir.Value) (VariantRepr, error) {
	switch v.Kind {
	case ir.StringKind:
		switch v.Str {
		case "tagged":
			return VariantRepr{Kind: TaggedRepr}, nil
		case "external":
			return VariantRepr{Kind: ExternalRepr}, nil
		case "internal":
			return VariantRepr{Kind: InternalRepr, Tag: "type"}, nil
		case "adjacent":
			return VariantRepr{Kind: AdjacentRepr, Tag: "type", Content: "content"}, nil
		}
		return VariantRepr{}, fmt.Errorf("unknown variant representation %q", v.Str)
	case ir.MapKind:
		tag, hasTag := v.Get("tag")
		content, hasContent := v.Get("content")
		if hasTag && tag.Kind != ir.StringKind {
			return VariantRepr{}, fmt.Errorf("variant representation tag must be a string")
		}
		if hasContent && content.Kind != ir.StringKind {
			return VariantRepr{}, fmt.Errorf("variant representation content must be a string")
		}
		switch {
		case hasTag && hasContent:
			return VariantRepr{Kind: AdjacentRepr, Tag: tag.Str, Content: content.Str}, nil
		case hasTag:
			return VariantRepr{Kind: InternalRepr, Tag: tag.Str}, nil
		}
		return VariantRepr{}, fmt.Errorf("variant representation map needs a tag entry")
	}
	return VariantRepr{}, fmt.Errorf("variant representation must be a string or a map, got %s", v.Kind)
}
