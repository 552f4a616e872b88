package ir

import (
	"math"
	"strconv"
	"strings"
)

// Value is the generic interchange projection of a document subtree:
// an owning, document-independent tree mirroring the node kinds. It is
// the sole contract format bridges (JSON/YAML/TOML) consume, and it is
// lossless for any document this package produced.
type Value struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string
	Lang  string

	// Elems holds array or tuple elements.
	Elems []Value
	// Fields holds map entries in document order.
	Fields []Field
}

type Field struct {
	Key ObjectKey
	Val Value
}

func Null() Value             { return Value{Kind: NullKind} }
func Hole() Value             { return Value{Kind: HoleKind} }
func Bool(v bool) Value       { return Value{Kind: BoolKind, Bool: v} }
func Integer(v int64) Value   { return Value{Kind: IntegerKind, Int: v} }
func Float(v float64) Value   { return Value{Kind: FloatKind, Float: v} }
func String(v string) Value   { return Value{Kind: StringKind, Str: v} }
func Text(lang, v string) Value {
	return Value{Kind: TextKind, Lang: lang, Str: v}
}

func Array(elems ...Value) Value {
	return Value{Kind: ArrayKind, Elems: elems}
}

func Tuple(elems ...Value) Value {
	return Value{Kind: TupleKind, Elems: elems}
}

func Map(fields ...Field) Value {
	return Value{Kind: MapKind, Fields: fields}
}

// Get looks up a plain identifier key in a map value.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key.Kind == IdentKeyKind && f.Key.Name == name {
			return f.Val, true
		}
	}
	return Value{}, false
}

// Equal is exact structural equality: kinds must match (an Integer 5
// never equals a Float 5.0), map fields compare in order.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case HoleKind, NullKind:
		return true
	case BoolKind:
		return v.Bool == o.Bool
	case IntegerKind:
		return v.Int == o.Int
	case FloatKind:
		return v.Float == o.Float || (math.IsNaN(v.Float) && math.IsNaN(o.Float))
	case StringKind:
		return v.Str == o.Str
	case TextKind:
		return v.Lang == o.Lang && v.Str == o.Str
	case ArrayKind, TupleKind:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case MapKind:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for i := range v.Fields {
			if !v.Fields[i].Key.Equal(o.Fields[i].Key) {
				return false
			}
			if !v.Fields[i].Val.Equal(o.Fields[i].Val) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the canonical form used in diagnostics and literal
// map keys. Floats always carry a fractional or exponent marker so the
// rendering never collides with an integer's.
func (v Value) String() string {
	b := &strings.Builder{}
	v.render(b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.Kind {
	case HoleKind:
		b.WriteByte('!')
	case NullKind:
		b.WriteString("null")
	case BoolKind:
		b.WriteString(strconv.FormatBool(v.Bool))
	case IntegerKind:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case FloatKind:
		b.WriteString(formatFloat(v.Float))
	case StringKind:
		b.WriteString(strconv.Quote(v.Str))
	case TextKind:
		b.WriteString(v.Lang)
		b.WriteString(strconv.Quote(v.Str))
	case ArrayKind:
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.render(b)
		}
		b.WriteByte(']')
	case TupleKind:
		b.WriteByte('(')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.render(b)
		}
		b.WriteByte(')')
	case MapKind:
		b.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key.Canonical())
			b.WriteString(" = ")
			f.Val.render(b)
		}
		b.WriteByte('}')
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}
	return s
}

// ParseCanonicalValue reads the canonical rendering of a scalar
// literal back into a Value. Composite canonical forms are not
// accepted; literal map keys are scalars in practice.
func ParseCanonicalValue(s string) Value {
	switch s {
	case "null":
		return Null()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "!":
		return Hole()
	}
	if len(s) > 0 && s[0] == '"' {
		if uq, err := strconv.Unquote(s); err == nil {
			return String(uq)
		}
		return String(s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Integer(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return String(s)
}

// ToValue projects the subtree rooted at id.
func (d *Document) ToValue(id NodeId) Value {
	n := d.Node(id)
	v := Value{
		Kind:  n.Kind,
		Bool:  n.Bool,
		Int:   n.Int,
		Float: n.Float,
		Str:   n.Str,
		Lang:  n.Lang,
	}
	switch n.Kind {
	case MapKind:
		v.Fields = make([]Field, len(n.Kids))
		for i, kid := range n.Kids {
			v.Fields[i] = Field{Key: n.Keys[i], Val: d.ToValue(kid)}
		}
	case ArrayKind, TupleKind:
		v.Elems = make([]Value, len(n.Kids))
		for i, kid := range n.Kids {
			v.Elems[i] = d.ToValue(kid)
		}
	}
	return v
}

// FromValue builds a finalized document from a Value. ToValue of the
// result's root yields back an equal Value.
func FromValue(v Value) *Document {
	d := &Document{}
	d.root = d.fromValue(v)
	d.Finalize()
	return d
}

func (d *Document) fromValue(v Value) NodeId {
	n := Node{
		Kind:  v.Kind,
		Bool:  v.Bool,
		Int:   v.Int,
		Float: v.Float,
		Str:   v.Str,
		Lang:  v.Lang,
	}
	switch v.Kind {
	case MapKind:
		n.Keys = make([]ObjectKey, len(v.Fields))
		n.Kids = make([]NodeId, len(v.Fields))
		for i, f := range v.Fields {
			n.Keys[i] = f.Key
			n.Kids[i] = d.fromValue(f.Val)
		}
	case ArrayKind, TupleKind:
		n.Kids = make([]NodeId, len(v.Elems))
		for i, e := range v.Elems {
			n.Kids[i] = d.fromValue(e)
		}
	}
	return d.add(n)
}
