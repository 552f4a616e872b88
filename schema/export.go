package schema

import (
	"math/big"
	"strconv"

	"github.com/eure-format/go-eure/ir"
)

// Export projects a schema back onto the annotation vocabulary it was
// extracted from. Extracting the exported value yields an equivalent
// schema, which is how schemas are persisted and diffed.
func Export(s *Schema) ir.Value {
	var fields []ir.Field
	if s.Types.Len() > 0 {
		var decls []ir.Field
		for _, name := range s.Types.Names() {
			id, _ := s.Types.Get(name)
			decls = append(decls, ir.Field{Key: ir.IdentKey(name), Val: exportNode(s, id)})
		}
		fields = append(fields, ir.Field{Key: ir.ExtKey(annTypes), Val: ir.Map(decls...)})
	}
	if s.Naming.RenameAll != "" {
		fields = append(fields, ir.Field{Key: ir.ExtKey(annRenameAll), Val: ir.String(s.Naming.RenameAll)})
	}
	root := exportNode(s, s.Root)
	fields = append(fields, root.Fields...)
	return ir.Map(fields...)
}

var kindDesignators = map[Kind]string{
	AnyKind:     ".any",
	TextKind:    ".string",
	IntegerKind: ".integer",
	FloatKind:   ".float",
	BooleanKind: ".boolean",
	NullKind:    ".null",
}

// exportNode renders one schema node as its annotation map.
func exportNode(s *Schema, id NodeId) ir.Value {
	n := s.Node(id)
	if n == nil {
		return ir.Map()
	}
	var fields []ir.Field
	ext := func(name string, v ir.Value) {
		fields = append(fields, ir.Field{Key: ir.ExtKey(name), Val: v})
	}

	switch n.Kind {
	case AnyKind, TextKind, IntegerKind, FloatKind, BooleanKind, NullKind:
		ext(annType, ir.String(kindDesignators[n.Kind]))
		fields = append(fields, constraintFields(n)...)
	case ReferenceKind:
		ext(annType, ir.String(".$types."+n.Ref))
	case LiteralKind:
		ext(annLiteral, *n.Literal)
	case RecordKind:
		if n.Unknown == DenyUnknown {
			ext(annUnknown, ir.String("deny"))
		}
		for _, f := range n.Fields {
			decl := exportNode(s, f.Node)
			if f.Optional {
				decl.Fields = append([]ir.Field{{Key: ir.ExtKey(annOptional), Val: ir.Bool(true)}}, decl.Fields...)
			}
			fields = append(fields, ir.Field{Key: fieldKey(f.Name), Val: decl})
		}
	case ArrayKind:
		ext(annArray, designatorOrDecl(s, n.Item))
		if n.MinItems != nil {
			ext(annMinItems, ir.Integer(int64(*n.MinItems)))
		}
		if n.MaxItems != nil {
			ext(annMaxItems, ir.Integer(int64(*n.MaxItems)))
		}
	case MapKind:
		ext(annMap, ir.Map(
			ir.Field{Key: ir.IdentKey("key"), Val: designatorOrDecl(s, n.Key)},
			ir.Field{Key: ir.IdentKey("value"), Val: designatorOrDecl(s, n.Value)},
		))
	case TupleKind:
		elems := make([]ir.Value, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = designatorOrDecl(s, e)
		}
		ext(annTuple, ir.Array(elems...))
	case UnionKind:
		var decls []ir.Field
		for _, v := range n.Variants {
			decls = append(decls, ir.Field{Key: ir.IdentKey(v.Name), Val: exportNode(s, v.Node)})
		}
		ext(annVariants, ir.Map(decls...))
		if n.Repr.Kind != TaggedRepr {
			ext(annVariantRepr, exportRepr(n.Repr))
		}
	}

	fields = append(fields, metaFields(n.Meta)...)
	return ir.Map(fields...)
}

// designatorOrDecl prefers the compact string form when the node is a
// bare primitive or reference with nothing else to say.
func designatorOrDecl(s *Schema, id NodeId) ir.Value {
	n := s.Node(id)
	if n == nil {
		return ir.String(".any")
	}
	if n.Kind == ReferenceKind && n.Meta.empty() {
		return ir.String(".$types." + n.Ref)
	}
	if d, ok := kindDesignators[n.Kind]; ok && n.Text == nil && n.Num == nil && n.Meta.empty() {
		return ir.String(d)
	}
	return exportNode(s, id)
}

func fieldKey(name string) ir.ObjectKey {
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c == '-' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9' && i > 0)
		if !ok {
			return ir.ValueKey(ir.String(name))
		}
	}
	if name == "" {
		return ir.ValueKey(ir.String(name))
	}
	return ir.IdentKey(name)
}

func constraintFields(n *Node) []ir.Field {
	var fields []ir.Field
	ext := func(name string, v ir.Value) {
		fields = append(fields, ir.Field{Key: ir.ExtKey(name), Val: v})
	}
	if n.Text != nil {
		if n.Text.MinLength != nil {
			ext(annMinLength, ir.Integer(int64(*n.Text.MinLength)))
		}
		if n.Text.MaxLength != nil {
			ext(annMaxLength, ir.Integer(int64(*n.Text.MaxLength)))
		}
		if n.Text.Pattern != nil {
			ext(annPattern, ir.String(n.Text.Pattern.String()))
		}
	}
	if n.Num != nil {
		if n.Num.Min != nil {
			ext(annMin, ratValue(n.Num.Min))
			if n.Num.ExclusiveMin {
				ext(annExclusiveMin, ir.Bool(true))
			}
		}
		if n.Num.Max != nil {
			ext(annMax, ratValue(n.Num.Max))
			if n.Num.ExclusiveMax {
				ext(annExclusiveMax, ir.Bool(true))
			}
		}
		if n.Num.MultipleOf != nil {
			ext(annMultipleOf, ratValue(n.Num.MultipleOf))
		}
	}
	return fields
}

// ratValue renders a bound as an integer when it is one, a float
// otherwise. Extraction reads either form back into the same rational.
func ratValue(r *big.Rat) ir.Value {
	if r.IsInt() && r.Num().IsInt64() {
		return ir.Integer(r.Num().Int64())
	}
	f, _ := strconv.ParseFloat(r.FloatString(17), 64)
	return ir.Float(f)
}

func exportRepr(r VariantRepr) ir.Value {
	switch r.Kind {
	case ExternalRepr:
		return ir.String("external")
	case InternalRepr:
		return ir.Map(ir.Field{Key: ir.IdentKey("tag"), Val: ir.String(r.Tag)})
	case AdjacentRepr:
		return ir.Map(
			ir.Field{Key: ir.IdentKey("tag"), Val: ir.String(r.Tag)},
			ir.Field{Key: ir.IdentKey("content"), Val: ir.String(r.Content)},
		)
	}
	return ir.String("tagged")
}

func metaFields(m Metadata) []ir.Field {
	var fields []ir.Field
	ext := func(name string, v ir.Value) {
		fields = append(fields, ir.Field{Key: ir.ExtKey(name), Val: v})
	}
	if m.Description != "" {
		ext(annDescription, ir.String(m.Description))
	}
	if m.Deprecated {
		ext(annDeprecated, ir.Bool(true))
	}
	if m.Default != nil {
		ext(annDefault, *m.Default)
	}
	if len(m.Examples) > 0 {
		ext(annExamples, ir.Array(m.Examples...))
	}
	if m.Rename != "" {
		ext(annRename, ir.String(m.Rename))
	}
	for _, a := range m.Extra {
		ext(a.Key, a.Value)
	}
	return fields
}
