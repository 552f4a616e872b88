package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eure-format/go-eure/ir"
)

func ek(n string, v ir.Value) ir.Field { return ir.Field{Key: ir.ExtKey(n), Val: v} }
func fk(n string, v ir.Value) ir.Field { return ir.Field{Key: ir.IdentKey(n), Val: v} }

func mustExtract(t *testing.T, v ir.Value) (*Schema, bool) {
	t.Helper()
	s, pure, err := Extract(ir.FromValue(v))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return s, pure
}

func TestExtractPrimitiveField(t *testing.T) {
	s, pure := mustExtract(t, ir.Map(
		fk("name", ir.Map(
			ek("type", ir.String(".string")),
			ek("min-length", ir.Integer(1)),
			ek("max-length", ir.Integer(64)),
		)),
		fk("age", ir.Map(
			ek("type", ir.String(".integer")),
			ek("min", ir.Integer(0)),
			ek("optional", ir.Bool(true)),
		)),
		fk("snippet", ir.Map(
			ek("type", ir.String(".code")),
		)),
	))
	if !pure {
		t.Errorf("expected pure schema")
	}
	root := s.Node(s.Root)
	if root.Kind != RecordKind || len(root.Fields) != 3 {
		t.Fatalf("root = %v with %d fields", root.Kind, len(root.Fields))
	}
	name := s.Node(root.Fields[0].Node)
	if name.Kind != TextKind || name.Text == nil || *name.Text.MinLength != 1 || *name.Text.MaxLength != 64 {
		t.Errorf("name field: %+v", name)
	}
	if root.Fields[0].Optional {
		t.Errorf("name should be required")
	}
	age := s.Node(root.Fields[1].Node)
	if age.Kind != IntegerKind || age.Num == nil || age.Num.Min.Sign() != 0 {
		t.Errorf("age field: %+v", age)
	}
	if snippet := s.Node(root.Fields[2].Node); snippet.Kind != TextKind {
		t.Errorf("snippet field: %+v", snippet)
	}
	if !root.Fields[1].Optional {
		t.Errorf("age should be optional")
	}
}

func TestExtractTypesRegistry(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		ek("types", ir.Map(
			fk("Point", ir.Map(
				fk("x", ir.Map(ek("type", ir.String(".float")))),
				fk("y", ir.Map(ek("type", ir.String(".float")))),
			)),
			fk("Line", ir.Map(
				fk("from", ir.Map(ek("type", ir.String(".$types.Point")))),
				fk("to", ir.Map(ek("type", ir.String(".$types.Point")))),
			)),
		)),
		fk("shape", ir.Map(ek("type", ir.String(".$types.Line")))),
	))
	if got := s.Types.Names(); !cmp.Equal(got, []string{"Point", "Line"}) {
		t.Fatalf("names = %v", got)
	}
	lineId, ok := s.Resolve("Line")
	if !ok {
		t.Fatal("Line not registered")
	}
	line := s.Node(lineId)
	if line.Kind != RecordKind || len(line.Fields) != 2 {
		t.Fatalf("Line = %+v", line)
	}
	from := s.Node(line.Fields[0].Node)
	if from.Kind != ReferenceKind || from.Ref != "Point" {
		t.Errorf("from = %+v", from)
	}
}

// A reference to an undeclared name is not an extraction error;
// validation reports it when the reference is exercised.
func TestExtractDanglingReferenceAllowed(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		fk("next", ir.Map(ek("type", ir.String(".$types.Missing")))),
	))
	root := s.Node(s.Root)
	ref := s.Node(root.Fields[0].Node)
	if ref.Kind != ReferenceKind || ref.Ref != "Missing" {
		t.Fatalf("ref = %+v", ref)
	}
}

func TestExtractRecursiveType(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		ek("types", ir.Map(
			fk("Tree", ir.Map(
				fk("value", ir.Map(ek("type", ir.String(".integer")))),
				fk("kids", ir.Map(ek("array", ir.String(".$types.Tree")), ek("optional", ir.Bool(true)))),
			)),
		)),
		fk("root", ir.Map(ek("type", ir.String(".$types.Tree")))),
	))
	treeId, _ := s.Resolve("Tree")
	tree := s.Node(treeId)
	kids := s.Node(tree.Fields[1].Node)
	if kids.Kind != ArrayKind {
		t.Fatalf("kids = %v", kids.Kind)
	}
	item := s.Node(kids.Item)
	if item.Kind != ReferenceKind || item.Ref != "Tree" {
		t.Errorf("item = %+v", item)
	}
}

func TestExtractUnion(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		fk("shape", ir.Map(
			ek("variants", ir.Map(
				fk("circle", ir.Map(fk("radius", ir.Map(ek("type", ir.String(".float")))))),
				fk("rect", ir.Map(
					fk("w", ir.Map(ek("type", ir.String(".float")))),
					fk("h", ir.Map(ek("type", ir.String(".float")))),
				)),
				fk("point", ir.Map()),
			)),
		)),
	))
	shape := s.Node(s.Node(s.Root).Fields[0].Node)
	if shape.Kind != UnionKind || len(shape.Variants) != 3 {
		t.Fatalf("shape = %+v", shape)
	}
	if shape.Repr.Kind != TaggedRepr {
		t.Errorf("default repr = %v", shape.Repr.Kind)
	}
	point := s.Node(shape.Variants[2].Node)
	if point.Kind != RecordKind || len(point.Fields) != 0 {
		t.Errorf("unit variant = %+v", point)
	}
}

func TestExtractVariantReprForms(t *testing.T) {
	cases := []struct {
		name string
		repr ir.Value
		want VariantRepr
	}{
		{"external", ir.String("external"), VariantRepr{Kind: ExternalRepr}},
		{"internal default tag", ir.String("internal"), VariantRepr{Kind: InternalRepr, Tag: "type"}},
		{"adjacent map", ir.Map(
			fk("tag", ir.String("kind")),
			fk("content", ir.String("payload")),
		), VariantRepr{Kind: AdjacentRepr, Tag: "kind", Content: "payload"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := mustExtract(t, ir.Map(
				fk("u", ir.Map(
					ek("variants", ir.Map(
						fk("a", ir.Map(fk("x", ir.Map(ek("type", ir.String(".integer")))))),
					)),
					ek("variant-repr", tc.repr),
				)),
			))
			u := s.Node(s.Node(s.Root).Fields[0].Node)
			if u.Repr != tc.want {
				t.Errorf("repr = %+v, want %+v", u.Repr, tc.want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  ir.Value
		want error
	}{
		{
			"type next to variants",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".string")),
				ek("variants", ir.Map(fk("a", ir.Map(fk("y", ir.Map(ek("type", ir.String(".integer")))))))),
			))),
			ErrConflict,
		},
		{
			"reference with inline constraints",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".$types.T")),
				ek("min", ir.Integer(0)),
			))),
			ErrConflict,
		},
		{
			"literal with constraints",
			ir.Map(fk("x", ir.Map(
				ek("literal", ir.String("on")),
				ek("max-length", ir.Integer(2)),
			))),
			ErrConflict,
		},
		{
			"string min",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".integer")),
				ek("min", ir.String("zero")),
			))),
			ErrMalformedConstraint,
		},
		{
			"length constraint on integer",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".integer")),
				ek("min-length", ir.Integer(1)),
			))),
			ErrMalformedConstraint,
		},
		{
			"negative max-length",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".string")),
				ek("max-length", ir.Integer(-1)),
			))),
			ErrMalformedConstraint,
		},
		{
			"bad pattern",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".string")),
				ek("pattern", ir.String("[unclosed")),
			))),
			ErrMalformedConstraint,
		},
		{
			"constraints without a type",
			ir.Map(fk("x", ir.Map(ek("min", ir.Integer(0))))),
			ErrMalformedConstraint,
		},
		{
			"unknown designator",
			ir.Map(fk("x", ir.Map(ek("type", ir.String(".quaternion"))))),
			ErrBadType,
		},
		{
			"designator without leading dot",
			ir.Map(fk("x", ir.Map(ek("type", ir.String("string"))))),
			ErrBadType,
		},
		{
			"non-string designator",
			ir.Map(fk("x", ir.Map(ek("type", ir.Integer(3))))),
			ErrBadType,
		},
		{
			"empty variant under adjacent repr",
			ir.Map(fk("u", ir.Map(
				ek("variants", ir.Map(fk("none", ir.Map()))),
				ek("variant-repr", ir.String("adjacent")),
			))),
			ErrEmptyVariant,
		},
		{
			"bad unknown-fields value",
			ir.Map(fk("x", ir.Map(
				ek("type", ir.String(".string")),
				ek("unknown-fields", ir.String("reject")),
			))),
			ErrBadAnnotation,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Extract(ir.FromValue(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var se *Error
			if !errors.As(err, &se) || len(se.Path) == 0 {
				t.Errorf("error carries no path: %v", err)
			}
		})
	}
}

func TestExtractDuplicateField(t *testing.T) {
	doc := ir.Map(
		fk("a", ir.Map(ek("type", ir.String(".string")))),
		ir.Field{Key: ir.ValueKey(ir.String("a")), Val: ir.Map(ek("type", ir.String(".integer")))},
	)
	_, _, err := Extract(ir.FromValue(doc))
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("err = %v", err)
	}
}

func TestExtractNotFinalized(t *testing.T) {
	doc := ir.New()
	_, _, err := Extract(doc)
	if !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("err = %v", err)
	}
}

func TestExtractPurity(t *testing.T) {
	pureDoc := ir.Map(
		ek("types", ir.Map(fk("T", ir.Map(fk("x", ir.Map(ek("type", ir.String(".integer")))))))),
		fk("cfg", ir.Map(fk("port", ir.Map(ek("type", ir.String(".integer")))))),
	)
	if _, pure := mustExtract(t, pureDoc); !pure {
		t.Errorf("declaration-only document reported impure")
	}

	mixed := ir.Map(
		fk("port", ir.Map(ek("type", ir.String(".integer")))),
		fk("host", ir.String("localhost")),
	)
	if _, pure := mustExtract(t, mixed); pure {
		t.Errorf("document with data leaf reported pure")
	}
}

func TestExtractMetadata(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		fk("port", ir.Map(
			ek("type", ir.String(".integer")),
			ek("description", ir.String("listen port")),
			ek("deprecated", ir.Bool(true)),
			ek("default", ir.Integer(8080)),
			ek("examples", ir.Array(ir.Integer(80), ir.Integer(443))),
			ek("rename", ir.String("listenPort")),
			ek("x-since", ir.String("v2")),
		)),
	))
	root := s.Node(s.Root)
	if root.Fields[0].Name != "listenPort" {
		t.Errorf("serialized name = %q", root.Fields[0].Name)
	}
	m := s.Node(root.Fields[0].Node).Meta
	if m.Description != "listen port" || !m.Deprecated {
		t.Errorf("meta = %+v", m)
	}
	if !m.Default.Equal(ir.Integer(8080)) || len(m.Examples) != 2 {
		t.Errorf("default/examples = %+v", m)
	}
	if len(m.Extra) != 1 || m.Extra[0].Key != "x-since" {
		t.Errorf("extra = %+v", m.Extra)
	}
}

func TestExtractMapAndTuple(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		fk("env", ir.Map(ek("map", ir.Map(
			fk("key", ir.String(".string")),
			fk("value", ir.String(".string")),
		)))),
		fk("pair", ir.Map(ek("tuple", ir.Array(
			ir.String(".float"),
			ir.String(".float"),
		)))),
	))
	root := s.Node(s.Root)
	env := s.Node(root.Fields[0].Node)
	if env.Kind != MapKind || s.Node(env.Key).Kind != TextKind || s.Node(env.Value).Kind != TextKind {
		t.Errorf("env = %+v", env)
	}
	pair := s.Node(root.Fields[1].Node)
	if pair.Kind != TupleKind || len(pair.Elems) != 2 {
		t.Errorf("pair = %+v", pair)
	}
}

func TestExtractArrayForms(t *testing.T) {
	s, _ := mustExtract(t, ir.Map(
		fk("tags", ir.Map(
			ek("array", ir.String(".string")),
			ek("min-items", ir.Integer(1)),
		)),
		fk("nums", ir.Map(
			ek("type", ir.String(".integer")),
			ek("array", ir.Bool(true)),
		)),
		fk("points", ir.Map(ek("array", ir.Map(
			fk("x", ir.Map(ek("type", ir.String(".float")))),
		)))),
	))
	root := s.Node(s.Root)
	tags := s.Node(root.Fields[0].Node)
	if tags.Kind != ArrayKind || s.Node(tags.Item).Kind != TextKind || *tags.MinItems != 1 {
		t.Errorf("tags = %+v", tags)
	}
	nums := s.Node(root.Fields[1].Node)
	if nums.Kind != ArrayKind || s.Node(nums.Item).Kind != IntegerKind {
		t.Errorf("nums = %+v", nums)
	}
	points := s.Node(root.Fields[2].Node)
	if points.Kind != ArrayKind || s.Node(points.Item).Kind != RecordKind {
		t.Errorf("points = %+v", points)
	}
}

// Exporting a schema and extracting the export must reach a fixed
// point: the second export equals the first.
func TestExportRoundTrip(t *testing.T) {
	doc := ir.Map(
		ek("types", ir.Map(
			fk("Point", ir.Map(
				fk("x", ir.Map(ek("type", ir.String(".float")))),
				fk("y", ir.Map(ek("type", ir.String(".float")))),
			)),
		)),
		fk("name", ir.Map(
			ek("type", ir.String(".string")),
			ek("min-length", ir.Integer(1)),
			ek("description", ir.String("display name")),
		)),
		fk("origin", ir.Map(ek("type", ir.String(".$types.Point")))),
		fk("tags", ir.Map(ek("array", ir.String(".string")), ek("optional", ir.Bool(true)))),
		fk("shape", ir.Map(
			ek("variants", ir.Map(
				fk("circle", ir.Map(fk("radius", ir.Map(ek("type", ir.String(".float")))))),
				fk("none", ir.Map()),
			)),
		)),
	)
	s1, _ := mustExtract(t, doc)
	exported := Export(s1)
	s2, pure, err := Extract(ir.FromValue(exported))
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	if !pure {
		t.Errorf("export is not a pure schema:\n%s", exported)
	}
	if got := Export(s2); !got.Equal(exported) {
		t.Errorf("export not a fixed point:\n first=%s\nsecond=%s", exported, got)
	}
}
