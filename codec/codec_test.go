package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eure-format/go-eure/ir"
)

func ek(n string, v ir.Value) ir.Field { return ir.Field{Key: ir.ExtKey(n), Val: v} }
func fk(n string, v ir.Value) ir.Field { return ir.Field{Key: ir.IdentKey(n), Val: v} }

var sample = ir.Map(
	fk("name", ir.String("demo")),
	fk("port", ir.Integer(8080)),
	fk("ratio", ir.Float(0.5)),
	fk("on", ir.Bool(true)),
	fk("none", ir.Null()),
	fk("tags", ir.Array(ir.String("a"), ir.String("b"))),
	fk("nested", ir.Map(ek("variant", ir.String("x")), fk("v", ir.Integer(1)))),
	fk("note", ir.Text("en", "hello")),
)

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, sample); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sample) {
		t.Errorf("round trip diverged:\n%s", cmp.Diff(sample.String(), got.String()))
	}
}

func TestJSONKeyOrderPreserved(t *testing.T) {
	in := `{"z": 1, "a": 2, "$variant": "v"}`
	got, err := DecodeJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Fields) != 3 {
		t.Fatalf("fields = %v", got.Fields)
	}
	if got.Fields[0].Key.Name != "z" || got.Fields[1].Key.Name != "a" {
		t.Errorf("order lost: %v", got.Fields)
	}
	if got.Fields[2].Key.Kind != ir.ExtensionKeyKind || got.Fields[2].Key.Name != "variant" {
		t.Errorf("extension key not recognized: %+v", got.Fields[2].Key)
	}
}

func TestJSONNumbers(t *testing.T) {
	got, err := DecodeJSON(strings.NewReader(`{"i": 42, "f": 42.0, "e": 1e3}`))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("i"); v.Kind != ir.IntegerKind || v.Int != 42 {
		t.Errorf("i = %+v", v)
	}
	if v, _ := got.Get("f"); v.Kind != ir.FloatKind {
		t.Errorf("f = %+v", v)
	}
	if v, _ := got.Get("e"); v.Kind != ir.FloatKind || v.Float != 1000 {
		t.Errorf("e = %+v", v)
	}
}

func TestJSONTextConvention(t *testing.T) {
	got, err := DecodeJSON(strings.NewReader(`{"doc": {"$text": "hi", "$lang": "en"}}`))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := got.Get("doc")
	if v.Kind != ir.TextKind || v.Str != "hi" || v.Lang != "en" {
		t.Errorf("doc = %+v", v)
	}

	// an extra key keeps it an ordinary map
	got, err = DecodeJSON(strings.NewReader(`{"doc": {"$text": "hi", "other": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	v, _ = got.Get("doc")
	if v.Kind != ir.MapKind {
		t.Errorf("doc = %+v", v)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := EncodeYAML(sample)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sample) {
		t.Errorf("round trip diverged:\n%s", cmp.Diff(sample.String(), got.String()))
	}
}

func TestYAMLKeyOrderPreserved(t *testing.T) {
	got, err := DecodeYAML([]byte("z: 1\na: 2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Fields[0].Key.Name != "z" || got.Fields[1].Key.Name != "a" {
		t.Errorf("order lost: %v", got.Fields)
	}
}
