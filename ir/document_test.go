package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eure-format/go-eure/ir/epath"
)

func mustPath(t *testing.T, s string) epath.Path {
	t.Helper()
	p, err := epath.Parse(s)
	if err != nil {
		t.Fatalf("parse path %q: %v", s, err)
	}
	return p
}

func TestEnsureThenResolve(t *testing.T) {
	d := New()
	id, err := d.EnsurePath(d.Root(), mustPath(t, "a.b.c"))
	if err != nil {
		t.Fatalf("EnsurePath: %v", err)
	}
	if d.Kind(id) != HoleKind {
		t.Errorf("fresh leaf kind = %s, want Hole", d.Kind(id))
	}
	got, err := d.ResolvePath(d.Root(), mustPath(t, "a.b.c"))
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != id {
		t.Errorf("resolve returned %d, want %d", got, id)
	}
	// intermediates were created as maps
	mid, err := d.ResolvePath(d.Root(), mustPath(t, "a.b"))
	if err != nil {
		t.Fatalf("ResolvePath intermediate: %v", err)
	}
	if d.Kind(mid) != MapKind {
		t.Errorf("intermediate kind = %s, want Map", d.Kind(mid))
	}
}

func TestResolveNotFound(t *testing.T) {
	d := New()
	if _, err := d.EnsurePath(d.Root(), mustPath(t, "a.b")); err != nil {
		t.Fatal(err)
	}
	d.Finalize()
	_, err := d.ResolvePath(d.Root(), mustPath(t, "a.x.y"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("err = %v, want ErrPathNotFound", err)
	}
}

func TestExtensionNamespaceDisjoint(t *testing.T) {
	d := New()
	plain, err := d.EnsurePath(d.Root(), epath.Path{epath.Ident("type")})
	if err != nil {
		t.Fatal(err)
	}
	ext, err := d.EnsurePath(d.Root(), epath.Path{epath.Extension("type")})
	if err != nil {
		t.Fatal(err)
	}
	if plain == ext {
		t.Fatal("ident and extension key resolved to the same node")
	}
	if got, ok := d.MapIdent(d.Root(), "type"); !ok || got != plain {
		t.Errorf("MapIdent = %d,%v want %d,true", got, ok, plain)
	}
	if got, ok := d.MapExt(d.Root(), "type"); !ok || got != ext {
		t.Errorf("MapExt = %d,%v want %d,true", got, ok, ext)
	}
}

func TestLiteralKeyPath(t *testing.T) {
	d := New()
	id, err := d.EnsurePath(d.Root(), mustPath(t, `m["x y"]`))
	if err != nil {
		t.Fatalf("EnsurePath: %v", err)
	}
	got, err := d.ResolvePath(d.Root(), mustPath(t, `m["x y"]`))
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != id {
		t.Errorf("literal key did not round trip: got %d want %d", got, id)
	}
	m, _ := d.MapIdent(d.Root(), "m")
	if _, ok := d.MapGet(m, ValueKey(String("x y"))); !ok {
		t.Error("constructed key is not the string literal \"x y\"")
	}
}

func TestArrayAppendSegment(t *testing.T) {
	d := New()
	for i := 0; i < 3; i++ {
		if _, err := d.EnsurePath(d.Root(), mustPath(t, "xs[]")); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	xs, _ := d.MapIdent(d.Root(), "xs")
	if n := len(d.Node(xs).Kids); n != 3 {
		t.Errorf("array has %d elements, want 3", n)
	}
	// read mode never accepts the unspecified position
	if _, err := d.ResolvePath(d.Root(), mustPath(t, "xs[]")); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("read-mode [] err = %v, want ErrPathNotFound", err)
	}
}

func TestFinalizedRejectsMutation(t *testing.T) {
	d := New()
	d.Finalize()
	if _, err := d.NewString("x"); !errors.Is(err, ErrFinalized) {
		t.Errorf("NewString after Finalize: %v, want ErrFinalized", err)
	}
	if err := d.MapSet(d.Root(), IdentKey("a"), d.Root()); !errors.Is(err, ErrFinalized) {
		t.Errorf("MapSet after Finalize: %v, want ErrFinalized", err)
	}
	if _, err := d.EnsurePath(d.Root(), epath.Path{epath.Ident("a")}); !errors.Is(err, ErrFinalized) {
		t.Errorf("EnsurePath after Finalize: %v, want ErrFinalized", err)
	}
}

func TestValueRoundTrip(t *testing.T) {
	want := Map(
		Field{Key: IdentKey("name"), Val: String("demo")},
		Field{Key: ExtKey("type"), Val: String(".string")},
		Field{Key: IdentKey("count"), Val: Integer(42)},
		Field{Key: IdentKey("ratio"), Val: Float(0.5)},
		Field{Key: IdentKey("flag"), Val: Bool(true)},
		Field{Key: IdentKey("none"), Val: Null()},
		Field{Key: IdentKey("todo"), Val: Hole()},
		Field{Key: IdentKey("note"), Val: Text("en", "hello")},
		Field{Key: IdentKey("xs"), Val: Array(Integer(1), Integer(2))},
		Field{Key: IdentKey("pair"), Val: Tuple(String("a"), Integer(3))},
		Field{Key: ValueKey(Integer(7)), Val: String("seven")},
		Field{Key: IdentKey("nested"), Val: Map(
			Field{Key: IdentKey("deep"), Val: Array(Map(
				Field{Key: IdentKey("x"), Val: Float(1)},
			))},
		)},
	)
	d := FromValue(want)
	if !d.Finalized() {
		t.Fatal("FromValue must finalize")
	}
	got := d.ToValue(d.Root())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !want.Equal(got) {
		t.Error("Equal() disagrees with cmp.Diff")
	}
}

func TestValueEqualExactness(t *testing.T) {
	if Integer(5).Equal(Float(5)) {
		t.Error("Integer 5 must not equal Float 5.0")
	}
	if String("hi").Equal(Text("en", "hi")) {
		t.Error("String must not equal language-tagged Text")
	}
	if !Float(0.1).Equal(Float(0.1)) {
		t.Error("identical floats must be equal")
	}
}

func TestCanonicalRendering(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Integer(5), "5"},
		{Float(5), "5.0"},
		{Float(0.25), "0.25"},
		{String("hi"), `"hi"`},
		{Text("ja", "やあ"), `ja"やあ"`},
		{Bool(false), "false"},
		{Null(), "null"},
		{Hole(), "!"},
		{Array(Integer(1), String("a")), `[1, "a"]`},
		{Tuple(Integer(1), Integer(2)), "(1, 2)"},
		{Map(Field{Key: IdentKey("a"), Val: Integer(1)}), "{a = 1}"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String(%v) = %q, want %q", tt.v.Kind, got, tt.want)
		}
	}
	// canonical scalars parse back
	for _, s := range []string{"5", "5.0", `"hi"`, "false", "null", "!"} {
		if got := ParseCanonicalValue(s).String(); got != s {
			t.Errorf("ParseCanonicalValue(%q) renders %q", s, got)
		}
	}
}
