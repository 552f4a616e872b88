package epath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPathString(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{
			name: "root",
			path: nil,
			want: "$",
		},
		{
			name: "idents",
			path: Path{Ident("a"), Ident("b")},
			want: "a.b",
		},
		{
			name: "extension",
			path: Path{Extension("types"), Ident("Point")},
			want: "$types.Point",
		},
		{
			name: "array index",
			path: Path{Ident("items"), ArrayIndex(3)},
			want: "items[3]",
		},
		{
			name: "append position",
			path: Path{Ident("items"), ArrayAppend()},
			want: "items[]",
		},
		{
			name: "tuple index",
			path: Path{Ident("pair"), TupleIndex(1)},
			want: "pair.1",
		},
		{
			name: "literal key",
			path: Path{Ident("map"), ValueKey(`"x y"`)},
			want: `map["x y"]`,
		},
		{
			name: "quoted ident",
			path: Path{Ident("needs quoting")},
			want: `"needs quoting"`,
		},
		{
			name: "mixed",
			path: Path{Ident("a"), Extension("variants"), Ident("circle"), Ident("radius")},
			want: "a.$variants.circle.radius",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.path.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	paths := []string{
		"$",
		"a.b.c",
		"$types.Point.x",
		"items[0].name",
		"items[]",
		"pair.0",
		"pair.255",
		`map["x y"].v`,
		`map[true]`,
		`map[42]`, // digits parse as an array index, not a literal key
		"a.$variants.circle.radius",
		`"weird.field"[2]`,
	}
	for _, s := range paths {
		t.Run(s, func(t *testing.T) {
			p, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q): %v", s, err)
			}
			if got := p.String(); got != s {
				t.Errorf("round trip %q -> %q", s, got)
			}
			p2, err := Parse(p.String())
			if err != nil {
				t.Fatalf("reparse: %v", err)
			}
			if diff := cmp.Diff(p, p2); diff != "" {
				t.Errorf("reparse mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		".a",
		"a..b",
		"a[",
		`a["unterminated]`,
		"a.",
		"pair.256",
		"a b",
	}
	for _, s := range bad {
		t.Run(s, func(t *testing.T) {
			if _, err := Parse(s); err == nil {
				t.Errorf("Parse(%q): expected error", s)
			}
		})
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	base := Path{Ident("a")}
	left := base.With(Ident("b"))
	right := base.With(Ident("c"))
	if left.String() != "a.b" || right.String() != "a.c" {
		t.Errorf("With() shared backing arrays: %q %q", left, right)
	}
	if base.String() != "a" {
		t.Errorf("base mutated: %q", base)
	}
}
