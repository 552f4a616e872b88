package epath

import (
	"fmt"
	"strconv"
	"strings"
)

type SegmentKind int

const (
	IdentSegment SegmentKind = iota
	ExtensionSegment
	ValueSegment
	TupleIndexSegment
	ArrayIndexSegment
)

func (k SegmentKind) String() string {
	s, ok := map[SegmentKind]string{
		IdentSegment:      "Ident",
		ExtensionSegment:  "Extension",
		ValueSegment:      "Value",
		TupleIndexSegment: "TupleIndex",
		ArrayIndexSegment: "ArrayIndex",
	}[k]
	if ok {
		return s
	}
	return "<unknown segment kind>"
}

// Segment is a single step of a path. Exactly one interpretation
// applies, selected by Kind.
type Segment struct {
	Kind SegmentKind

	// Name holds the identifier for IdentSegment and ExtensionSegment
	// (without the '$' sigil), and the canonical literal rendering for
	// ValueSegment.
	Name string

	// Index holds the tuple index for TupleIndexSegment and the array
	// index for ArrayIndexSegment when HasIndex is set.
	Index int

	// HasIndex distinguishes "a[0]" from the unspecified position "a[]".
	HasIndex bool
}

// MaxTupleIndex bounds tuple arity; tuples are fixed-arity and small.
const MaxTupleIndex = 255

func Ident(name string) Segment {
	return Segment{Kind: IdentSegment, Name: name}
}

func Extension(name string) Segment {
	return Segment{Kind: ExtensionSegment, Name: name}
}

// ValueKey names a map entry keyed by an arbitrary literal. canonical
// must be the literal's canonical rendering (see ir.Value.String).
func ValueKey(canonical string) Segment {
	return Segment{Kind: ValueSegment, Name: canonical}
}

func TupleIndex(i int) Segment {
	return Segment{Kind: TupleIndexSegment, Index: i}
}

func ArrayIndex(i int) Segment {
	return Segment{Kind: ArrayIndexSegment, Index: i, HasIndex: true}
}

// ArrayAppend is the unspecified array position, rendered "[]".
func ArrayAppend() Segment {
	return Segment{Kind: ArrayIndexSegment}
}

func (s Segment) Equal(o Segment) bool {
	return s.Kind == o.Kind && s.Name == o.Name &&
		s.Index == o.Index && s.HasIndex == o.HasIndex
}

// String returns the segment as it renders at the start of a path.
func (s Segment) String() string {
	switch s.Kind {
	case IdentSegment:
		return quoteIdent(s.Name)
	case ExtensionSegment:
		return "$" + s.Name
	case ValueSegment:
		return "[" + s.Name + "]"
	case TupleIndexSegment:
		return strconv.Itoa(s.Index)
	case ArrayIndexSegment:
		if !s.HasIndex {
			return "[]"
		}
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return fmt.Sprintf("<bad segment %d>", int(s.Kind))
}

// identBody reports whether c may appear in an unquoted identifier.
func identBody(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z':
		return true
	case 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}

func identOK(name string) bool {
	if name == "" {
		return false
	}
	if '0' <= name[0] && name[0] <= '9' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !identBody(name[i]) {
			return false
		}
	}
	return true
}

func quoteIdent(name string) string {
	if identOK(name) {
		return name
	}
	return strconv.Quote(name)
}

func unquoteIdent(s string) (string, error) {
	if len(s) > 0 && s[0] == '"' {
		return strconv.Unquote(s)
	}
	if !identOK(s) && !allDigits(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	return s, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
