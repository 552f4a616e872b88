package epath

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is an ordered segment sequence addressing a node from a
// document's root. The zero value addresses the root itself.
type Path []Segment

// Root is the empty path.
func Root() Path { return nil }

// With returns a new path extended by seg. The receiver is never
// mutated, so a parent path can be shared across sibling diagnostics.
func (p Path) With(seg Segment) Path {
	np := make(Path, len(p), len(p)+1)
	copy(np, p)
	return append(np, seg)
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// String renders the path deterministically. The root path renders as
// "$"; idents and extensions join with '.', indices and literal keys
// attach with brackets.
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	b := &strings.Builder{}
	for i, seg := range p {
		switch seg.Kind {
		case IdentSegment, ExtensionSegment, TupleIndexSegment:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.String())
		default:
			b.WriteString(seg.String())
		}
	}
	return b.String()
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Path) UnmarshalText(d []byte) error {
	pp, err := Parse(string(d))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// Parse is the inverse of String. "$" parses to the root path.
func Parse(s string) (Path, error) {
	if s == "" || s == "$" {
		return nil, nil
	}
	var p Path
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			if len(p) == 0 {
				return nil, fmt.Errorf("path %q: leading '.'", s)
			}
			i++
			seg, n, err := parseDotted(s[i:])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			p = append(p, seg)
			i += n
		case '[':
			seg, n, err := parseBracket(s[i:])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			p = append(p, seg)
			i += n
		default:
			if len(p) != 0 {
				return nil, fmt.Errorf("path %q: expected '.' or '[' at offset %d", s, i)
			}
			seg, n, err := parseDotted(s[i:])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			p = append(p, seg)
			i += n
		}
	}
	return p, nil
}

// parseDotted parses an ident, extension, or tuple-index segment and
// returns the bytes consumed.
func parseDotted(s string) (Segment, int, error) {
	if s == "" {
		return Segment{}, 0, fmt.Errorf("expected segment at end of path")
	}
	ext := false
	i := 0
	if s[0] == '$' {
		ext = true
		i = 1
	}
	var raw string
	var n int
	if i < len(s) && s[i] == '"' {
		end, err := quotedEnd(s[i:])
		if err != nil {
			return Segment{}, 0, err
		}
		uq, err := strconv.Unquote(s[i : i+end])
		if err != nil {
			return Segment{}, 0, err
		}
		raw = uq
		n = i + end
	} else {
		j := i
		for j < len(s) && s[j] != '.' && s[j] != '[' {
			if !identBody(s[j]) {
				return Segment{}, 0, fmt.Errorf("invalid character %q in segment", s[j])
			}
			j++
		}
		raw = s[i:j]
		n = j
	}
	if raw == "" {
		return Segment{}, 0, fmt.Errorf("empty segment")
	}
	if ext {
		return Extension(raw), n, nil
	}
	if allDigits(raw) {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx > MaxTupleIndex {
			return Segment{}, 0, fmt.Errorf("tuple index %q out of range", raw)
		}
		return TupleIndex(idx), n, nil
	}
	return Ident(raw), n, nil
}

// parseBracket parses "[...]": an array index, the append position
// "[]", or a literal key.
func parseBracket(s string) (Segment, int, error) {
	end, err := bracketEnd(s)
	if err != nil {
		return Segment{}, 0, err
	}
	body := s[1 : end-1]
	switch {
	case body == "":
		return ArrayAppend(), end, nil
	case allDigits(body):
		idx, err := strconv.ParseUint(body, 10, 31)
		if err != nil {
			return Segment{}, 0, fmt.Errorf("invalid array index %q: %w", body, err)
		}
		return ArrayIndex(int(idx)), end, nil
	default:
		return ValueKey(body), end, nil
	}
}

// bracketEnd returns the offset just past the ']' matching s[0]=='['.
// Quoted strings inside the brackets may contain ']' freely.
func bracketEnd(s string) (int, error) {
	depth := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '[':
			depth++
			i++
		case ']':
			depth--
			i++
			if depth == 0 {
				return i, nil
			}
		case '"':
			n, err := quotedEnd(s[i:])
			if err != nil {
				return 0, err
			}
			i += n
		default:
			i++
		}
	}
	return 0, fmt.Errorf("unterminated '['")
}

// quotedEnd returns the length of the double-quoted string at s[0].
func quotedEnd(s string) (int, error) {
	if s == "" || s[0] != '"' {
		return 0, fmt.Errorf("expected '\"'")
	}
	escaped := false
	for i := 1; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string")
}
