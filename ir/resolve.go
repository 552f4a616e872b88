package ir

import (
	"fmt"

	"github.com/eure-format/go-eure/ir/epath"
)

// ResolvePath walks p from start in read mode: a missing segment fails
// with ErrPathNotFound naming the first unresolvable prefix.
func (d *Document) ResolvePath(start NodeId, p epath.Path) (NodeId, error) {
	cur := start
	for i, seg := range p {
		next, ok := d.step(cur, seg)
		if !ok {
			return InvalidNode, fmt.Errorf("%w: %s", ErrPathNotFound, p[:i+1])
		}
		cur = next
	}
	return cur, nil
}

func (d *Document) step(id NodeId, seg epath.Segment) (NodeId, bool) {
	n := d.Node(id)
	switch seg.Kind {
	case epath.IdentSegment:
		if n.Kind != MapKind {
			return InvalidNode, false
		}
		return d.MapIdent(id, seg.Name)
	case epath.ExtensionSegment:
		if n.Kind != MapKind {
			return InvalidNode, false
		}
		return d.MapExt(id, seg.Name)
	case epath.ValueSegment:
		if n.Kind != MapKind {
			return InvalidNode, false
		}
		for i, k := range n.Keys {
			if k.Kind == ValueKeyKind && k.Lit.String() == seg.Name {
				return n.Kids[i], true
			}
		}
		return InvalidNode, false
	case epath.TupleIndexSegment:
		if n.Kind != TupleKind || seg.Index >= len(n.Kids) {
			return InvalidNode, false
		}
		return n.Kids[seg.Index], true
	case epath.ArrayIndexSegment:
		if n.Kind != ArrayKind || !seg.HasIndex || seg.Index >= len(n.Kids) {
			return InvalidNode, false
		}
		return n.Kids[seg.Index], true
	}
	return InvalidNode, false
}

// EnsurePath walks p from start in construction mode, creating
// intermediate map nodes on demand. Holes along the way are promoted
// to maps; an existing node of a conflicting kind is an error. The
// unspecified array position "[]" appends a fresh element.
func (d *Document) EnsurePath(start NodeId, p epath.Path) (NodeId, error) {
	if d.final {
		return InvalidNode, ErrFinalized
	}
	cur := start
	for i, seg := range p {
		next, err := d.ensureStep(cur, seg)
		if err != nil {
			return InvalidNode, fmt.Errorf("%s: %w", p[:i+1], err)
		}
		cur = next
	}
	return cur, nil
}

func (d *Document) ensureStep(id NodeId, seg epath.Segment) (NodeId, error) {
	n := d.Node(id)
	if n.Kind == HoleKind {
		switch seg.Kind {
		case epath.IdentSegment, epath.ExtensionSegment, epath.ValueSegment:
			n.Kind = MapKind
		case epath.ArrayIndexSegment:
			n.Kind = ArrayKind
		case epath.TupleIndexSegment:
			n.Kind = TupleKind
		}
	}
	switch seg.Kind {
	case epath.IdentSegment, epath.ExtensionSegment, epath.ValueSegment:
		if n.Kind != MapKind {
			return InvalidNode, fmt.Errorf("%w: %s", ErrWrongKind, n.Kind)
		}
		if kid, ok := d.step(id, seg); ok {
			return kid, nil
		}
		kid := d.add(Node{Kind: HoleKind})
		key, err := segmentKey(seg)
		if err != nil {
			return InvalidNode, err
		}
		// re-read: add may have grown the arena
		n = d.Node(id)
		n.Keys = append(n.Keys, key)
		n.Kids = append(n.Kids, kid)
		return kid, nil
	case epath.ArrayIndexSegment:
		if n.Kind != ArrayKind {
			return InvalidNode, fmt.Errorf("%w: %s", ErrWrongKind, n.Kind)
		}
		if seg.HasIndex {
			if seg.Index < len(n.Kids) {
				return n.Kids[seg.Index], nil
			}
			if seg.Index != len(n.Kids) {
				return InvalidNode, fmt.Errorf("array index %d out of bounds (len %d)", seg.Index, len(n.Kids))
			}
		}
		kid := d.add(Node{Kind: HoleKind})
		n = d.Node(id)
		n.Kids = append(n.Kids, kid)
		return kid, nil
	case epath.TupleIndexSegment:
		if n.Kind != TupleKind {
			return InvalidNode, fmt.Errorf("%w: %s", ErrWrongKind, n.Kind)
		}
		for seg.Index >= len(n.Kids) {
			kid := d.add(Node{Kind: HoleKind})
			n = d.Node(id)
			n.Kids = append(n.Kids, kid)
		}
		return n.Kids[seg.Index], nil
	}
	return InvalidNode, fmt.Errorf("unknown segment kind %d", int(seg.Kind))
}

// segmentKey converts a map-addressing segment into the ObjectKey it
// names. Value segments carry only the canonical rendering, which is
// parsed back into the literal it denotes.
func segmentKey(seg epath.Segment) (ObjectKey, error) {
	switch seg.Kind {
	case epath.IdentSegment:
		return IdentKey(seg.Name), nil
	case epath.ExtensionSegment:
		return ExtKey(seg.Name), nil
	case epath.ValueSegment:
		return ValueKey(ParseCanonicalValue(seg.Name)), nil
	}
	return ObjectKey{}, fmt.Errorf("segment %s does not address a map", seg)
}
