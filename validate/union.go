package validate

import (
	"strings"

	"github.com/eure-format/go-eure/ir"
	"github.com/eure-format/go-eure/ir/epath"
	"github.com/eure-format/go-eure/schema"
)

// variantTag is the reserved extension key carrying the tag under the
// default representation.
const variantTag = "variant"

func (v *validator) checkUnion(docId ir.NodeId, sn *schema.Node, p epath.Path, depth int) error {
	dn := v.doc.Node(docId)
	if dn.Kind != ir.MapKind {
		v.mismatch(p, CodeTypeMismatch, "union", dn.Kind.String(), "expected a union value, got %s", dn.Kind)
		return nil
	}
	switch sn.Repr.Kind {
	case schema.ExternalRepr:
		return v.unionExternal(docId, dn, sn, p, depth)
	case schema.InternalRepr:
		return v.unionInternal(docId, dn, sn, p, depth)
	case schema.AdjacentRepr:
		return v.unionAdjacent(dn, sn, p, depth)
	}
	return v.unionTagged(docId, dn, sn, p, depth)
}

// unionTagged reads the reserved "$variant" extension key and checks
// the remaining entries as the variant's record.
func (v *validator) unionTagged(docId ir.NodeId, dn *ir.Node, sn *schema.Node, p epath.Path, depth int) error {
	tagId, ok := v.doc.MapExt(docId, variantTag)
	if !ok {
		if v.opts.TagMode == Lenient {
			return v.unionInferred(docId, dn, sn, nil, p, depth)
		}
		v.errAt(p, CodeVariantTagMissing, "union value carries no $%s tag", variantTag)
		return nil
	}
	tag := v.doc.Node(tagId)
	if tag.Kind != ir.StringKind {
		v.errAt(p.With(epath.Extension(variantTag)), CodeVariantTagMissing, "tag must be a string, got %s", tag.Kind)
		return nil
	}
	va, ok := sn.Variant(tag.Str)
	if !ok {
		v.mismatch(p.With(epath.Extension(variantTag)), CodeVariantUnknown,
			variantNames(sn), tag.Str, "unknown variant %q", tag.Str)
		return nil
	}
	return v.checkRecord(docId, v.sch.Node(va.Node), nil, p, depth+1)
}

// unionExternal expects a single plain key naming the variant, with
// the variant record as its value.
func (v *validator) unionExternal(docId ir.NodeId, dn *ir.Node, sn *schema.Node, p epath.Path, depth int) error {
	var name string
	var payload ir.NodeId
	plain := 0
	for i, key := range dn.Keys {
		n, ok := plainName(key)
		if !ok {
			continue
		}
		plain++
		name, payload = n, dn.Kids[i]
	}
	if plain != 1 {
		v.errAt(p, CodeVariantTagMissing, "expected a single wrapping key, got %d", plain)
		return nil
	}
	va, ok := sn.Variant(name)
	if !ok {
		v.mismatch(p.With(nameSeg(name)), CodeVariantUnknown, variantNames(sn), name, "unknown variant %q", name)
		return nil
	}
	return v.check(payload, va.Node, p.With(nameSeg(name)), depth+1)
}

// unionInternal reads the tag from a plain field among the variant's
// own fields; the tag field never counts as unknown.
func (v *validator) unionInternal(docId ir.NodeId, dn *ir.Node, sn *schema.Node, p epath.Path, depth int) error {
	ignore := map[string]bool{sn.Repr.Tag: true}
	tagId, ok := plainField(dn, sn.Repr.Tag)
	if !ok {
		if v.opts.TagMode == Lenient {
			return v.unionInferred(docId, dn, sn, ignore, p, depth)
		}
		v.errAt(p, CodeVariantTagMissing, "union value carries no %q tag field", sn.Repr.Tag)
		return nil
	}
	tag := v.doc.Node(tagId)
	if tag.Kind != ir.StringKind {
		v.errAt(p.With(nameSeg(sn.Repr.Tag)), CodeVariantTagMissing, "tag must be a string, got %s", tag.Kind)
		return nil
	}
	va, ok := sn.Variant(tag.Str)
	if !ok {
		v.mismatch(p.With(nameSeg(sn.Repr.Tag)), CodeVariantUnknown, variantNames(sn), tag.Str, "unknown variant %q", tag.Str)
		return nil
	}
	return v.checkRecord(docId, v.sch.Node(va.Node), ignore, p, depth+1)
}

// unionAdjacent reads the tag from one field and the payload from
// another; nothing else may appear beside them.
func (v *validator) unionAdjacent(dn *ir.Node, sn *schema.Node, p epath.Path, depth int) error {
	var tagId, contentId ir.NodeId
	var hasTag, hasContent bool
	for i, key := range dn.Keys {
		name, ok := plainName(key)
		if !ok {
			continue
		}
		switch name {
		case sn.Repr.Tag:
			tagId, hasTag = dn.Kids[i], true
		case sn.Repr.Content:
			contentId, hasContent = dn.Kids[i], true
		default:
			v.errAt(p.With(keySeg(key)), CodeUnknownField, "field %q is not part of the representation", name)
		}
	}
	if !hasTag {
		v.errAt(p, CodeVariantTagMissing, "union value carries no %q tag field", sn.Repr.Tag)
		return nil
	}
	tag := v.doc.Node(tagId)
	if tag.Kind != ir.StringKind {
		v.errAt(p.With(nameSeg(sn.Repr.Tag)), CodeVariantTagMissing, "tag must be a string, got %s", tag.Kind)
		return nil
	}
	va, ok := sn.Variant(tag.Str)
	if !ok {
		v.mismatch(p.With(nameSeg(sn.Repr.Tag)), CodeVariantUnknown, variantNames(sn), tag.Str, "unknown variant %q", tag.Str)
		return nil
	}
	cp := p.With(nameSeg(sn.Repr.Content))
	if !hasContent {
		v.errAt(cp, CodeMissingField, "required field %q is absent", sn.Repr.Content)
		return nil
	}
	return v.check(contentId, va.Node, cp, depth+1)
}

// unionInferred picks the unique variant whose required fields are
// all present. Zero matches is an unknown variant, several is an
// ambiguity; neither is tie-broken.
func (v *validator) unionInferred(docId ir.NodeId, dn *ir.Node, sn *schema.Node, ignore map[string]bool, p epath.Path, depth int) error {
	present := map[string]bool{}
	for _, key := range dn.Keys {
		if name, ok := plainName(key); ok && !ignore[name] {
			present[name] = true
		}
	}
	var matches []*schema.Variant
	for i := range sn.Variants {
		va := &sn.Variants[i]
		rec := v.sch.Node(va.Node)
		ok := true
		for _, f := range rec.Fields {
			if !f.Optional && !present[f.Name] {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, va)
		}
	}
	switch len(matches) {
	case 1:
		return v.checkRecord(docId, v.sch.Node(matches[0].Node), ignore, p, depth+1)
	case 0:
		v.errAt(p, CodeVariantUnknown, "no variant's required fields are all present")
	default:
		names := make([]string, len(matches))
		for i, va := range matches {
			names[i] = va.Name
		}
		v.errAt(p, CodeVariantAmbiguous, "fields match variants %s", strings.Join(names, ", "))
	}
	return nil
}

func plainField(dn *ir.Node, name string) (ir.NodeId, bool) {
	for i, key := range dn.Keys {
		if n, ok := plainName(key); ok && n == name {
			return dn.Kids[i], true
		}
	}
	return 0, false
}

func variantNames(sn *schema.Node) string {
	names := make([]string, len(sn.Variants))
	for i, va := range sn.Variants {
		names[i] = va.Name
	}
	return strings.Join(names, ", ")
}
