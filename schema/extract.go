package schema

import (
	"fmt"
	"regexp"

	"github.com/eure-format/go-eure/debug"
	"github.com/eure-format/go-eure/ir"
	"github.com/eure-format/go-eure/ir/epath"
	"github.com/eure-format/go-eure/num"
)

// Annotation keys, without the '$' sigil.
const (
	annType         = "type"
	annLiteral      = "literal"
	annArray        = "array"
	annMap          = "map"
	annTuple        = "tuple"
	annOptional     = "optional"
	annVariants     = "variants"
	annVariantRepr  = "variant-repr"
	annVariant      = "variant" // data-side union tag, not schema
	annUnknown      = "unknown-fields"
	annMin          = "min"
	annMax          = "max"
	annExclusiveMin = "exclusive-min"
	annExclusiveMax = "exclusive-max"
	annMultipleOf   = "multiple-of"
	annMinLength    = "min-length"
	annMaxLength    = "max-length"
	annPattern      = "pattern"
	annMinItems     = "min-items"
	annMaxItems     = "max-items"
	annDescription  = "description"
	annDeprecated   = "deprecated"
	annDefault      = "default"
	annExamples     = "examples"
	annRename       = "rename"
	annRenameAll    = "rename-all"
	annTypes        = "types"
)

// IsAnnotationKey reports whether an extension key name belongs to the
// schema annotation vocabulary. The validator uses it to tell a
// declaration stub (an annotation-only map, which stands for an
// unfilled value) apart from data that merely uses extension keys.
func IsAnnotationKey(name string) bool {
	switch name {
	case annType, annLiteral, annArray, annMap, annTuple, annOptional,
		annVariants, annVariantRepr, annUnknown,
		annMin, annMax, annExclusiveMin, annExclusiveMax, annMultipleOf,
		annMinLength, annMaxLength, annPattern, annMinItems, annMaxItems,
		annDescription, annDeprecated, annDefault, annExamples,
		annRename, annRenameAll, annTypes:
		return true
	}
	return false
}

// Extract synthesizes a schema from the '$'-annotations of a finalized
// document. The returned bool reports whether the document was a pure
// schema: declarations only, no example data outside "$types" scope.
func Extract(doc *ir.Document) (*Schema, bool, error) {
	if !doc.Finalized() {
		return nil, false, ErrNotFinalized
	}
	ex := &extractor{doc: doc, sch: New(), pure: true}
	root := doc.Root()
	if doc.Kind(root) == ir.MapKind {
		if err := ex.extractTypes(root); err != nil {
			return nil, false, err
		}
		if v, ok := doc.MapExt(root, annRenameAll); ok {
			val := doc.ToValue(v)
			if val.Kind != ir.StringKind {
				return nil, false, errAtf(epath.Path{epath.Extension(annRenameAll)}, ErrBadAnnotation, "expected string, got %s", val.Kind)
			}
			ex.sch.Naming.RenameAll = val.Str
		}
	}
	got, err := ex.extractNode(root, nil, true)
	if err != nil {
		return nil, false, err
	}
	if got.ok {
		ex.sch.Root = got.id
	} else {
		ex.sch.Root = ex.sch.Add(Node{Kind: AnyKind})
	}
	ex.scanPurity(root)
	if debug.Extract() {
		debug.Logf("extract: %d nodes, %d types, pure=%v", ex.sch.Len(), ex.sch.Types.Len(), ex.pure)
	}
	return ex.sch, ex.pure, nil
}

type extractor struct {
	doc  *ir.Document
	sch  *Schema
	pure bool
}

// extracted is the result of reading one node's annotations. ok is
// false when the node carries no schema information at all.
type extracted struct {
	id       NodeId
	ok       bool
	optional bool
}

// extractTypes reads the reserved root section "$types.<Name>" into
// the registry. References between named types stay lazy, so a single
// pass suffices regardless of declaration order.
func (ex *extractor) extractTypes(root ir.NodeId) error {
	section, ok := ex.doc.MapExt(root, annTypes)
	if !ok {
		return nil
	}
	base := epath.Path{epath.Extension(annTypes)}
	n := ex.doc.Node(section)
	if n.Kind != ir.MapKind {
		return errAtf(base, ErrBadAnnotation, "expected a map of type declarations, got %s", n.Kind)
	}
	for i, key := range n.Keys {
		if key.Kind != ir.IdentKeyKind {
			return errAtf(base, ErrBadAnnotation, "type name must be an identifier, got %s", key.Canonical())
		}
		path := base.With(epath.Ident(key.Name))
		got, err := ex.extractNode(n.Kids[i], path, false)
		if err != nil {
			return err
		}
		id := got.id
		if !got.ok {
			id = ex.sch.Add(Node{Kind: AnyKind})
		}
		if err := ex.sch.Types.Register(key.Name, id); err != nil {
			return errAt(path, err)
		}
	}
	return nil
}

// anns is one node's extension entries, partitioned by meaning.
type anns struct {
	typ      *ir.Value
	literal  *ir.Value
	array    *ir.Value
	arrayId  ir.NodeId
	mapDecl  ir.NodeId
	tuple    ir.NodeId
	variants ir.NodeId
	repr     *VariantRepr
	unknown  *UnknownFieldsPolicy
	optional bool

	text     TextConstraints
	nums     NumConstraints
	minItems *int
	maxItems *int

	meta Metadata

	hasMap, hasTuple, hasVariants bool
	hasText, hasNum, hasItems     bool
}

func (ex *extractor) readAnns(id ir.NodeId, path epath.Path, root bool) (*anns, error) {
	a := &anns{}
	n := ex.doc.Node(id)
	for i, key := range n.Keys {
		if key.Kind != ir.ExtensionKeyKind {
			continue
		}
		kid := n.Kids[i]
		kp := path.With(epath.Extension(key.Name))
		val := ex.doc.ToValue(kid)
		switch key.Name {
		case annTypes, annRenameAll:
			if root {
				continue // consumed by Extract
			}
			a.meta.Extra = append(a.meta.Extra, Annotation{Key: key.Name, Value: val})
		case annType:
			if val.Kind != ir.StringKind {
				return nil, errAtf(kp, ErrBadType, "expected a designator string, got %s", val.Kind)
			}
			a.typ = &val
		case annLiteral:
			a.literal = &val
		case annArray:
			a.array = &val
			a.arrayId = kid
		case annMap:
			a.mapDecl, a.hasMap = kid, true
		case annTuple:
			a.tuple, a.hasTuple = kid, true
		case annVariants:
			a.variants, a.hasVariants = kid, true
		case annVariantRepr:
			repr, err := parseRepr(val)
			if err != nil {
				return nil, errAt(kp, fmt.Errorf("%w: %v", ErrBadAnnotation, err))
			}
			a.repr = &repr
		case annVariant:
			// data-side union tag; not schema information
		case annOptional:
			b, err := boolAnn(val)
			if err != nil {
				return nil, errAt(kp, err)
			}
			a.optional = b
		case annUnknown:
			p, err := parseUnknownPolicy(val)
			if err != nil {
				return nil, errAt(kp, err)
			}
			a.unknown = &p
		case annMin, annMax, annMultipleOf:
			r, ok := num.Rat(val)
			if !ok {
				return nil, errAtf(kp, ErrMalformedConstraint, "expected a number, got %s", val.Kind)
			}
			switch key.Name {
			case annMin:
				a.nums.Min = r
			case annMax:
				a.nums.Max = r
			default:
				a.nums.MultipleOf = r
			}
			a.hasNum = true
		case annExclusiveMin, annExclusiveMax:
			b, err := boolAnn(val)
			if err != nil {
				return nil, errAt(kp, fmt.Errorf("%w: %v", ErrMalformedConstraint, err))
			}
			if key.Name == annExclusiveMin {
				a.nums.ExclusiveMin = b
			} else {
				a.nums.ExclusiveMax = b
			}
			a.hasNum = true
		case annMinLength, annMaxLength:
			v, err := lenAnn(val)
			if err != nil {
				return nil, errAt(kp, err)
			}
			if key.Name == annMinLength {
				a.text.MinLength = v
			} else {
				a.text.MaxLength = v
			}
			a.hasText = true
		case annPattern:
			if val.Kind != ir.StringKind {
				return nil, errAtf(kp, ErrMalformedConstraint, "expected a pattern string, got %s", val.Kind)
			}
			re, err := regexp.Compile(val.Str)
			if err != nil {
				return nil, errAtf(kp, ErrMalformedConstraint, "%v", err)
			}
			a.text.Pattern = re
			a.hasText = true
		case annMinItems, annMaxItems:
			v, err := lenAnn(val)
			if err != nil {
				return nil, errAt(kp, err)
			}
			if key.Name == annMinItems {
				a.minItems = v
			} else {
				a.maxItems = v
			}
			a.hasItems = true
		case annDescription:
			if val.Kind != ir.StringKind && val.Kind != ir.TextKind {
				return nil, errAtf(kp, ErrBadAnnotation, "expected a string, got %s", val.Kind)
			}
			a.meta.Description = val.Str
		case annDeprecated:
			b, err := boolAnn(val)
			if err != nil {
				return nil, errAt(kp, err)
			}
			a.meta.Deprecated = b
		case annDefault:
			a.meta.Default = &val
		case annExamples:
			if val.Kind == ir.ArrayKind {
				a.meta.Examples = append(a.meta.Examples, val.Elems...)
			} else {
				a.meta.Examples = append(a.meta.Examples, val)
			}
		case annRename:
			if val.Kind != ir.StringKind {
				return nil, errAtf(kp, ErrBadAnnotation, "expected a string, got %s", val.Kind)
			}
			a.meta.Rename = val.Str
		default:
			// forward compatibility: preserve, never reject
			a.meta.Extra = append(a.meta.Extra, Annotation{Key: key.Name, Value: val})
		}
	}
	return a, nil
}

func boolAnn(v ir.Value) (bool, error) {
	if v.Kind != ir.BoolKind {
		return false, fmt.Errorf("%w: expected a boolean, got %s", ErrBadAnnotation, v.Kind)
	}
	return v.Bool, nil
}

func lenAnn(v ir.Value) (*int, error) {
	if v.Kind != ir.IntegerKind || v.Int < 0 {
		return nil, fmt.Errorf("%w: expected a non-negative integer, got %s", ErrMalformedConstraint, v.String())
	}
	n := int(v.Int)
	return &n, nil
}

func parseUnknownPolicy(v ir.Value) (UnknownFieldsPolicy, error) {
	if v.Kind == ir.StringKind {
		switch v.Str {
		case "allow":
			return AllowUnknown, nil
		case "deny":
			return DenyUnknown, nil
		}
	}
	return AllowUnknown, fmt.Errorf("%w: unknown-fields must be \"allow\" or \"deny\"", ErrBadAnnotation)
}

// parseDesignator reads a "$type" value: ".integer", ".string", ... or
// ".$types.Name" for a named reference.
func parseDesignator(s string) (Kind, string, error) {
	kinds := map[string]Kind{
		".string":  TextKind,
		".text":    TextKind,
		".code":    TextKind,
		".integer": IntegerKind,
		".float":   FloatKind,
		".boolean": BooleanKind,
		".null":    NullKind,
		".any":     AnyKind,
	}
	if k, ok := kinds[s]; ok {
		return k, "", nil
	}
	const refPrefix = ".$types."
	if len(s) > len(refPrefix) && s[:len(refPrefix)] == refPrefix {
		return ReferenceKind, s[len(refPrefix):], nil
	}
	return AnyKind, "", fmt.Errorf("%w: %q", ErrBadType, s)
}

// extractNode reads one document node's annotations into a schema
// node. Only maps can carry annotations; any other node contributes no
// schema.
func (ex *extractor) extractNode(id ir.NodeId, path epath.Path, root bool) (extracted, error) {
	if ex.doc.Kind(id) != ir.MapKind {
		return extracted{}, nil
	}
	a, err := ex.readAnns(id, path, root)
	if err != nil {
		return extracted{}, err
	}

	core, hasCore, err := ex.coreSchema(id, a, path)
	if err != nil {
		return extracted{}, err
	}

	outer := core
	hasOuter := hasCore
	if a.array != nil {
		item, err := ex.arrayItem(a, core, hasCore, path)
		if err != nil {
			return extracted{}, err
		}
		arr := Node{Kind: ArrayKind, Item: item, MinItems: a.minItems, MaxItems: a.maxItems}
		outer = ex.sch.Add(arr)
		hasOuter = true
	} else if a.hasItems {
		return extracted{}, errAtf(path, ErrMalformedConstraint, "item bounds without $array")
	}

	if !hasOuter {
		if a.optional || !a.meta.empty() || a.unknown != nil {
			// annotated but typeless: anything goes
			outer = ex.sch.Add(Node{Kind: AnyKind})
			hasOuter = true
		} else {
			return extracted{}, nil
		}
	}
	if !a.meta.empty() {
		ex.sch.Node(outer).Meta = a.meta
	}
	return extracted{id: outer, ok: hasOuter, optional: a.optional}, nil
}

// coreSchema builds the node's schema before any "$array" wrapping.
func (ex *extractor) coreSchema(id ir.NodeId, a *anns, path epath.Path) (NodeId, bool, error) {
	var kinds []string
	if a.typ != nil {
		kinds = append(kinds, "$type")
	}
	if a.literal != nil {
		kinds = append(kinds, "$literal")
	}
	if a.hasVariants {
		kinds = append(kinds, "$variants")
	}
	if a.hasMap {
		kinds = append(kinds, "$map")
	}
	if a.hasTuple {
		kinds = append(kinds, "$tuple")
	}
	if len(kinds) > 1 {
		return InvalidNode, false, errAtf(path, ErrConflict, "%v are mutually exclusive", kinds)
	}

	switch {
	case a.typ != nil:
		kind, ref, err := parseDesignator(a.typ.Str)
		if err != nil {
			return InvalidNode, false, errAt(path, err)
		}
		if kind == ReferenceKind {
			if a.hasNum || a.hasText {
				return InvalidNode, false, errAtf(path, ErrConflict, "a type reference cannot carry inline constraints")
			}
			return ex.sch.Add(Node{Kind: ReferenceKind, Ref: ref}), true, nil
		}
		n := Node{Kind: kind}
		if err := attachConstraints(&n, a, path); err != nil {
			return InvalidNode, false, err
		}
		return ex.sch.Add(n), true, nil

	case a.literal != nil:
		if a.hasNum || a.hasText {
			return InvalidNode, false, errAtf(path, ErrConflict, "a literal cannot carry constraints")
		}
		return ex.sch.Add(Node{Kind: LiteralKind, Literal: a.literal}), true, nil

	case a.hasVariants:
		uid, err := ex.extractUnion(a, path)
		if err != nil {
			return InvalidNode, false, err
		}
		return uid, true, nil

	case a.hasMap:
		mid, err := ex.extractMap(a.mapDecl, path.With(epath.Extension(annMap)))
		if err != nil {
			return InvalidNode, false, err
		}
		return mid, true, nil

	case a.hasTuple:
		tid, err := ex.extractTuple(a.tuple, path.With(epath.Extension(annTuple)))
		if err != nil {
			return InvalidNode, false, err
		}
		return tid, true, nil

	default:
		if a.hasNum || a.hasText {
			return InvalidNode, false, errAtf(path, ErrMalformedConstraint, "constraints without a $type")
		}
		return ex.extractRecord(id, a, path)
	}
}

func attachConstraints(n *Node, a *anns, path epath.Path) error {
	switch n.Kind {
	case TextKind:
		if a.hasNum {
			return errAtf(path, ErrMalformedConstraint, "numeric constraint on a text type")
		}
		if a.hasText {
			c := a.text
			n.Text = &c
		}
	case IntegerKind, FloatKind:
		if a.hasText {
			return errAtf(path, ErrMalformedConstraint, "text constraint on a numeric type")
		}
		if a.hasNum {
			c := a.nums
			n.Num = &c
		}
	default:
		if a.hasNum || a.hasText {
			return errAtf(path, ErrMalformedConstraint, "constraints on %s", n.Kind)
		}
	}
	return nil
}

// extractRecord gathers the plain-keyed children that carry schema
// information into record fields. Fields are unique by serialized
// name; an ident key and a same-spelled string-literal key collide.
func (ex *extractor) extractRecord(id ir.NodeId, a *anns, path epath.Path) (NodeId, bool, error) {
	n := ex.doc.Node(id)
	var fields []Field
	seen := map[string]bool{}
	for i, key := range n.Keys {
		var name string
		switch {
		case key.Kind == ir.IdentKeyKind:
			name = key.Name
		case key.Kind == ir.ValueKeyKind && key.Lit.Kind == ir.StringKind:
			name = key.Lit.Str
		default:
			continue
		}
		got, err := ex.extractNode(n.Kids[i], path.With(epath.Ident(name)), false)
		if err != nil {
			return InvalidNode, false, err
		}
		if !got.ok {
			continue
		}
		fname := name
		if meta := ex.sch.Node(got.id).Meta; meta.Rename != "" {
			fname = meta.Rename
		}
		if seen[fname] {
			return InvalidNode, false, errAtf(path, ErrDuplicateField, "%q", fname)
		}
		seen[fname] = true
		fields = append(fields, Field{Name: fname, Node: got.id, Optional: got.optional})
	}
	if len(fields) == 0 && a.unknown == nil {
		return InvalidNode, false, nil
	}
	rec := Node{Kind: RecordKind, Fields: fields}
	if a.unknown != nil {
		rec.Unknown = *a.unknown
	}
	return ex.sch.Add(rec), true, nil
}

func (ex *extractor) extractUnion(a *anns, path epath.Path) (NodeId, error) {
	repr := VariantRepr{Kind: TaggedRepr}
	if a.repr != nil {
		repr = *a.repr
	}
	base := path.With(epath.Extension(annVariants))
	n := ex.doc.Node(a.variants)
	if n.Kind != ir.MapKind {
		return InvalidNode, errAtf(base, ErrBadAnnotation, "expected a map of variants, got %s", n.Kind)
	}
	var variants []Variant
	seen := map[string]bool{}
	for i, key := range n.Keys {
		if key.Kind != ir.IdentKeyKind {
			return InvalidNode, errAtf(base, ErrBadAnnotation, "variant name must be an identifier, got %s", key.Canonical())
		}
		vp := base.With(epath.Ident(key.Name))
		if seen[key.Name] {
			return InvalidNode, errAtf(base, ErrDuplicateField, "variant %q", key.Name)
		}
		seen[key.Name] = true
		got, err := ex.extractNode(n.Kids[i], vp, false)
		if err != nil {
			return InvalidNode, err
		}
		var vid NodeId
		switch {
		case !got.ok:
			vid = ex.sch.Add(Node{Kind: RecordKind})
		case ex.sch.Node(got.id).Kind == RecordKind:
			vid = got.id
		default:
			return InvalidNode, errAtf(vp, ErrBadAnnotation, "variant must declare a record, got %s", ex.sch.Node(got.id).Kind)
		}
		if len(ex.sch.Node(vid).Fields) == 0 && repr.Kind == AdjacentRepr {
			return InvalidNode, errAtf(vp, ErrEmptyVariant, "adjacent representation requires variant content")
		}
		variants = append(variants, Variant{Name: key.Name, Node: vid})
	}
	return ex.sch.Add(Node{Kind: UnionKind, Variants: variants, Repr: repr}), nil
}

// extractMap reads a "$map" declaration: {key: <designator or
// declaration>, value: <designator or declaration>}. Key defaults to
// text, value to any.
func (ex *extractor) extractMap(id ir.NodeId, path epath.Path) (NodeId, error) {
	n := ex.doc.Node(id)
	if n.Kind != ir.MapKind {
		return InvalidNode, errAtf(path, ErrBadAnnotation, "expected a map declaration, got %s", n.Kind)
	}
	key := InvalidNode
	val := InvalidNode
	for i, k := range n.Keys {
		if k.Kind != ir.IdentKeyKind {
			continue
		}
		sid, err := ex.declOrDesignator(n.Kids[i], path.With(epath.Ident(k.Name)))
		if err != nil {
			return InvalidNode, err
		}
		switch k.Name {
		case "key":
			key = sid
		case "value":
			val = sid
		default:
			return InvalidNode, errAtf(path, ErrBadAnnotation, "unexpected $map entry %q", k.Name)
		}
	}
	if key == InvalidNode {
		key = ex.sch.Add(Node{Kind: TextKind})
	}
	if val == InvalidNode {
		val = ex.sch.Add(Node{Kind: AnyKind})
	}
	return ex.sch.Add(Node{Kind: MapKind, Key: key, Value: val}), nil
}

// extractTuple reads a "$tuple" declaration: an array of designators
// or nested declarations, one per element.
func (ex *extractor) extractTuple(id ir.NodeId, path epath.Path) (NodeId, error) {
	n := ex.doc.Node(id)
	if n.Kind != ir.ArrayKind && n.Kind != ir.TupleKind {
		return InvalidNode, errAtf(path, ErrBadAnnotation, "expected an array of element types, got %s", n.Kind)
	}
	elems := make([]NodeId, 0, len(n.Kids))
	for i, kid := range n.Kids {
		sid, err := ex.declOrDesignator(kid, path.With(epath.ArrayIndex(i)))
		if err != nil {
			return InvalidNode, err
		}
		elems = append(elems, sid)
	}
	return ex.sch.Add(Node{Kind: TupleKind, Elems: elems}), nil
}

// arrayItem resolves the "$array" annotation value into the item
// schema: true derives the item from the node's other annotations, a
// designator string or a nested declaration stands alone.
func (ex *extractor) arrayItem(a *anns, core NodeId, hasCore bool, path epath.Path) (NodeId, error) {
	ap := path.With(epath.Extension(annArray))
	switch a.array.Kind {
	case ir.BoolKind:
		if !a.array.Bool {
			return InvalidNode, errAtf(ap, ErrBadAnnotation, "$array must be true, a designator, or a declaration")
		}
		if hasCore {
			return core, nil
		}
		return ex.sch.Add(Node{Kind: AnyKind}), nil
	case ir.StringKind:
		if hasCore {
			return InvalidNode, errAtf(path, ErrConflict, "$array designator next to another type declaration")
		}
		return ex.designator(a.array.Str, ap)
	case ir.MapKind:
		if hasCore {
			return InvalidNode, errAtf(path, ErrConflict, "$array declaration next to another type declaration")
		}
		got, err := ex.extractNode(a.arrayId, ap, false)
		if err != nil {
			return InvalidNode, err
		}
		if !got.ok {
			return ex.sch.Add(Node{Kind: AnyKind}), nil
		}
		return got.id, nil
	}
	return InvalidNode, errAtf(ap, ErrBadAnnotation, "$array must be true, a designator, or a declaration")
}

// declOrDesignator accepts either a designator string or a nested
// declaration map.
func (ex *extractor) declOrDesignator(id ir.NodeId, path epath.Path) (NodeId, error) {
	v := ex.doc.ToValue(id)
	if v.Kind == ir.StringKind {
		return ex.designator(v.Str, path)
	}
	if v.Kind == ir.MapKind {
		got, err := ex.extractNode(id, path, false)
		if err != nil {
			return InvalidNode, err
		}
		if got.ok {
			return got.id, nil
		}
		return ex.sch.Add(Node{Kind: AnyKind}), nil
	}
	return InvalidNode, errAtf(path, ErrBadAnnotation, "expected a designator or a declaration, got %s", v.Kind)
}

func (ex *extractor) designator(s string, path epath.Path) (NodeId, error) {
	kind, ref, err := parseDesignator(s)
	if err != nil {
		return InvalidNode, errAt(path, err)
	}
	if kind == ReferenceKind {
		return ex.sch.Add(Node{Kind: ReferenceKind, Ref: ref}), nil
	}
	return ex.sch.Add(Node{Kind: kind}), nil
}

// scanPurity clears pure when a plain-keyed leaf value or collection
// exists outside extension scope: such a node is example data, so the
// document is self-describing rather than a pure schema.
func (ex *extractor) scanPurity(id ir.NodeId) {
	if !ex.pure {
		return
	}
	n := ex.doc.Node(id)
	switch n.Kind {
	case ir.MapKind:
		for i, key := range n.Keys {
			if key.Kind == ir.ExtensionKeyKind {
				continue
			}
			kid := n.Kids[i]
			switch ex.doc.Kind(kid) {
			case ir.MapKind:
				ex.scanPurity(kid)
			case ir.HoleKind:
				// declared, unfilled: not data
			default:
				ex.pure = false
				return
			}
		}
	case ir.HoleKind:
		// fine
	default:
		ex.pure = false
	}
}
