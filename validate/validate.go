package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/eure-format/go-eure/debug"
	"github.com/eure-format/go-eure/ir"
	"github.com/eure-format/go-eure/ir/epath"
	"github.com/eure-format/go-eure/num"
	"github.com/eure-format/go-eure/schema"
)

// TagMode selects how a union picks its variant when no tag is
// present.
type TagMode int

const (
	// Explicit requires the representation's tag. Default.
	Explicit TagMode = iota

	// Lenient infers the variant when exactly one variant's required
	// fields are all present. Ambiguity is an error, never a tie-break.
	Lenient
)

type Options struct {
	TagMode TagMode

	// MaxDepth bounds document nesting, including reference
	// dereferences. Zero means the default of 1024.
	MaxDepth int
}

const defaultMaxDepth = 1024

// Document checks doc against sch and returns every diagnostic found.
// The run is two passes: a structural pass that checks shapes, kinds
// and constraints while skipping unfilled holes, then a completeness
// pass that reports each required hole as a missing field. Both doc
// and sch must be treated as immutable for the duration; neither is
// written to, so one schema may serve concurrent validations.
func Document(doc *ir.Document, sch *schema.Schema, opts *Options) (*Result, error) {
	if !doc.Finalized() {
		return nil, ErrNotFinalized
	}
	if opts == nil {
		opts = &Options{}
	}
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = defaultMaxDepth
	}
	v := &validator{doc: doc, sch: sch, opts: opts, maxDepth: maxDepth, res: &Result{}}
	v.phase = structural
	if err := v.check(doc.Root(), sch.Root, nil, 0); err != nil {
		return nil, err
	}
	v.phase = completeness
	if err := v.check(doc.Root(), sch.Root, nil, 0); err != nil {
		return nil, err
	}
	if debug.Validate() {
		debug.Logf("validate: %d errors, %d warnings", len(v.res.Errors), len(v.res.Warnings))
	}
	return v.res, nil
}

type phase int

const (
	structural phase = iota
	completeness
)

type validator struct {
	doc      *ir.Document
	sch      *schema.Schema
	opts     *Options
	maxDepth int
	res      *Result
	phase    phase
}

// errAt records a structural diagnostic. The completeness pass walks
// the same tree again, so everything the structural pass already
// reported is suppressed there.
func (v *validator) errAt(p epath.Path, code Code, format string, args ...any) {
	if v.phase != structural {
		return
	}
	v.res.Errors = append(v.res.Errors, Error{Path: p, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) mismatch(p epath.Path, code Code, expected, actual, format string, args ...any) {
	if v.phase != structural {
		return
	}
	v.res.Errors = append(v.res.Errors, Error{
		Path: p, Code: code, Message: fmt.Sprintf(format, args...),
		Expected: expected, Actual: actual,
	})
}

func (v *validator) warnAt(p epath.Path, code Code, format string, args ...any) {
	if v.phase != structural {
		return
	}
	v.res.Warnings = append(v.res.Warnings, Warning{Path: p, Code: code, Message: fmt.Sprintf(format, args...)})
}

// unfilled reports whether the node stands for a value that has not
// been provided: a hole, or a declaration stub, i.e. a map holding
// only schema annotations. A self-describing document validates
// against its own extracted schema because its declarations read as
// unfilled values, not as type mismatches.
func (v *validator) unfilled(id ir.NodeId) bool {
	dn := v.doc.Node(id)
	switch dn.Kind {
	case ir.HoleKind:
		return true
	case ir.MapKind:
		decl := false
		for _, key := range dn.Keys {
			if key.Kind != ir.ExtensionKeyKind {
				return false
			}
			if schema.IsAnnotationKey(key.Name) {
				decl = true
			}
		}
		return decl
	}
	return false
}

// hole records a completeness diagnostic: a required position left
// unfilled.
func (v *validator) hole(p epath.Path) {
	if v.phase != completeness {
		return
	}
	v.res.Errors = append(v.res.Errors, Error{Path: p, Code: CodeMissingField, Message: "required value is not filled in"})
}

func (v *validator) check(docId ir.NodeId, schId schema.NodeId, p epath.Path, depth int) error {
	if depth > v.maxDepth {
		return fmt.Errorf("%w at %s (limit %d)", ErrDepthExceeded, p, v.maxDepth)
	}
	sn := v.sch.Node(schId)
	if sn == nil {
		return fmt.Errorf("%w: unresolvable node id at %s", ErrSchemaCorrupt, p)
	}

	// Reference dereference is transparent; each hop costs depth so
	// that reference cycles without structure terminate.
	for sn.Kind == schema.ReferenceKind {
		ref := sn.Ref
		target, ok := v.sch.Resolve(ref)
		if !ok {
			v.errAt(p, CodeDanglingReference, "type %q is not declared", ref)
			return nil
		}
		depth++
		if depth > v.maxDepth {
			return fmt.Errorf("%w at %s (limit %d)", ErrDepthExceeded, p, v.maxDepth)
		}
		sn = v.sch.Node(target)
		if sn == nil {
			return fmt.Errorf("%w: type %q resolves to an unresolvable node", ErrSchemaCorrupt, ref)
		}
	}

	dn := v.doc.Node(docId)
	if v.unfilled(docId) {
		v.hole(p)
		return nil
	}

	if sn.Meta.Deprecated {
		v.warnAt(p, CodeDeprecated, "deprecated")
	}

	switch sn.Kind {
	case schema.AnyKind:
		return nil
	case schema.NullKind:
		v.wantKind(dn, ir.NullKind, p, "null")
	case schema.BooleanKind:
		v.wantKind(dn, ir.BoolKind, p, "boolean")
	case schema.TextKind:
		v.checkText(dn, sn, p)
	case schema.IntegerKind:
		if v.wantKind(dn, ir.IntegerKind, p, "integer") {
			v.checkNum(dn, sn, p)
		}
	case schema.FloatKind:
		// integers never coerce to float
		if v.wantKind(dn, ir.FloatKind, p, "float") {
			v.checkNum(dn, sn, p)
		}
	case schema.LiteralKind:
		if sn.Literal == nil {
			return fmt.Errorf("%w: literal node without a value at %s", ErrSchemaCorrupt, p)
		}
		v.checkLiteral(docId, sn, p)
	case schema.RecordKind:
		return v.checkRecord(docId, sn, nil, p, depth)
	case schema.ArrayKind:
		return v.checkArray(docId, sn, p, depth)
	case schema.MapKind:
		return v.checkMap(docId, sn, p, depth)
	case schema.TupleKind:
		return v.checkTuple(docId, sn, p, depth)
	case schema.UnionKind:
		return v.checkUnion(docId, sn, p, depth)
	}
	return nil
}

func (v *validator) wantKind(dn *ir.Node, want ir.Kind, p epath.Path, name string) bool {
	if dn.Kind != want {
		v.mismatch(p, CodeTypeMismatch, name, dn.Kind.String(), "expected %s, got %s", name, dn.Kind)
		return false
	}
	return true
}

func (v *validator) checkText(dn *ir.Node, sn *schema.Node, p epath.Path) {
	if dn.Kind != ir.StringKind && dn.Kind != ir.TextKind {
		v.mismatch(p, CodeTypeMismatch, "string", dn.Kind.String(), "expected string, got %s", dn.Kind)
		return
	}
	if sn.Text == nil {
		return
	}
	n := utf8.RuneCountInString(dn.Str)
	if sn.Text.MinLength != nil && n < *sn.Text.MinLength {
		v.errAt(p, CodeTooShort, "length %d is below the minimum %d", n, *sn.Text.MinLength)
	}
	if sn.Text.MaxLength != nil && n > *sn.Text.MaxLength {
		v.errAt(p, CodeTooLong, "length %d is above the maximum %d", n, *sn.Text.MaxLength)
	}
	if sn.Text.Pattern != nil && !sn.Text.Pattern.MatchString(dn.Str) {
		v.mismatch(p, CodePatternMismatch, sn.Text.Pattern.String(), dn.Str, "%q does not match %q", dn.Str, sn.Text.Pattern)
	}
}

// checkNum applies bounds exactly, over rationals. Exactness matters:
// 0.1 as a float64 is not one tenth, and comparing through floats
// would misjudge bounds written as decimals.
func (v *validator) checkNum(dn *ir.Node, sn *schema.Node, p epath.Path) {
	if sn.Num == nil {
		return
	}
	val := ir.Value{Kind: dn.Kind, Int: dn.Int, Float: dn.Float}
	r, ok := num.Rat(val)
	if !ok {
		v.errAt(p, CodeOutOfRange, "%s is not a finite number", val)
		return
	}
	c := sn.Num
	if c.Min != nil && !num.CheckMin(r, c.Min, c.ExclusiveMin) {
		rel := ">="
		if c.ExclusiveMin {
			rel = ">"
		}
		v.errAt(p, CodeOutOfRange, "%s is not %s %s", val, rel, c.Min.RatString())
	}
	if c.Max != nil && !num.CheckMax(r, c.Max, c.ExclusiveMax) {
		rel := "<="
		if c.ExclusiveMax {
			rel = "<"
		}
		v.errAt(p, CodeOutOfRange, "%s is not %s %s", val, rel, c.Max.RatString())
	}
	if c.MultipleOf != nil && !num.IsMultipleOf(r, c.MultipleOf) {
		v.errAt(p, CodeNotMultipleOf, "%s is not a multiple of %s", val, c.MultipleOf.RatString())
	}
}

func (v *validator) checkLiteral(docId ir.NodeId, sn *schema.Node, p epath.Path) {
	got := v.doc.ToValue(docId)
	if !got.Equal(*sn.Literal) {
		v.mismatch(p, CodeLiteralMismatch, sn.Literal.String(), got.String(),
			"expected exactly %s", sn.Literal)
	}
}

// checkRecord matches plain-keyed entries against fields by
// serialized name. Extension keys never participate; ignore lists the
// plain field names a union representation consumed.
func (v *validator) checkRecord(docId ir.NodeId, sn *schema.Node, ignore map[string]bool, p epath.Path, depth int) error {
	dn := v.doc.Node(docId)
	if dn.Kind != ir.MapKind {
		v.mismatch(p, CodeTypeMismatch, "record", dn.Kind.String(), "expected a record, got %s", dn.Kind)
		return nil
	}
	present := map[string]ir.NodeId{}
	for i, key := range dn.Keys {
		name, ok := plainName(key)
		if !ok {
			continue
		}
		if ignore[name] {
			continue
		}
		present[name] = dn.Kids[i]
		if _, declared := sn.Field(name); !declared && sn.Unknown == schema.DenyUnknown {
			v.errAt(p.With(keySeg(key)), CodeUnknownField, "field %q is not declared", name)
		}
	}
	for _, f := range sn.Fields {
		kid, ok := present[f.Name]
		fp := p.With(nameSeg(f.Name))
		if !ok {
			if !f.Optional {
				v.errAt(fp, CodeMissingField, "required field %q is absent", f.Name)
			}
			continue
		}
		if f.Optional && v.unfilled(kid) {
			continue
		}
		if err := v.check(kid, f.Node, fp, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkArray(docId ir.NodeId, sn *schema.Node, p epath.Path, depth int) error {
	dn := v.doc.Node(docId)
	if dn.Kind != ir.ArrayKind {
		v.mismatch(p, CodeTypeMismatch, "array", dn.Kind.String(), "expected an array, got %s", dn.Kind)
		return nil
	}
	n := len(dn.Kids)
	if sn.MinItems != nil && n < *sn.MinItems {
		v.errAt(p, CodeTooFewItems, "%d items, minimum is %d", n, *sn.MinItems)
	}
	if sn.MaxItems != nil && n > *sn.MaxItems {
		v.errAt(p, CodeTooManyItems, "%d items, maximum is %d", n, *sn.MaxItems)
	}
	for i, kid := range dn.Kids {
		if err := v.check(kid, sn.Item, p.With(epath.ArrayIndex(i)), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkMap(docId ir.NodeId, sn *schema.Node, p epath.Path, depth int) error {
	dn := v.doc.Node(docId)
	if dn.Kind != ir.MapKind {
		v.mismatch(p, CodeTypeMismatch, "map", dn.Kind.String(), "expected a map, got %s", dn.Kind)
		return nil
	}
	for i, key := range dn.Keys {
		if key.Kind == ir.ExtensionKeyKind {
			continue
		}
		ep := p.With(keySeg(key))
		if err := v.checkKey(key, sn.Key, ep, depth+1); err != nil {
			return err
		}
		if err := v.check(dn.Kids[i], sn.Value, ep, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkKey validates a map key against the key schema. Keys are
// canonical scalars, so only scalar schemas can accept them.
// Reference hops cost depth just as in check, so a cyclic named type
// used as a key schema terminates with ErrDepthExceeded.
func (v *validator) checkKey(key ir.ObjectKey, schId schema.NodeId, p epath.Path, depth int) error {
	sn := v.sch.Node(schId)
	for sn != nil && sn.Kind == schema.ReferenceKind {
		ref := sn.Ref
		target, ok := v.sch.Resolve(ref)
		if !ok {
			v.errAt(p, CodeDanglingReference, "type %q is not declared", ref)
			return nil
		}
		depth++
		if depth > v.maxDepth {
			return fmt.Errorf("%w at %s (limit %d)", ErrDepthExceeded, p, v.maxDepth)
		}
		sn = v.sch.Node(target)
	}
	if sn == nil {
		return fmt.Errorf("%w: unresolvable key schema at %s", ErrSchemaCorrupt, p)
	}
	kv := keyValue(key)
	switch sn.Kind {
	case schema.AnyKind:
	case schema.TextKind:
		if kv.Kind != ir.StringKind {
			v.mismatch(p, CodeTypeMismatch, "string", kv.Kind.String(), "key %s is not a string", kv)
			return nil
		}
		n := utf8.RuneCountInString(kv.Str)
		if sn.Text != nil {
			if sn.Text.MinLength != nil && n < *sn.Text.MinLength {
				v.errAt(p, CodeTooShort, "key length %d is below the minimum %d", n, *sn.Text.MinLength)
			}
			if sn.Text.MaxLength != nil && n > *sn.Text.MaxLength {
				v.errAt(p, CodeTooLong, "key length %d is above the maximum %d", n, *sn.Text.MaxLength)
			}
			if sn.Text.Pattern != nil && !sn.Text.Pattern.MatchString(kv.Str) {
				v.mismatch(p, CodePatternMismatch, sn.Text.Pattern.String(), kv.Str, "key %q does not match %q", kv.Str, sn.Text.Pattern)
			}
		}
	case schema.IntegerKind, schema.FloatKind, schema.BooleanKind, schema.NullKind:
		want := map[schema.Kind]ir.Kind{
			schema.IntegerKind: ir.IntegerKind,
			schema.FloatKind:   ir.FloatKind,
			schema.BooleanKind: ir.BoolKind,
			schema.NullKind:    ir.NullKind,
		}[sn.Kind]
		if kv.Kind != want {
			v.mismatch(p, CodeTypeMismatch, want.String(), kv.Kind.String(), "key %s has the wrong kind", kv)
		}
	case schema.LiteralKind:
		if sn.Literal == nil {
			return fmt.Errorf("%w: literal node without a value at %s", ErrSchemaCorrupt, p)
		}
		if !kv.Equal(*sn.Literal) {
			v.mismatch(p, CodeLiteralMismatch, sn.Literal.String(), kv.String(), "key must be exactly %s", sn.Literal)
		}
	default:
		v.mismatch(p, CodeTypeMismatch, sn.Kind.String(), kv.Kind.String(), "a scalar key cannot satisfy %s", sn.Kind)
	}
	return nil
}

func (v *validator) checkTuple(docId ir.NodeId, sn *schema.Node, p epath.Path, depth int) error {
	dn := v.doc.Node(docId)
	if dn.Kind != ir.TupleKind {
		v.mismatch(p, CodeTypeMismatch, "tuple", dn.Kind.String(), "expected a tuple, got %s", dn.Kind)
		return nil
	}
	if len(dn.Kids) != len(sn.Elems) {
		v.errAt(p, CodeArityMismatch, "tuple has %d elements, expected %d", len(dn.Kids), len(sn.Elems))
	}
	n := len(dn.Kids)
	if len(sn.Elems) < n {
		n = len(sn.Elems)
	}
	for i := 0; i < n; i++ {
		if err := v.check(dn.Kids[i], sn.Elems[i], p.With(epath.TupleIndex(i)), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func plainName(key ir.ObjectKey) (string, bool) {
	switch {
	case key.Kind == ir.IdentKeyKind:
		return key.Name, true
	case key.Kind == ir.ValueKeyKind && key.Lit.Kind == ir.StringKind:
		return key.Lit.Str, true
	}
	return "", false
}

func keyValue(key ir.ObjectKey) ir.Value {
	switch key.Kind {
	case ir.IdentKeyKind:
		return ir.String(key.Name)
	case ir.ValueKeyKind:
		return *key.Lit
	}
	return ir.String("$" + key.Name)
}

func keySeg(key ir.ObjectKey) epath.Segment {
	switch key.Kind {
	case ir.IdentKeyKind:
		return epath.Ident(key.Name)
	case ir.ExtensionKeyKind:
		return epath.Extension(key.Name)
	}
	return epath.ValueKey(key.Lit.String())
}

func nameSeg(name string) epath.Segment {
	if isIdent(name) {
		return epath.Ident(name)
	}
	return epath.ValueKey(ir.String(name).String())
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
