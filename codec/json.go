// Package codec bridges documents to and from interchange formats.
// Both directions preserve key order; a '$'-prefixed object key maps
// to an extension key, and the {"$text": ..., "$lang": ...} object
// form carries text values that JSON and YAML cannot express natively.
package codec

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/eure-format/go-eure/debug"
	"github.com/eure-format/go-eure/ir"
)

// DecodeJSON reads one JSON value in document order.
func DecodeJSON(r io.Reader) (ir.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return ir.Value{}, fmt.Errorf("decoding json: %w", err)
	}
	if debug.Codec() {
		debug.Logf("codec: decoded json %s", v)
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (ir.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return ir.Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		}
		return ir.Value{}, fmt.Errorf("unexpected delimiter %q", t)
	case nil:
		return ir.Null(), nil
	case bool:
		return ir.Bool(t), nil
	case string:
		return ir.String(t), nil
	case json.Number:
		return numberValue(t)
	}
	return ir.Value{}, fmt.Errorf("unexpected token %v", tok)
}

func readJSONObject(dec *json.Decoder) (ir.Value, error) {
	var fields []ir.Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ir.Value{}, err
		}
		name, ok := tok.(string)
		if !ok {
			return ir.Value{}, fmt.Errorf("object key is not a string: %v", tok)
		}
		val, err := readJSON(dec)
		if err != nil {
			return ir.Value{}, err
		}
		fields = append(fields, ir.Field{Key: keyFor(name), Val: val})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return ir.Value{}, err
	}
	return objectValue(fields), nil
}

func readJSONArray(dec *json.Decoder) (ir.Value, error) {
	var elems []ir.Value
	for dec.More() {
		v, err := readJSON(dec)
		if err != nil {
			return ir.Value{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil { // closing bracket
		return ir.Value{}, err
	}
	return ir.Array(elems...), nil
}

func numberValue(n json.Number) (ir.Value, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return ir.Integer(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return ir.Value{}, fmt.Errorf("bad number %q: %w", n, err)
	}
	return ir.Float(f), nil
}

// objectValue folds the text convention back into a text value: a map
// whose only entries are "$text" and optionally "$lang".
func objectValue(fields []ir.Field) ir.Value {
	var text, lang *ir.Field
	for i := range fields {
		f := &fields[i]
		if f.Key.Kind != ir.ExtensionKeyKind {
			return ir.Map(fields...)
		}
		switch f.Key.Name {
		case "text":
			text = f
		case "lang":
			lang = f
		default:
			return ir.Map(fields...)
		}
	}
	if text == nil || text.Val.Kind != ir.StringKind {
		return ir.Map(fields...)
	}
	l := ""
	if lang != nil {
		if lang.Val.Kind != ir.StringKind {
			return ir.Map(fields...)
		}
		l = lang.Val.Str
	}
	return ir.Text(l, text.Val.Str)
}

func keyFor(name string) ir.ObjectKey {
	if len(name) > 1 && name[0] == '$' {
		return ir.ExtKey(name[1:])
	}
	return ir.IdentKey(name)
}

// EncodeJSON writes v as JSON, fields in document order. Tuples
// flatten to arrays and holes to null; both are lossy by nature of
// the format.
func EncodeJSON(w io.Writer, v ir.Value) error {
	e := &jsonEncoder{w: w}
	e.value(v)
	return e.err
}

type jsonEncoder struct {
	w   io.Writer
	err error
}

func (e *jsonEncoder) raw(s string) {
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *jsonEncoder) str(s string) {
	d, err := json.Marshal(s)
	if err != nil {
		e.err = err
		return
	}
	e.raw(string(d))
}

func (e *jsonEncoder) value(v ir.Value) {
	switch v.Kind {
	case ir.NullKind, ir.HoleKind:
		e.raw("null")
	case ir.BoolKind:
		e.raw(strconv.FormatBool(v.Bool))
	case ir.IntegerKind:
		e.raw(strconv.FormatInt(v.Int, 10))
	case ir.FloatKind:
		d, err := json.Marshal(v.Float)
		if err != nil {
			e.err = fmt.Errorf("encoding float: %w", err)
			return
		}
		e.raw(string(d))
	case ir.StringKind:
		e.str(v.Str)
	case ir.TextKind:
		e.raw(`{"$text":`)
		e.str(v.Str)
		if v.Lang != "" {
			e.raw(`,"$lang":`)
			e.str(v.Lang)
		}
		e.raw("}")
	case ir.ArrayKind, ir.TupleKind:
		e.raw("[")
		for i, el := range v.Elems {
			if i > 0 {
				e.raw(",")
			}
			e.value(el)
		}
		e.raw("]")
	case ir.MapKind:
		e.raw("{")
		for i, f := range v.Fields {
			if i > 0 {
				e.raw(",")
			}
			e.str(keyName(f.Key))
			e.raw(":")
			e.value(f.Val)
		}
		e.raw("}")
	}
}

func keyName(key ir.ObjectKey) string {
	switch key.Kind {
	case ir.ExtensionKeyKind:
		return "$" + key.Name
	case ir.ValueKeyKind:
		if key.Lit.Kind == ir.StringKind {
			return key.Lit.Str
		}
		return key.Lit.String()
	}
	return key.Name
}
