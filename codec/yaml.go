package codec

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/eure-format/go-eure/ir"
)

// DecodeYAML reads one YAML document, preserving mapping order.
func DecodeYAML(data []byte) (ir.Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return ir.Value{}, fmt.Errorf("decoding yaml: %w", err)
	}
	return fromYAML(raw)
}

func fromYAML(raw any) (ir.Value, error) {
	switch t := raw.(type) {
	case nil:
		return ir.Null(), nil
	case bool:
		return ir.Bool(t), nil
	case int:
		return ir.Integer(int64(t)), nil
	case int64:
		return ir.Integer(t), nil
	case uint64:
		if t > 1<<63-1 {
			return ir.Value{}, fmt.Errorf("integer %d overflows", t)
		}
		return ir.Integer(int64(t)), nil
	case float64:
		return ir.Float(t), nil
	case string:
		return ir.String(t), nil
	case []any:
		elems := make([]ir.Value, len(t))
		for i, e := range t {
			v, err := fromYAML(e)
			if err != nil {
				return ir.Value{}, err
			}
			elems[i] = v
		}
		return ir.Array(elems...), nil
	case yaml.MapSlice:
		var fields []ir.Field
		for _, item := range t {
			val, err := fromYAML(item.Value)
			if err != nil {
				return ir.Value{}, err
			}
			key, err := yamlKey(item.Key)
			if err != nil {
				return ir.Value{}, err
			}
			fields = append(fields, ir.Field{Key: key, Val: val})
		}
		return objectValue(fields), nil
	}
	return ir.Value{}, fmt.Errorf("unsupported yaml node %T", raw)
}

func yamlKey(raw any) (ir.ObjectKey, error) {
	if s, ok := raw.(string); ok {
		return keyFor(s), nil
	}
	v, err := fromYAML(raw)
	if err != nil {
		return ir.ObjectKey{}, fmt.Errorf("bad mapping key: %w", err)
	}
	return ir.ValueKey(v), nil
}

// EncodeYAML writes v as YAML, fields in document order.
func EncodeYAML(v ir.Value) ([]byte, error) {
	raw, err := toYAML(v)
	if err != nil {
		return nil, err
	}
	d, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return d, nil
}

func toYAML(v ir.Value) (any, error) {
	switch v.Kind {
	case ir.NullKind, ir.HoleKind:
		return nil, nil
	case ir.BoolKind:
		return v.Bool, nil
	case ir.IntegerKind:
		return v.Int, nil
	case ir.FloatKind:
		return v.Float, nil
	case ir.StringKind:
		return v.Str, nil
	case ir.TextKind:
		ms := yaml.MapSlice{{Key: "$text", Value: v.Str}}
		if v.Lang != "" {
			ms = append(ms, yaml.MapItem{Key: "$lang", Value: v.Lang})
		}
		return ms, nil
	case ir.ArrayKind, ir.TupleKind:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			el, err := toYAML(e)
			if err != nil {
				return nil, err
			}
			out[i] = el
		}
		return out, nil
	case ir.MapKind:
		ms := make(yaml.MapSlice, 0, len(v.Fields))
		for _, f := range v.Fields {
			val, err := toYAML(f.Val)
			if err != nil {
				return nil, err
			}
			ms = append(ms, yaml.MapItem{Key: keyName(f.Key), Value: val})
		}
		return ms, nil
	}
	return nil, fmt.Errorf("unsupported value kind %s", v.Kind)
}
