package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Value is one node of a parsed configuration document.
//
// Field access never fails: looking up a key on anything that is not an
// object yields an absent Value, and the typed accessors report whether the
// node has the requested shape. This gives every field one of three states,
// absent, present with the wrong type, or present and valid.
type Value struct {
	raw     any
	present bool
}

// ValueOf wraps a decoded document node. A nil raw value is a present null.
func ValueOf(raw any) Value {
	if v, ok := raw.(Value); ok {
		return v
	}
	return Value{raw: raw, present: true}
}

// Present reports whether the node exists in the document.
func (v Value) Present() bool {
	return v.present
}

// IsNull reports whether the node exists and is an explicit null.
func (v Value) IsNull() bool {
	return v.present && v.raw == nil
}

// Raw returns the underlying decoded value.
func (v Value) Raw() any {
	return v.raw
}

// Lookup returns the child stored under key. It returns an absent Value when
// v is not an object or has no such key.
func (v Value) Lookup(key string) Value {
	obj, ok := v.AsObject()
	if !ok {
		return Value{}
	}
	raw, ok := obj[key]
	if !ok {
		return Value{}
	}
	return Value{raw: raw, present: true}
}

// AsObject returns the node as a string keyed map.
func (v Value) AsObject() (map[string]any, bool) {
	switch m := v.raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		// yaml.v3 falls back to this shape when a mapping has non-string keys.
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AsArray returns the node as a list of child values.
func (v Value) AsArray() ([]Value, bool) {
	items, ok := v.raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{raw: item, present: true}
	}
	return out, true
}

// AsBool returns the node as a boolean. Strings such as "true" are not
// coerced.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// AsString returns the node as a string.
func (v Value) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// AsFloat returns any numeric node as a float64. NaN and infinities are
// returned as is; callers decide whether they are acceptable.
func (v Value) AsFloat() (float64, bool) {
	switch n := v.raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsInteger reports whether the node is a whole number of any magnitude.
// A float with an integral value such as 10.0 counts as an integer.
func (v Value) IsInteger() bool {
	switch n := v.raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
	}
	f, ok := v.AsFloat()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f)
}

// TypeName describes the node's shape for violation reports.
func (v Value) TypeName() string {
	if !v.present {
		return "absent"
	}
	switch v.raw.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	}
	if _, ok := v.AsFloat(); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v.raw)
}
