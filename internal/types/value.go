package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the concrete shape of a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMap
	KindList
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is a tagged union over the scalar and nested shapes a state entry
// can take. States are schema-less, so equality and diffing are explicit
// recursive operations on Values rather than ambient interface comparison.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    map[string]Value
	list []Value
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a float64.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// MapValue wraps a nested mapping.
func MapValue(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// ListValue wraps a list.
func ListValue(vs []Value) Value { return Value{kind: KindList, list: vs} }

// FromAny converts a decoded JSON/YAML value into a Value.
// Supported inputs: string, bool, all Go numeric types, map[string]any,
// map[any]any (yaml.v3 legacy decoding), and []any.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return StringValue(""), nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case float64:
		return NumberValue(x), nil
	case float32:
		return NumberValue(float64(x)), nil
	case int:
		return NumberValue(float64(x)), nil
	case int32:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, raw := range x {
			val, err := FromAny(raw)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = val
		}
		return MapValue(m), nil
	case map[any]any:
		m := make(map[string]Value, len(x))
		for k, raw := range x {
			ks, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("non-string map key %v", k)
			}
			val, err := FromAny(raw)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", ks, err)
			}
			m[ks] = val
		}
		return MapValue(m), nil
	case []any:
		list := make([]Value, len(x))
		for i, raw := range x {
			val, err := FromAny(raw)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = val
		}
		return ListValue(list), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", v)
}

// Kind returns the value's shape tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload (zero value for other kinds).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (zero value for other kinds).
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean payload (zero value for other kinds).
func (v Value) Bool() bool { return v.b }

// Map returns the nested mapping payload, or nil for non-map values.
func (v Value) Map() map[string]Value { return v.m }

// List returns the list payload, or nil for non-list values.
func (v Value) List() []Value { return v.list }

// IsMap reports whether the value is a nested mapping.
func (v Value) IsMap() bool { return v.kind == KindMap }

// Equal performs deep structural and value equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, val := range v.m {
			oval, ok := o.m[k]
			if !ok || !val.Equal(oval) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i, val := range v.list {
			if !val.Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Render returns a short display form of the value, used in gap descriptions.
func (v Value) Render() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindMap:
		return fmt.Sprintf("map[%d keys]", len(v.m))
	case KindList:
		return fmt.Sprintf("list[%d items]", len(v.list))
	}
	return ""
}

// toAny converts the value back to the plain form encoding/json accepts.
func (v Value) toAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindMap:
		m := make(map[string]any, len(v.m))
		for k, val := range v.m {
			m[k] = val.toAny()
		}
		return m
	case KindList:
		list := make([]any, len(v.list))
		for i, val := range v.list {
			list[i] = val.toAny()
		}
		return list
	}
	return nil
}

// MarshalJSON encodes the value in its native JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toAny())
}

// UnmarshalJSON decodes any JSON shape through FromAny.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// State is a schema-less mapping describing one side of a void mapping run
// (Point A or Point B).
type State map[string]Value

// StateFromAny converts a decoded document into a State. It fails with
// *InvalidStateError when the document is not a mapping.
func StateFromAny(field string, v any) (State, error) {
	if v == nil {
		return State{}, nil
	}
	val, err := FromAny(v)
	if err != nil {
		return nil, &InvalidStateError{Field: field, Reason: err.Error()}
	}
	if !val.IsMap() {
		return nil, &InvalidStateError{Field: field, Reason: fmt.Sprintf("expected a mapping, got %s", val.Kind())}
	}
	return State(val.Map()), nil
}

// Keys returns the state's keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal performs deep equality against another state.
func (s State) Equal(o State) bool {
	return MapValue(map[string]Value(s)).Equal(MapValue(map[string]Value(o)))
}

// Clone returns a shallow copy of the state. Values are immutable once
// constructed, so a shallow copy is sufficient for per-observer isolation.
func (s State) Clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
