// Package port implements the typed I/O endpoints (C1) that nodes use to
// exchange data, stream, and MIDI payloads once per render block.
package port

import "fmt"

// Value is the tagged union carried by Data ports. Only one of the fields
// is meaningful at a time; Kind reports which.
type Value struct {
	kind ValueKind
	f    float64
	s    string
	b    bool
	list []Value
}

// ValueKind identifies which field of a Value is populated.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueFloat
	ValueString
	ValueBool
	ValueList
)

func Null() Value               { return Value{kind: ValueNull} }
func Float(f float64) Value     { return Value{kind: ValueFloat, f: f} }
func Int(i int) Value           { return Value{kind: ValueFloat, f: float64(i)} }
func String(s string) Value     { return Value{kind: ValueString, s: s} }
func Bool(b bool) Value         { return Value{kind: ValueBool, b: b} }
func List(items ...Value) Value { return Value{kind: ValueList, list: items} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == ValueNull }

// Float returns the numeric value, coercing bool (0/1) where sensible.
// It is the zero value (0) for ValueString, ValueList and ValueNull.
func (v Value) Float() float64 {
	switch v.kind {
	case ValueFloat:
		return v.f
	case ValueBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.s
	case ValueFloat:
		return fmt.Sprintf("%v", v.f)
	case ValueBool:
		return fmt.Sprintf("%v", v.b)
	case ValueNull:
		return "null"
	default:
		return fmt.Sprintf("%v", v.list)
	}
}

// Bool reports truthiness: nonzero numbers, non-empty strings and lists,
// and the bool itself are all truthy. Null and zero are not.
func (v Value) Bool() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueFloat:
		return v.f != 0
	case ValueString:
		return v.s != ""
	case ValueList:
		return len(v.list) > 0
	default:
		return false
	}
}

func (v Value) List() []Value {
	if v.kind != ValueList {
		return nil
	}
	return v.list
}

// MarshalJSON renders the union as the JSON value it logically holds.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNull:
		return []byte("null"), nil
	case ValueFloat:
		return fmt.Appendf(nil, "%v", v.f), nil
	case ValueBool:
		return fmt.Appendf(nil, "%v", v.b), nil
	case ValueString:
		return marshalJSONString(v.s), nil
	case ValueList:
		out := []byte{'['}
		for i, item := range v.list {
			if i > 0 {
				out = append(out, ',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		out = append(out, ']')
		return out, nil
	default:
		return []byte("null"), nil
	}
}

func marshalJSONString(s string) []byte {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		switch r {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, string(r)...)
		}
	}
	out = append(out, '"')
	return out
}
