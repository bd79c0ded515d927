package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const logPrefix = "jsonval:codec"

// Parse decodes JSON text into a Value. Numbers without a fractional or
// exponent part decode as KindInt so integral payloads round-trip exactly.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s - failed to parse JSON: %w", logPrefix, err)
	}
	// Reject trailing garbage after the first value ("{} junk" is not a document).
	if dec.More() {
		return nil, fmt.Errorf("%s - trailing data after JSON value", logPrefix)
	}
	return fromDecoded(raw)
}

// From converts a native Go value into a Value. Supported inputs: nil, bool,
// string, the common integer and float types, json.Number, []interface{},
// map[string]interface{}, []*Value, map[string]*Value and *Value itself.
func From(v interface{}) (*Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return fromNumber(t)
	case []*Value:
		return Array(t...), nil
	case map[string]*Value:
		return Object(t), nil
	case []interface{}:
		elems := make([]*Value, 0, len(t))
		for _, e := range t {
			ev, err := From(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return Array(elems...), nil
	case map[string]interface{}:
		fields := make(map[string]*Value, len(t))
		for k, e := range t {
			ev, err := From(e)
			if err != nil {
				return nil, err
			}
			fields[k] = ev
		}
		return Object(fields), nil
	default:
		return nil, fmt.Errorf("%s - unsupported Go type %T", logPrefix, v)
	}
}

// Encode serializes v to compact JSON text. A nil receiver encodes as null.
func (v *Value) Encode() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("%s - invalid value kind %d", logPrefix, v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler with the same integer-preserving
// behavior as Parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// fromDecoded converts the output of a UseNumber json.Decoder into a Value.
func fromDecoded(raw interface{}) (*Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return fromNumber(t)
	case []interface{}:
		elems := make([]*Value, 0, len(t))
		for _, e := range t {
			ev, err := fromDecoded(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ev)
		}
		return Array(elems...), nil
	case map[string]interface{}:
		fields := make(map[string]*Value, len(t))
		for k, e := range t {
			ev, err := fromDecoded(e)
			if err != nil {
				return nil, err
			}
			fields[k] = ev
		}
		return Object(fields), nil
	default:
		return nil, fmt.Errorf("%s - unexpected decoded type %T", logPrefix, raw)
	}
}

// fromNumber keeps integer-shaped literals as KindInt; anything with a
// fraction, exponent, or outside int64 range becomes KindFloat.
func fromNumber(n json.Number) (*Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%s - invalid number %q: %w", logPrefix, s, err)
	}
	return Float(f), nil
}
