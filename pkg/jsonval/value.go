// Package jsonval provides a dynamic value type for arbitrary JSON payloads
// exchanged across the webview bridge. Values are a closed tagged union; typed
// accessors and field lookups are nil-safe so payload fields can be extracted
// with chained calls and a single ok-check at the end.
package jsonval

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the kind name (for error messages and logs).
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a single JSON value. The zero Value is JSON null.
// A nil *Value means "absent" and is distinct from JSON null; all methods are
// safe to call on a nil receiver.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []*Value
	obj  map[string]*Value
}

// Null returns a JSON null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Array returns an array value holding the given elements in order.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, arr: elems}
}

// Object returns an object value holding the given fields.
func Object(fields map[string]*Value) *Value {
	if fields == nil {
		fields = map[string]*Value{}
	}
	return &Value{kind: KindObject, obj: fields}
}

// Kind returns the variant of v. A nil receiver reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is JSON null. A nil receiver (absent value) is not null.
func (v *Value) IsNull() bool {
	return v != nil && v.kind == KindNull
}

// AsString returns the string value, or ok=false on a type mismatch.
func (v *Value) AsString() (string, bool) {
	if v == nil || v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean value, or ok=false on a type mismatch.
func (v *Value) AsBool() (bool, bool) {
	if v == nil || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer value, or ok=false on a type mismatch.
// Floats are not converted: integer-shaped source text decodes as KindInt, so
// a KindFloat means the payload was explicitly fractional.
func (v *Value) AsInt() (int64, bool) {
	if v == nil || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the numeric value as a float64. Both KindInt and KindFloat
// qualify; anything else reports ok=false.
func (v *Value) AsFloat() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsArray returns the element slice, or ok=false on a type mismatch.
func (v *Value) AsArray() ([]*Value, bool) {
	if v == nil || v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the field map, or ok=false on a type mismatch.
func (v *Value) AsObject() (map[string]*Value, bool) {
	if v == nil || v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Get returns the field under key, or nil when the key is missing or the
// receiver is not an object. Safe to chain: v.Get("a").Get("b").AsString().
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj[key]
}

// Index returns the element at position i, or nil when out of range or the
// receiver is not an array.
func (v *Value) Index(i int) *Value {
	if v == nil || v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Len returns the number of array elements or object fields, and 0 for any
// other kind.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Equal reports structural equality. Object fields compare without regard to
// order, array elements in order. Int and Float compare by numeric value, so
// equality survives the int/float collapse of plain JSON number grammar.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if isNumeric(v.kind) && isNumeric(other.kind) {
		vf, _ := v.AsFloat()
		of, _ := other.AsFloat()
		if v.kind == KindInt && other.kind == KindInt {
			return v.i == other.i
		}
		return vf == of
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, val := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumeric(k Kind) bool {
	return k == KindInt || k == KindFloat
}
