package jsonval

import (
	"testing"
)

func TestAccessors(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
		check func(t *testing.T, v *Value)
	}{
		{
			name:  "string",
			value: String("hello"),
			check: func(t *testing.T, v *Value) {
				s, ok := v.AsString()
				if !ok || s != "hello" {
					t.Errorf("jsonval:value_test - AsString() = %q, %v", s, ok)
				}
				if _, ok := v.AsBool(); ok {
					t.Error("jsonval:value_test - AsBool on string should fail")
				}
				if _, ok := v.AsInt(); ok {
					t.Error("jsonval:value_test - AsInt on string should fail")
				}
			},
		},
		{
			name:  "bool",
			value: Bool(true),
			check: func(t *testing.T, v *Value) {
				b, ok := v.AsBool()
				if !ok || !b {
					t.Errorf("jsonval:value_test - AsBool() = %v, %v", b, ok)
				}
			},
		},
		{
			name:  "int",
			value: Int(42),
			check: func(t *testing.T, v *Value) {
				i, ok := v.AsInt()
				if !ok || i != 42 {
					t.Errorf("jsonval:value_test - AsInt() = %d, %v", i, ok)
				}
				f, ok := v.AsFloat()
				if !ok || f != 42.0 {
					t.Errorf("jsonval:value_test - AsFloat() = %f, %v", f, ok)
				}
			},
		},
		{
			name:  "float is not an int",
			value: Float(2.5),
			check: func(t *testing.T, v *Value) {
				if _, ok := v.AsInt(); ok {
					t.Error("jsonval:value_test - AsInt on float should fail")
				}
				f, ok := v.AsFloat()
				if !ok || f != 2.5 {
					t.Errorf("jsonval:value_test - AsFloat() = %f, %v", f, ok)
				}
			},
		},
		{
			name:  "null matches nothing",
			value: Null(),
			check: func(t *testing.T, v *Value) {
				if !v.IsNull() {
					t.Error("jsonval:value_test - expected IsNull")
				}
				if _, ok := v.AsString(); ok {
					t.Error("jsonval:value_test - AsString on null should fail")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.value)
		})
	}
}

func TestChainedAccess(t *testing.T) {
	v := Object(map[string]*Value{
		"style": String("heavy"),
		"nested": Object(map[string]*Value{
			"count": Int(3),
		}),
		"items": Array(String("a"), String("b")),
	})

	if s, ok := v.Get("style").AsString(); !ok || s != "heavy" {
		t.Errorf("jsonval:value_test - Get(style) = %q, %v", s, ok)
	}
	if n, ok := v.Get("nested").Get("count").AsInt(); !ok || n != 3 {
		t.Errorf("jsonval:value_test - nested count = %d, %v", n, ok)
	}
	if s, ok := v.Get("items").Index(1).AsString(); !ok || s != "b" {
		t.Errorf("jsonval:value_test - items[1] = %q, %v", s, ok)
	}

	// Every link in a broken chain must be nil-safe.
	if _, ok := v.Get("missing").Get("deeper").Index(5).AsString(); ok {
		t.Error("jsonval:value_test - broken chain should report ok=false")
	}
	if v.Get("style").Get("not-an-object") != nil {
		t.Error("jsonval:value_test - Get on a string should return nil")
	}
	if v.Get("items").Index(-1) != nil {
		t.Error("jsonval:value_test - negative index should return nil")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{name: "equal strings", a: String("x"), b: String("x"), want: true},
		{name: "different strings", a: String("x"), b: String("y"), want: false},
		{name: "int equals integral float", a: Int(2), b: Float(2.0), want: true},
		{name: "int vs fractional float", a: Int(2), b: Float(2.5), want: false},
		{name: "null equals null", a: Null(), b: Null(), want: true},
		{name: "null vs absent", a: Null(), b: nil, want: false},
		{name: "absent equals absent", a: nil, b: nil, want: true},
		{name: "kind mismatch", a: String("1"), b: Int(1), want: false},
		{
			name: "object field order irrelevant",
			a:    Object(map[string]*Value{"a": Int(1), "b": Int(2)}),
			b:    Object(map[string]*Value{"b": Int(2), "a": Int(1)}),
			want: true,
		},
		{
			name: "array order matters",
			a:    Array(Int(1), Int(2)),
			b:    Array(Int(2), Int(1)),
			want: false,
		},
		{
			name: "missing object key",
			a:    Object(map[string]*Value{"a": Int(1)}),
			b:    Object(map[string]*Value{"b": Int(1)}),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("jsonval:value_test - Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLen(t *testing.T) {
	if got := Array(Int(1), Int(2), Int(3)).Len(); got != 3 {
		t.Errorf("jsonval:value_test - array Len() = %d, want 3", got)
	}
	if got := Object(map[string]*Value{"a": Null()}).Len(); got != 1 {
		t.Errorf("jsonval:value_test - object Len() = %d, want 1", got)
	}
	if got := String("abc").Len(); got != 0 {
		t.Errorf("jsonval:value_test - string Len() = %d, want 0", got)
	}
	var absent *Value
	if got := absent.Len(); got != 0 {
		t.Errorf("jsonval:value_test - nil Len() = %d, want 0", got)
	}
}
