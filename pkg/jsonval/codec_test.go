package jsonval

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Value
		wantErr bool
	}{
		{name: "null", input: `null`, want: Null()},
		{name: "bool", input: `true`, want: Bool(true)},
		{name: "integer", input: `42`, want: Int(42)},
		{name: "negative integer", input: `-7`, want: Int(-7)},
		{name: "float", input: `2.5`, want: Float(2.5)},
		{name: "exponent decodes as float", input: `1e3`, want: Float(1000)},
		{name: "string", input: `"hello"`, want: String("hello")},
		{
			name:  "array",
			input: `[1, "two", null]`,
			want:  Array(Int(1), String("two"), Null()),
		},
		{
			name:  "object",
			input: `{"k": "v", "n": {"deep": [true]}}`,
			want: Object(map[string]*Value{
				"k": String("v"),
				"n": Object(map[string]*Value{"deep": Array(Bool(true))}),
			}),
		},
		{name: "not json", input: `not json`, wantErr: true},
		{name: "empty input", input: ``, wantErr: true},
		{name: "trailing data", input: `{} junk`, wantErr: true},
		{name: "truncated object", input: `{"a":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("jsonval:codec_test - expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("jsonval:codec_test - Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIntegerPreservation(t *testing.T) {
	v, err := Parse([]byte(`{"count": 10, "ratio": 10.0}`))
	if err != nil {
		t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
	}

	if v.Get("count").Kind() != KindInt {
		t.Errorf("jsonval:codec_test - count kind = %s, want int", v.Get("count").Kind())
	}
	if _, ok := v.Get("count").AsInt(); !ok {
		t.Error("jsonval:codec_test - AsInt on count should succeed")
	}
	if v.Get("ratio").Kind() != KindFloat {
		t.Errorf("jsonval:codec_test - ratio kind = %s, want float", v.Get("ratio").Kind())
	}
}

func TestRoundTrip(t *testing.T) {
	values := []*Value{
		Null(),
		Bool(false),
		Int(0),
		Int(-9007199254740993), // beyond float64 integer precision
		Float(3.25),
		String(""),
		String("with \"quotes\" and é"),
		Array(),
		Array(Int(1), Float(2.5), String("x"), Null(), Bool(true)),
		Object(map[string]*Value{}),
		Object(map[string]*Value{
			"a": Array(Object(map[string]*Value{"deep": Int(1)})),
			"b": String("v"),
		}),
	}

	for _, v := range values {
		data, err := v.Encode()
		if err != nil {
			t.Fatalf("jsonval:codec_test - Encode failed: %v", err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("jsonval:codec_test - Parse(%s) failed: %v", data, err)
		}
		if !back.Equal(v) {
			t.Errorf("jsonval:codec_test - round trip of %s changed value", data)
		}
	}
}

func TestEncodeNilReceiver(t *testing.T) {
	var v *Value
	data, err := v.Encode()
	if err != nil {
		t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("jsonval:codec_test - nil Encode() = %s, want null", data)
	}
}

func TestLargeIntegerPrecision(t *testing.T) {
	// int64 values outside 2^53 must survive without float rounding.
	const big = int64(9007199254740993)
	data, err := Int(big).Encode()
	if err != nil {
		t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
	}
	i, ok := back.AsInt()
	if !ok || i != big {
		t.Errorf("jsonval:codec_test - got %d, %v want %d", i, ok, big)
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    *Value
		wantErr bool
	}{
		{name: "nil", input: nil, want: Null()},
		{name: "bool", input: true, want: Bool(true)},
		{name: "int", input: 5, want: Int(5)},
		{name: "int64", input: int64(5), want: Int(5)},
		{name: "float64", input: 1.5, want: Float(1.5)},
		{name: "string", input: "s", want: String("s")},
		{
			name:  "slice",
			input: []interface{}{1, "two"},
			want:  Array(Int(1), String("two")),
		},
		{
			name:  "map",
			input: map[string]interface{}{"k": true},
			want:  Object(map[string]*Value{"k": Bool(true)}),
		},
		{name: "unsupported type", input: make(chan int), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("jsonval:codec_test - expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("jsonval:codec_test - unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("jsonval:codec_test - From(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
