package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vitalis-app/hostenum/internal/errs"
)

func TestValueRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)

	if got, ok := String("Windows Defender").AsString(); !ok || got != "Windows Defender" {
		t.Errorf("String round trip = %q, %v", got, ok)
	}
	if got, ok := Int(math.MinInt64).AsInt(); !ok || got != math.MinInt64 {
		t.Errorf("Int round trip = %d, %v", got, ok)
	}
	if got, ok := Uint(math.MaxUint64).AsUint(); !ok || got != math.MaxUint64 {
		t.Errorf("Uint round trip = %d, %v", got, ok)
	}
	if got, ok := Float(2.5).AsFloat(); !ok || got != 2.5 {
		t.Errorf("Float round trip = %v, %v", got, ok)
	}
	if got, ok := Bool(true).AsBool(); !ok || !got {
		t.Errorf("Bool round trip = %v, %v", got, ok)
	}
	if got, ok := Time(ts).AsTime(); !ok || !got.Equal(ts) {
		t.Errorf("Time round trip = %v, %v", got, ok)
	}
	if got, ok := Bytes([]byte{0xde, 0xad}).AsBytes(); !ok || string(got) != "\xde\xad" {
		t.Errorf("Bytes round trip = %x, %v", got, ok)
	}
	if got, ok := Strings([]string{"a", "b"}).AsStrings(); !ok || len(got) != 2 || got[1] != "b" {
		t.Errorf("Strings round trip = %v, %v", got, ok)
	}
	if !Null().IsNull() || !(Value{}).IsNull() {
		t.Error("Null() and the zero Value should both be null")
	}
}

func TestValueAccessorKindMismatch(t *testing.T) {
	v := String("42")
	if _, ok := v.AsInt(); ok {
		t.Error("AsInt on a string cell should report false")
	}
	if _, ok := v.AsBytes(); ok {
		t.Error("AsBytes on a string cell should report false")
	}
}

func TestBytesAreCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := Bytes(src)
	src[0] = 9
	got, _ := v.AsBytes()
	if got[0] != 1 {
		t.Error("Bytes should copy its input")
	}
	got[1] = 9
	again, _ := v.AsBytes()
	if again[1] != 2 {
		t.Error("AsBytes should return a copy")
	}
}

func TestValueOf(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	s := "ptr"
	tests := []struct {
		name string
		in   any
		kind Kind
		text string
	}{
		{"nil", nil, KindNull, ""},
		{"string", "abc", KindString, "abc"},
		{"string pointer", &s, KindString, "ptr"},
		{"nil string pointer", (*string)(nil), KindNull, ""},
		{"int32", int32(-7), KindInt, "-7"},
		{"int", 12, KindInt, "12"},
		{"uint8", uint8(255), KindUint, "255"},
		{"uint32", uint32(4000000000), KindUint, "4000000000"},
		{"float32", float32(0.5), KindFloat, "0.5"},
		{"bool", false, KindBool, "False"},
		{"time", ts, KindTime, ts.Format(TimeLayout)},
		{"bytes", []byte{0x0a, 0xff}, KindBytes, "0AFF"},
		{"strings", []string{"x", "y"}, KindStrings, "x, y"},
		{"any slice", []any{"x", int32(2), true}, KindStrings, "x, 2, True"},
		{"value", Int(3), KindInt, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.in)
			if err != nil {
				t.Fatalf("ValueOf(%v) error: %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
			if v.String() != tt.text {
				t.Errorf("String() = %q, want %q", v.String(), tt.text)
			}
		})
	}
}

func TestValueOfUnsupported(t *testing.T) {
	v, err := ValueOf(struct{ X int }{1})
	if !errors.Is(err, errs.ErrDecode) {
		t.Fatalf("ValueOf(struct) error = %v, want ErrDecode", err)
	}
	if !v.IsNull() {
		t.Error("failed conversion should yield a null cell")
	}

	if _, err := ValueOf([]any{map[string]int{}}); !errors.Is(err, errs.ErrDecode) {
		t.Errorf("nested unsupported element error = %v, want ErrDecode", err)
	}
}

func TestStringIsTotal(t *testing.T) {
	values := []Value{
		{},
		Null(),
		String(""),
		Int(0),
		Uint(0),
		Float(math.NaN()),
		Float(math.Inf(1)),
		Bool(false),
		Time(time.Time{}),
		Bytes(nil),
		Strings(nil),
		{kind: Kind(200)},
	}
	for _, v := range values {
		_ = v.String()
	}
	if Time(time.Time{}).String() != "" {
		t.Error("zero time should render empty")
	}
	if Kind(200).String() != "kind(200)" {
		t.Errorf("unknown kind name = %q", Kind(200).String())
	}
}

func TestValueMarshalJSON(t *testing.T) {
	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	row := NewRow()
	row.Set("name", String("x"))
	row.Set("count", Uint(3))
	row.Set("when", Time(ts))
	row.Set("raw", Bytes([]byte{1, 2}))
	row.Set("none", Null())

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"x","count":3,"when":"2023-01-02T03:04:05Z","raw":"0102","none":null}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestValueMarshalJSONNonFiniteFloat(t *testing.T) {
	row := NewRow()
	row.Set("nan", Float(math.NaN()))
	row.Set("pos", Float(math.Inf(1)))
	row.Set("neg", Float(math.Inf(-1)))
	row.Set("ok", Float(1.5))

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"nan":"NaN","pos":"+Inf","neg":"-Inf","ok":1.5}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
