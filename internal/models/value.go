// Package models defines the result data structures every collector
// produces: typed cell values, rows, tables and the result envelope handed
// to the output layer.
package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vitalis-app/hostenum/internal/errs"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindBytes
	KindStrings
)

var kindNames = [...]string{
	KindNull:    "null",
	KindString:  "string",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindBool:    "bool",
	KindTime:    "time",
	KindBytes:   "bytes",
	KindStrings: "strings",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// TimeLayout is the layout used when rendering date-time cells.
const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	i    int64
	u    uint64
	f    float64
	b    bool
	t    time.Time
	raw  []byte
	list []string
}

// Null returns an empty cell.
func Null() Value { return Value{} }

// String returns a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns a signed integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an unsigned integer cell.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Float returns a floating point cell.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a date-time cell.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Bytes returns a raw bytes cell. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte(nil), b...)}
}

// Strings returns a multi-string cell. The slice is copied.
func Strings(s []string) Value {
	return Value{kind: KindStrings, list: append([]string(nil), s...)}
}

// ValueOf converts a Go value into a cell. Supported sources are nil,
// strings, all integer and float widths, bool, time.Time, []byte,
// []string, []any of supported scalars, pointers to those and Value
// itself. Any other type yields an error matching errs.ErrDecode.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case *string:
		if x == nil {
			return Null(), nil
		}
		return String(*x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case bool:
		return Bool(x), nil
	case time.Time:
		return Time(x), nil
	case *time.Time:
		if x == nil {
			return Null(), nil
		}
		return Time(*x), nil
	case []byte:
		return Bytes(x), nil
	case []string:
		return Strings(x), nil
	case []any:
		list := make([]string, 0, len(x))
		for _, item := range x {
			iv, err := ValueOf(item)
			if err != nil {
				return Null(), err
			}
			list = append(list, iv.String())
		}
		return Strings(list), nil
	default:
		return Null(), errs.Decode(fmt.Sprintf("cell of type %T", v), nil)
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is empty.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsUint() (uint64, bool)   { return v.u, v.kind == KindUint }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// AsBytes returns a copy of the raw bytes held by v.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte(nil), v.raw...), true
}

// AsStrings returns a copy of the strings held by v.
func (v Value) AsStrings() ([]string, bool) {
	if v.kind != KindStrings {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

// String renders v for display. It never fails: null and zero times
// render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindTime:
		if v.t.IsZero() {
			return ""
		}
		return v.t.Format(TimeLayout)
	case KindBytes:
		return strings.ToUpper(hex.EncodeToString(v.raw))
	case KindStrings:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Interface returns the Go value held by v, or nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindBytes:
		return append([]byte(nil), v.raw...)
	case KindStrings:
		return append([]string(nil), v.list...)
	default:
		return nil
	}
}

// MarshalJSON encodes v as its natural JSON counterpart. Times use
// RFC 3339 and bytes are hex encoded to match the display form. NaN and
// infinities, which JSON numbers cannot hold, are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.f)
	case KindTime:
		if v.t.IsZero() {
			return []byte("null"), nil
		}
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	case KindBytes:
		return json.Marshal(v.String())
	default:
		return json.Marshal(v.Interface())
	}
}
