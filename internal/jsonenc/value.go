package jsonenc

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindID
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "bool", "int", "uint", "float", "string", "id", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one JSON value in a record. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	u     uint64
	f     float64
	fbits int // 32 or 64, controls float round-trip precision
	s     string
	id    uuid.UUID
	arr   []Value
	obj   *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an unsigned integer value.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Float32 returns a single-precision floating-point value. It renders with
// the shortest text that round-trips at 32 bits.
func Float32(f float32) Value { return Value{kind: KindFloat, f: float64(f), fbits: 32} }

// Float64 returns a double-precision floating-point value.
func Float64(f float64) Value { return Value{kind: KindFloat, f: f, fbits: 64} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ID returns an identifier value, rendered as the canonical hyphenated UUID
// string form.
func ID(id uuid.UUID) Value { return Value{kind: KindID, id: id} }

// Array returns a sequence value.
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Nested wraps an [Object] as a value. A nil object renders as null.
func Nested(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Of bridges an arbitrary Go value into the variant.
//
// Primitives, strings, [uuid.UUID], [*Object], [Value] itself and slices of
// supported element types map directly. A value of any other type is probed
// through [fmt.Stringer]: if its string form parses as a UUID it becomes an
// identifier value. Everything else degrades to null. That silent downgrade
// is the data-loss policy for unknown field types; records must never fail
// to encode because one field had a type this package predates.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float32(x)
	case float64:
		return Float64(x)
	case string:
		return String(x)
	case uuid.UUID:
		return ID(x)
	case *Object:
		if x == nil {
			return Null()
		}
		return Nested(x)
	case []Value:
		return Array(x...)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Of(e)
		}
		return Value{kind: KindArray, arr: elems}
	case []string:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = String(e)
		}
		return Value{kind: KindArray, arr: elems}
	case []int:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Int(int64(e))
		}
		return Value{kind: KindArray, arr: elems}
	case []int64:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Int(e)
		}
		return Value{kind: KindArray, arr: elems}
	case []float64:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Float64(e)
		}
		return Value{kind: KindArray, arr: elems}
	case []bool:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = Bool(e)
		}
		return Value{kind: KindArray, arr: elems}
	}
	return ofFallback(v)
}

// ofFallback handles the slow paths of [Of]: slices of uncommon element
// types, then the identifier heuristic. Reflection stays confined to this
// bridge; encoding itself dispatches on [Kind] tags only.
func ofFallback(v any) Value {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		elems := make([]Value, rv.Len())
		for i := range elems {
			elems[i] = Of(rv.Index(i).Interface())
		}
		return Value{kind: KindArray, arr: elems}
	}
	if s, ok := v.(fmt.Stringer); ok {
		if id, err := uuid.Parse(s.String()); err == nil {
			return ID(id)
		}
	}
	return Null()
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value renders as the literal null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AppendJSON appends the JSON text of v to dst and returns the extended
// slice. Numbers render in culture-invariant decimal form; NaN and
// infinities have no JSON literal and degrade to null.
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10)
	case KindUint:
		return strconv.AppendUint(dst, v.u, 10)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return append(dst, "null"...)
		}
		return strconv.AppendFloat(dst, v.f, 'g', -1, v.fbits)
	case KindString:
		return appendQuoted(dst, v.s)
	case KindID:
		dst = append(dst, '"')
		dst = append(dst, v.id.String()...)
		return append(dst, '"')
	case KindArray:
		dst = append(dst, '[')
		for i, e := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = e.AppendJSON(dst)
		}
		return append(dst, ']')
	case KindObject:
		if v.obj == nil {
			return append(dst, "null"...)
		}
		return v.obj.AppendJSON(dst)
	default:
		return append(dst, "null"...)
	}
}

// JSON returns the JSON text of v.
func (v Value) JSON() string {
	return string(v.AppendJSON(nil))
}

// appendQuoted appends s as a double-quoted JSON string using the record
// escape profile.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = appendEscaped(dst, s)
	return append(dst, '"')
}

// appendEscaped escapes exactly seven bytes: backslash, double quote,
// backspace, tab, line feed, form feed and carriage return. Every other
// byte, control characters included, passes through verbatim. The escaped
// bytes are all below 0x80, so walking bytes is safe inside multi-byte
// UTF-8 sequences.
func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			dst = append(dst, '\\', '\\')
		case '"':
			dst = append(dst, '\\', '"')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
