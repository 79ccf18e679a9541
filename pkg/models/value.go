package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Value Kinds
// ============================================================================

// ValueKind identifies the scalar type carried by a Value.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindInteger ValueKind = "integer"
	KindFloat   ValueKind = "float"
	KindBoolean ValueKind = "boolean"
	KindDate    ValueKind = "date"
	KindNull    ValueKind = "null"
	KindUnknown ValueKind = "unknown"
)

// ValidValueKinds contains all valid value kinds.
var ValidValueKinds = []ValueKind{
	KindString,
	KindInteger,
	KindFloat,
	KindBoolean,
	KindDate,
	KindNull,
	KindUnknown,
}

// IsValidValueKind checks if the given kind is valid.
func IsValidValueKind(k ValueKind) bool {
	for _, v := range ValidValueKinds {
		if v == k {
			return true
		}
	}
	return false
}

// IsNumeric returns true for integer and float kinds.
func (k ValueKind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// ============================================================================
// Value
// ============================================================================

// Value is a closed sum over the scalar types a Record cell may hold.
// The zero Value is null.
type Value struct {
	Kind ValueKind

	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// String wraps a string value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Integer wraps an integer value.
func Integer(i int64) Value {
	return Value{Kind: KindInteger, Int: i}
}

// Float wraps a float value.
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// Boolean wraps a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

// Date wraps a date value.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Time: t}
}

// Infer converts an arbitrary decoded value (JSON, YAML, connector output)
// into a typed Value. Unrecognized types fall back to their string rendering.
func Infer(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Boolean(v)
	case int:
		return Integer(int64(v))
	case int32:
		return Integer(int64(v))
	case int64:
		return Integer(v)
	case float32:
		return inferFloat(float64(v))
	case float64:
		return inferFloat(v)
	case time.Time:
		return Date(v)
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// inferFloat collapses whole-number floats (the usual JSON decoding of
// integers) back to integer kind.
func inferFloat(f float64) Value {
	if f == float64(int64(f)) {
		return Integer(int64(f))
	}
	return Float(f)
}

// IsNull returns true for the null value (and the zero Value).
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == ""
}

// AsFloat returns the numeric reading of the value and whether one exists.
// Integer-looking strings are accepted so id heuristics work on text ids.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Render returns the canonical string form of the value. Null renders empty.
func (v Value) Render() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// Key returns a string usable as a join/compare key. Unlike Render it
// prefixes the kind so "1" (string) and 1 (integer) of mixed-type columns
// collide only when numerically equal values share a numeric kind.
func (v Value) Key() string {
	if v.IsNull() {
		return "\x00null"
	}
	if v.Kind.IsNumeric() {
		f, _ := v.AsFloat()
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return string(v.Kind) + ":" + v.Render()
}

// Equal reports value equality under join semantics: numeric kinds compare
// numerically, everything else by kind and canonical rendering.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.Kind.IsNumeric() && other.Kind.IsNumeric() {
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		return a == b
	}
	return v.Kind == other.Kind && v.Render() == other.Render()
}

// Less orders two values for stable sorting: nulls first, numerics
// numerically, dates chronologically, everything else lexically.
func (v Value) Less(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && !other.IsNull()
	}
	if v.Kind.IsNumeric() && other.Kind.IsNumeric() {
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		return a < b
	}
	if v.Kind == KindDate && other.Kind == KindDate {
		return v.Time.Before(other.Time)
	}
	return v.Render() < other.Render()
}
