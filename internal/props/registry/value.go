package registry

import (
	"fmt"
	"math"
	"strconv"
)

// Family classifies the runtime representation of a property value.
type Family uint8

const (
	// FamilyNone marks the unset Value and kinds that carry no value.
	FamilyNone Family = iota
	// FamilyBool holds true/false.
	FamilyBool
	// FamilyInt holds a signed integer.
	FamilyInt
	// FamilyFloat holds a float.
	FamilyFloat
	// FamilyString holds text, including image paths.
	FamilyString
	// FamilyColor holds an ARGB quad.
	FamilyColor
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyBool:
		return "bool"
	case FamilyInt:
		return "int"
	case FamilyFloat:
		return "float"
	case FamilyString:
		return "string"
	case FamilyColor:
		return "color"
	default:
		return "none"
	}
}

// Color is an ARGB quad with unsigned 8-bit channels.
type Color struct {
	A, R, G, B uint8
}

// String returns the channels as "A,R,G,B".
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c.A, c.R, c.G, c.B)
}

// Value is a tagged variant holding one property value. The zero Value
// is unset; unset is distinct from every concrete value, including
// false, zero, and the empty string.
type Value struct {
	family Family
	b      bool
	i      int64
	f      float64
	s      string
	c      Color
}

// Unset returns the unset Value.
func Unset() Value { return Value{} }

// Bool wraps a boolean value.
func Bool(v bool) Value { return Value{family: FamilyBool, b: v} }

// Int wraps an integer value.
func Int(v int64) Value { return Value{family: FamilyInt, i: v} }

// Float wraps a float value.
func Float(v float64) Value { return Value{family: FamilyFloat, f: v} }

// String wraps a string value.
func String(v string) Value { return Value{family: FamilyString, s: v} }

// RGBA wraps an ARGB color value.
func RGBA(a, r, g, b uint8) Value {
	return Value{family: FamilyColor, c: Color{A: a, R: r, G: g, B: b}}
}

// ColorOf wraps a Color value.
func ColorOf(c Color) Value { return Value{family: FamilyColor, c: c} }

// Family returns the value's family tag.
func (v Value) Family() Family { return v.family }

// IsUnset reports whether the value is unset.
func (v Value) IsUnset() bool { return v.family == FamilyNone }

// AsBool returns the boolean payload. ok is false for other families.
func (v Value) AsBool() (val, ok bool) { return v.b, v.family == FamilyBool }

// AsInt returns the integer payload. ok is false for other families.
func (v Value) AsInt() (int64, bool) { return v.i, v.family == FamilyInt }

// AsFloat returns the float payload. ok is false for other families.
func (v Value) AsFloat() (float64, bool) { return v.f, v.family == FamilyFloat }

// AsString returns the string payload. ok is false for other families.
func (v Value) AsString() (string, bool) { return v.s, v.family == FamilyString }

// AsColor returns the color payload. ok is false for other families.
func (v Value) AsColor() (Color, bool) { return v.c, v.family == FamilyColor }

// Equal reports value equality: same family and same payload. This is
// the suppression primitive for redundant mutations.
func (v Value) Equal(other Value) bool {
	if v.family != other.family {
		return false
	}
	switch v.family {
	case FamilyBool:
		return v.b == other.b
	case FamilyInt:
		return v.i == other.i
	case FamilyFloat:
		return v.f == other.f
	case FamilyString:
		return v.s == other.s
	case FamilyColor:
		return v.c == other.c
	default:
		return true
	}
}

// Truthy reports whether the value makes a dependent property visible.
// Only unset and boolean false are falsy; every other value, including
// zero and the empty string, counts as truthy.
func (v Value) Truthy() bool {
	switch v.family {
	case FamilyNone:
		return false
	case FamilyBool:
		return v.b
	default:
		return true
	}
}

// Coerce adapts the value toward a kind's family. Integers and floats
// convert to each other (floats round half up); unset passes through
// untouched. Any other mismatch is a TypeError.
func (v Value) Coerce(k Kind) (Value, error) {
	want := k.Family()
	if v.family == want || v.family == FamilyNone {
		return v, nil
	}
	switch {
	case want == FamilyFloat && v.family == FamilyInt:
		return Float(float64(v.i)), nil
	case want == FamilyInt && v.family == FamilyFloat:
		return Int(RoundHalfUp(v.f)), nil
	}
	return Value{}, &TypeError{Want: want, Got: v.family}
}

// RoundHalfUp rounds to the nearest integer, ties upward. This is the
// rounding the store-file format applies to non-fixed-precision
// numerics.
func RoundHalfUp(f float64) int64 {
	return int64(math.Floor(f + 0.5))
}

// String returns a display form of the value.
func (v Value) String() string {
	switch v.family {
	case FamilyBool:
		return strconv.FormatBool(v.b)
	case FamilyInt:
		return strconv.FormatInt(v.i, 10)
	case FamilyFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case FamilyString:
		return v.s
	case FamilyColor:
		return v.c.String()
	default:
		return "<unset>"
	}
}

// TypeError reports a value whose family does not match the property's.
type TypeError struct {
	Want Family
	Got  Family
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s value, got %s", e.Want, e.Got)
}
