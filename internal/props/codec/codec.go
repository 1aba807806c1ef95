// Package codec encodes and decodes single property values in the
// store-file literal format.
//
// Booleans persist as bare true/false; decimal and percent sliders as
// fixed six-decimal notation; every other numeric kind as a half-up
// rounded integer; strings double-quoted with backslash and quote
// escaped; colors as a quoted "A,R,G,B" quad of 8-bit channels.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

// ErrNoEncoding indicates a value that has no store-file form, such as
// an unset value or a button.
var ErrNoEncoding = errors.New("value has no encoding")

// Encode renders a value as a store-file literal for the given kind.
func Encode(v registry.Value, k registry.Kind) (string, error) {
	if v.IsUnset() {
		return "", ErrNoEncoding
	}
	if v.Family() != k.Family() {
		return "", fmt.Errorf("encode %s as %s: %w", v.Family(), k, ErrNoEncoding)
	}

	switch v.Family() {
	case registry.FamilyBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case registry.FamilyInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), nil
	case registry.FamilyFloat:
		f, _ := v.AsFloat()
		if k.FixedPrecision() {
			return strconv.FormatFloat(f, 'f', 6, 64), nil
		}
		return strconv.FormatInt(registry.RoundHalfUp(f), 10), nil
	case registry.FamilyString:
		s, _ := v.AsString()
		return quote(s), nil
	case registry.FamilyColor:
		c, _ := v.AsColor()
		return `"` + c.String() + `"`, nil
	default:
		return "", ErrNoEncoding
	}
}

// Decode parses a store-file literal into a value of the kind's family.
// A returned error means "skip this literal and keep the default";
// callers log it and continue, they never abort on it.
func Decode(raw string, k registry.Kind) (registry.Value, error) {
	raw = strings.TrimSpace(raw)

	switch k.Family() {
	case registry.FamilyBool:
		switch raw {
		case "true":
			return registry.Bool(true), nil
		case "false":
			return registry.Bool(false), nil
		}
		return registry.Value{}, fmt.Errorf("not a boolean literal: %q", raw)

	case registry.FamilyInt:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return registry.Int(i), nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return registry.Int(registry.RoundHalfUp(f)), nil
		}
		return registry.Value{}, fmt.Errorf("not an integer literal: %q", raw)

	case registry.FamilyFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return registry.Value{}, fmt.Errorf("not a float literal: %q", raw)
		}
		return registry.Float(f), nil

	case registry.FamilyString:
		s, err := unquote(raw)
		if err != nil {
			return registry.Value{}, err
		}
		return registry.String(s), nil

	case registry.FamilyColor:
		c, err := decodeColor(raw)
		if err != nil {
			return registry.Value{}, err
		}
		return registry.ColorOf(c), nil

	default:
		return registry.Value{}, fmt.Errorf("kind %s carries no value", k)
	}
}

// DecodeLoose parses human-entered text, such as an environment
// variable or a CLI argument, into a value of the kind's family.
// Unlike Decode, strings are taken verbatim without quoting, booleans
// accept yes/no, on/off, and 1/0 spellings, and colors are a bare
// A,R,G,B quad.
func DecodeLoose(raw string, k registry.Kind) (registry.Value, error) {
	switch k.Family() {
	case registry.FamilyBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "on", "1":
			return registry.Bool(true), nil
		case "false", "no", "off", "0":
			return registry.Bool(false), nil
		}
		return registry.Value{}, fmt.Errorf("not a boolean: %q", raw)

	case registry.FamilyInt:
		trimmed := strings.TrimSpace(raw)
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return registry.Int(i), nil
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return registry.Int(registry.RoundHalfUp(f)), nil
		}
		return registry.Value{}, fmt.Errorf("not an integer: %q", raw)

	case registry.FamilyFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return registry.Value{}, fmt.Errorf("not a number: %q", raw)
		}
		return registry.Float(f), nil

	case registry.FamilyString:
		return registry.String(raw), nil

	case registry.FamilyColor:
		c, err := ParseColor(strings.TrimSpace(raw))
		if err != nil {
			return registry.Value{}, err
		}
		return registry.ColorOf(c), nil

	default:
		return registry.Value{}, fmt.Errorf("kind %s carries no value", k)
	}
}

// quote wraps s in double quotes, escaping backslashes and quotes.
// Newlines and carriage returns encode as \n and \r so that a
// multi-line paragraph stays one physical line in the store file; the
// line-oriented loader could never reassemble a literal line break.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unquote reverses quote. The literal must be fully enclosed in double
// quotes with no unescaped interior quote.
func unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("not a quoted string: %q", raw)
	}
	inner := raw[1 : len(raw)-1]

	var b strings.Builder
	b.Grow(len(inner))
	escaped := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case escaped:
			switch ch {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(ch)
			}
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return "", fmt.Errorf("unescaped quote in string: %q", raw)
		default:
			b.WriteByte(ch)
		}
	}
	if escaped {
		return "", fmt.Errorf("dangling escape in string: %q", raw)
	}
	return b.String(), nil
}

// decodeColor parses a quoted "A,R,G,B" quad of 0..255 integers.
func decodeColor(raw string) (registry.Color, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return registry.Color{}, fmt.Errorf("not a quoted color: %q", raw)
	}
	return ParseColor(raw[1 : len(raw)-1])
}

// ParseColor parses a bare A,R,G,B quad of 0..255 integers, the form
// that appears inside the quotes of an encoded color.
func ParseColor(s string) (registry.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return registry.Color{}, fmt.Errorf("color needs 4 channels, got %d: %q", len(parts), s)
	}

	var ch [4]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return registry.Color{}, fmt.Errorf("bad color channel %q: %w", p, err)
		}
		ch[i] = uint8(n)
	}
	return registry.Color{A: ch[0], R: ch[1], G: ch[2], B: ch[3]}, nil
}
