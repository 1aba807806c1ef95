package codec

import (
	"math"
	"strings"
	"testing"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

func TestRoundTrip_Booleans(t *testing.T) {
	for _, want := range []bool{true, false} {
		enc, err := Encode(registry.Bool(want), registry.KindSwitch)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", want, err)
		}
		v, err := Decode(enc, registry.KindSwitch)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsBool(); got != want {
			t.Errorf("round trip %v: got %v", want, got)
		}
	}
}

func TestRoundTrip_Integers(t *testing.T) {
	cases := []int64{0, 1, -1, 255, -4096, math.MaxInt64, math.MinInt64}
	for _, want := range cases {
		enc, err := Encode(registry.Int(want), registry.KindNumberInt)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", want, err)
		}
		v, err := Decode(enc, registry.KindNumberInt)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsInt(); got != want {
			t.Errorf("round trip %d: got %d", want, got)
		}
	}
}

func TestRoundTrip_FixedPrecisionFloats(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{-1.25, -1.25},
		{0.123456789, 0.123457},
		{1.0 / 3.0, 0.333333},
	}
	for _, tc := range cases {
		enc, err := Encode(registry.Float(tc.in), registry.KindSliderDecimal)
		if err != nil {
			t.Fatalf("Encode(%g) failed: %v", tc.in, err)
		}
		v, err := Decode(enc, registry.KindSliderDecimal)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsFloat(); got != tc.want {
			t.Errorf("round trip %g: got %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestEncode_NonPrecisionFloatsRound(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3.7, "4"},
		{3.2, "3"},
		{2.5, "3"},
		{-2.5, "-2"},
		{0, "0"},
	}
	for _, tc := range cases {
		enc, err := Encode(registry.Float(tc.in), registry.KindSliderAngle)
		if err != nil {
			t.Fatalf("Encode(%g) failed: %v", tc.in, err)
		}
		if enc != tc.want {
			t.Errorf("Encode(%g) = %q, want %q", tc.in, enc, tc.want)
		}
		// Decodes back into the float family.
		v, err := Decode(enc, registry.KindSliderAngle)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if v.Family() != registry.FamilyFloat {
			t.Errorf("Decode(%q) family = %v", enc, v.Family())
		}
	}
}

func TestRoundTrip_Strings(t *testing.T) {
	cases := []string{
		"",
		"plain",
		`with "quotes" inside`,
		`back\slash`,
		`both \" mixed \\`,
		"trailing backslash \\",
	}
	for _, want := range cases {
		enc, err := Encode(registry.String(want), registry.KindText)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", want, err)
		}
		v, err := Decode(enc, registry.KindText)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsString(); got != want {
			t.Errorf("round trip %q: got %q", want, got)
		}
	}
}

func TestRoundTrip_MultilineStrings(t *testing.T) {
	cases := []string{
		"line1\nline2",
		"crlf\r\nending",
		"\nleading",
		"trailing\n",
		"mixed \\n literal and\nreal break",
	}
	for _, want := range cases {
		enc, err := Encode(registry.String(want), registry.KindParagraph)
		if err != nil {
			t.Fatalf("Encode(%q) failed: %v", want, err)
		}
		// The encoding must stay on one physical line or the store
		// file's line-oriented reader would split it.
		if strings.ContainsAny(enc, "\n\r") {
			t.Errorf("Encode(%q) = %q contains a raw line break", want, enc)
		}
		v, err := Decode(enc, registry.KindParagraph)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsString(); got != want {
			t.Errorf("round trip %q: got %q", want, got)
		}
	}
}

func TestRoundTrip_Colors(t *testing.T) {
	cases := []registry.Color{
		{A: 0, R: 0, G: 0, B: 0},
		{A: 255, R: 255, G: 255, B: 255},
		{A: 128, R: 1, G: 254, B: 63},
	}
	for _, want := range cases {
		enc, err := Encode(registry.ColorOf(want), registry.KindColor)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", want, err)
		}
		v, err := Decode(enc, registry.KindColor)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", enc, err)
		}
		if got, _ := v.AsColor(); got != want {
			t.Errorf("round trip %v: got %v", want, got)
		}
	}
}

func TestEncode_ColorFormat(t *testing.T) {
	enc, err := Encode(registry.RGBA(255, 10, 20, 30), registry.KindColor)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc != `"255,10,20,30"` {
		t.Errorf("Encode = %s, want quoted A,R,G,B", enc)
	}
}

func TestDecode_IntAcceptsFloatLiteral(t *testing.T) {
	v, err := Decode("4.6", registry.KindSliderInt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got, _ := v.AsInt(); got != 5 {
		t.Errorf("Decode(4.6) = %d, want 5", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		raw  string
		kind registry.Kind
	}{
		{"tru", registry.KindSwitch},
		{"TRUE", registry.KindSwitch},
		{"1", registry.KindCheckbox},
		{"abc", registry.KindNumberInt},
		{"1.2.3", registry.KindSliderDecimal},
		{"unquoted", registry.KindText},
		{`"dangling \`, registry.KindText},
		{`"inner " quote"`, registry.KindText},
		{`1,2,3,4`, registry.KindColor},
		{`"1,2,3"`, registry.KindColor},
		{`"1,2,3,999"`, registry.KindColor},
		{`"1,2,3,x"`, registry.KindColor},
		{"anything", registry.KindButton},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.raw, tc.kind); err == nil {
			t.Errorf("Decode(%q, %s): expected error", tc.raw, tc.kind)
		}
	}
}

func TestEncode_Rejects(t *testing.T) {
	if _, err := Encode(registry.Unset(), registry.KindText); err == nil {
		t.Error("expected error encoding unset value")
	}
	if _, err := Encode(registry.String("x"), registry.KindSwitch); err == nil {
		t.Error("expected error for family mismatch")
	}
}
