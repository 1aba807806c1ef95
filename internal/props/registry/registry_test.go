package registry

import (
	"errors"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	r := New()

	d, err := r.Register(Descriptor{
		Key:      "engine.enabled",
		Kind:     KindSwitch,
		Name:     "Enabled",
		Category: "Engine",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got, _ := d.Default.AsBool(); got {
		t.Error("switch default should be false")
	}

	// Duplicate should fail
	_, err = r.Register(Descriptor{
		Key:      "engine.enabled",
		Kind:     KindCheckbox,
		Name:     "Enabled again",
		Category: "Engine",
	})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistry_Register_MissingFields(t *testing.T) {
	r := New()

	cases := []struct {
		name string
		desc Descriptor
	}{
		{"missing key", Descriptor{Kind: KindSwitch, Name: "X", Category: "C"}},
		{"missing kind", Descriptor{Key: "k", Name: "X", Category: "C"}},
		{"missing name", Descriptor{Key: "k", Kind: KindSwitch, Category: "C"}},
		{"missing category", Descriptor{Key: "k", Kind: KindSwitch, Name: "X"}},
	}
	for _, tc := range cases {
		_, err := r.Register(tc.desc)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestRegistry_Register_InvalidRange(t *testing.T) {
	r := New()

	_, err := r.Register(Descriptor{
		Key:      "bad.int",
		Kind:     KindSliderInt,
		Name:     "Bad",
		Category: "C",
		Min:      10,
		Max:      1,
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for min > max, got %v", err)
	}

	_, err = r.Register(Descriptor{
		Key:      "bad.float",
		Kind:     KindSliderVertical,
		Name:     "Bad",
		Category: "C",
		MinF:     2.5,
		MaxF:     0.5,
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for minF > maxF, got %v", err)
	}
}

func TestRegistry_Register_SelectorNeedsOptions(t *testing.T) {
	r := New()

	_, err := r.Register(Descriptor{
		Key:      "mode",
		Kind:     KindSelector,
		Name:     "Mode",
		Category: "C",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for selector without options, got %v", err)
	}
}

func TestRegistry_Register_FillsDefaults(t *testing.T) {
	r := New()

	sel := r.MustRegister(Descriptor{
		Key:      "mode",
		Kind:     KindSelector,
		Name:     "Mode",
		Category: "C",
		Options:  []string{"a", "b", "c"},
	})
	if idx, _ := sel.Default.AsInt(); idx != 1 {
		t.Errorf("selector default = %d, want 1", idx)
	}

	pct := r.MustRegister(Descriptor{
		Key:      "opacity",
		Kind:     KindSliderPercent,
		Name:     "Opacity",
		Category: "C",
	})
	if pct.MinF != 0 || pct.MaxF != 1 {
		t.Errorf("percent range = [%g,%g], want [0,1]", pct.MinF, pct.MaxF)
	}

	ang := r.MustRegister(Descriptor{
		Key:      "rotation",
		Kind:     KindSliderAngle,
		Name:     "Rotation",
		Category: "C",
	})
	if ang.MinF != 0 || ang.MaxF != 360 {
		t.Errorf("angle range = [%g,%g], want [0,360]", ang.MinF, ang.MaxF)
	}

	dec := r.MustRegister(Descriptor{
		Key:      "scale",
		Kind:     KindSliderDecimal,
		Name:     "Scale",
		Category: "C",
		MinF:     0.5,
		MaxF:     2,
	})
	if dec.Precision != 2 || dec.Step != 0.01 {
		t.Errorf("decimal fills = precision %d step %g", dec.Precision, dec.Step)
	}
	if f, _ := dec.Default.AsFloat(); f != 0.5 {
		t.Errorf("decimal default = %g, want clamped 0.5", f)
	}

	img := r.MustRegister(Descriptor{
		Key:      "logo",
		Kind:     KindImage,
		Name:     "Logo",
		Category: "C",
		Path:     "assets/logo.png",
	})
	if s, _ := img.Default.AsString(); s != "assets/logo.png" {
		t.Errorf("image default = %q, want descriptor path", s)
	}

	bare := r.MustRegister(Descriptor{
		Key:      "overlay",
		Kind:     KindImage,
		Name:     "Overlay",
		Category: "C",
	})
	if !bare.Default.IsUnset() {
		t.Error("pathless image default should stay unset")
	}

	btn := r.MustRegister(Descriptor{
		Key:      "apply",
		Kind:     KindButton,
		Name:     "Apply",
		Category: "C",
		Action:   func() error { return nil },
	})
	if !btn.Default.IsUnset() {
		t.Error("button default should stay unset")
	}
}

func TestRegistry_Register_CoercesDefault(t *testing.T) {
	r := New()

	d := r.MustRegister(Descriptor{
		Key:      "speed",
		Kind:     KindSliderDecimal,
		Name:     "Speed",
		Category: "C",
		MinF:     0,
		MaxF:     10,
		Default:  Int(5),
	})
	if f, ok := d.Default.AsFloat(); !ok || f != 5.0 {
		t.Errorf("default = %v, want float 5.0", d.Default)
	}

	_, err := r.Register(Descriptor{
		Key:      "broken",
		Kind:     KindSwitch,
		Name:     "Broken",
		Category: "C",
		Default:  String("on"),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for mismatched default, got %v", err)
	}
}

func TestRegistry_Order(t *testing.T) {
	r := New()
	r.MustRegister(Descriptor{Key: "a", Kind: KindSwitch, Name: "A", Category: "X"})
	r.MustRegister(Descriptor{Key: "b", Kind: KindSwitch, Name: "B", Category: "Y"})
	r.MustRegister(Descriptor{Key: "c", Kind: KindSwitch, Name: "C", Category: "X"})

	cats := r.Categories()
	if len(cats) != 2 || cats[0] != "X" || cats[1] != "Y" {
		t.Errorf("Categories = %v, want [X Y]", cats)
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(all))
	}
	for i, key := range []string{"a", "b", "c"} {
		if all[i].Key != key {
			t.Errorf("All[%d] = %s, want %s", i, all[i].Key, key)
		}
	}

	x := r.ByCategory("X")
	if len(x) != 2 || x[0].Key != "a" || x[1].Key != "c" {
		t.Errorf("ByCategory(X) = %v", keysOf(x))
	}
}

func TestRegistry_Subcategories(t *testing.T) {
	r := New()
	r.MustRegister(Descriptor{Key: "a", Kind: KindSwitch, Name: "A", Category: "X", Subcategory: "one"})
	r.MustRegister(Descriptor{Key: "b", Kind: KindSwitch, Name: "B", Category: "X"})
	r.MustRegister(Descriptor{Key: "c", Kind: KindSwitch, Name: "C", Category: "X", Subcategory: "two"})
	r.MustRegister(Descriptor{Key: "d", Kind: KindSwitch, Name: "D", Category: "X", Subcategory: "one"})

	subs := r.Subcategories("X")
	if len(subs) != 2 || subs[0] != "one" || subs[1] != "two" {
		t.Errorf("Subcategories = %v, want [one two]", subs)
	}
}

func TestRegistry_MustRegister_Panics(t *testing.T) {
	r := New()
	r.MustRegister(Descriptor{Key: "k", Kind: KindSwitch, Name: "K", Category: "C"})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate MustRegister")
		}
	}()
	r.MustRegister(Descriptor{Key: "k", Kind: KindSwitch, Name: "K", Category: "C"})
}

func TestRegistry_SetHidden(t *testing.T) {
	r := New()
	r.MustRegister(Descriptor{Key: "k", Kind: KindSwitch, Name: "K", Category: "C"})

	if err := r.SetHidden("k", true); err != nil {
		t.Fatalf("SetHidden failed: %v", err)
	}
	if !r.Get("k").Hidden {
		t.Error("expected Hidden to be set")
	}

	if err := r.SetHidden("missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDescriptor_Clamp(t *testing.T) {
	r := New()
	slider := r.MustRegister(Descriptor{
		Key: "n", Kind: KindSliderInt, Name: "N", Category: "C",
		Min: 1, Max: 10,
	})
	if v, _ := slider.Clamp(Int(99)).AsInt(); v != 10 {
		t.Errorf("Clamp(99) = %d, want 10", v)
	}
	if v, _ := slider.Clamp(Int(-5)).AsInt(); v != 1 {
		t.Errorf("Clamp(-5) = %d, want 1", v)
	}

	sel := r.MustRegister(Descriptor{
		Key: "m", Kind: KindSelector, Name: "M", Category: "C",
		Options: []string{"a", "b"},
	})
	if v, _ := sel.Clamp(Int(7)).AsInt(); v != 2 {
		t.Errorf("selector Clamp(7) = %d, want 2", v)
	}
	if v, _ := sel.Clamp(Int(0)).AsInt(); v != 1 {
		t.Errorf("selector Clamp(0) = %d, want 1", v)
	}
}

func keysOf(ds []*Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key
	}
	return out
}
