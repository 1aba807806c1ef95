package registry

import (
	"errors"
	"fmt"
)

// Errors returned by registry operations.
var (
	// ErrDuplicateKey indicates an attempt to register a key twice.
	// Duplicate registration is always rejected; the first descriptor wins.
	ErrDuplicateKey = errors.New("property already registered")

	// ErrNotFound indicates the property key is not registered.
	ErrNotFound = errors.New("property not found")
)

// ValidationError describes a descriptor that cannot be registered.
// Registration errors are fatal at setup time.
type ValidationError struct {
	// Key is the descriptor key, when known.
	Key string
	// Field is the offending descriptor field.
	Field string
	// Message describes the failure.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid descriptor: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid descriptor %q: %s: %s", e.Key, e.Field, e.Message)
}

// Descriptor defines one property. Descriptors are immutable after
// registration except for the Hidden flag, which the owning Registry
// may flip.
type Descriptor struct {
	// Key is the unique identifier, also used in the persisted file.
	Key string `validate:"required"`

	// Kind is the widget type.
	Kind Kind `validate:"required"`

	// Name is the human-readable label.
	Name string `validate:"required"`

	// Description documents the property.
	Description string

	// Category groups properties; categories order by first registration.
	Category string `validate:"required"`

	// Subcategory optionally subdivides a category. Empty means
	// ungrouped; the store file sections such properties under the
	// category's own name.
	Subcategory string

	// Default is the initial value. Filled with the kind-appropriate
	// default when left unset; buttons and pathless image references
	// stay unset.
	Default Value

	// Min and Max bound integer kinds inclusively. Both zero means
	// unbounded.
	Min int64
	Max int64

	// MinF and MaxF bound float kinds inclusively. Both zero means
	// unbounded, except percent sliders default to [0,1] and angle
	// sliders to [0,360].
	MinF float64
	MaxF float64

	// Step is the UI adjustment increment.
	Step float64

	// Precision is the decimal display precision for decimal sliders.
	Precision int

	// Options lists selector choices; selector values are 1-based
	// indexes into this list.
	Options []string

	// Alpha enables the alpha channel on color pickers.
	Alpha bool

	// Protected masks text input.
	Protected bool

	// Placeholder is shown in empty text inputs.
	Placeholder string

	// Path is the default source for image references.
	Path string

	// Action runs when a button is pressed.
	Action func() error

	// InlineAction optionally runs from a secondary inline control,
	// labeled InlineLabel.
	InlineAction func() error
	InlineLabel  string

	// Hidden forces the property invisible regardless of dependencies.
	Hidden bool

	// SkipInitNotify suppresses the one-time dispatch of the initial
	// value during engine initialization. Buttons never dispatch.
	SkipInitNotify bool
}

// normalize fills unset optional fields with their kind defaults.
// Called by Registry.Register after required-field validation.
func (d *Descriptor) normalize() error {
	switch d.Kind {
	case KindSliderPercent:
		if d.MinF == 0 && d.MaxF == 0 {
			d.MaxF = 1
		}
		if d.Step == 0 {
			d.Step = 0.01
		}
	case KindSliderAngle:
		if d.MinF == 0 && d.MaxF == 0 {
			d.MaxF = 360
		}
		if d.Step == 0 {
			d.Step = 1
		}
	case KindSliderDecimal:
		if d.Step == 0 {
			d.Step = 0.01
		}
		if d.Precision == 0 {
			d.Precision = 2
		}
	case KindSliderVertical:
		if d.Step == 0 {
			d.Step = 0.01
		}
	case KindSliderInt, KindNumberInt:
		if d.Step == 0 {
			d.Step = 1
		}
	}

	if d.Default.IsUnset() {
		d.Default = d.defaultValue()
	} else {
		coerced, err := d.Default.Coerce(d.Kind)
		if err != nil {
			return &ValidationError{Key: d.Key, Field: "Default", Message: err.Error()}
		}
		d.Default = coerced
	}
	return nil
}

// defaultValue returns the kind-appropriate default for a descriptor
// that declares none.
func (d *Descriptor) defaultValue() Value {
	switch d.Kind.Family() {
	case FamilyBool:
		return Bool(false)
	case FamilyInt:
		if d.Kind == KindSelector {
			return Int(1)
		}
		return d.ClampInt(0)
	case FamilyFloat:
		return d.ClampFloat(0)
	case FamilyString:
		if d.Kind == KindImage {
			if d.Path == "" {
				return Unset()
			}
			return String(d.Path)
		}
		return String("")
	case FamilyColor:
		return RGBA(255, 255, 255, 255)
	default:
		return Unset()
	}
}

// check verifies the descriptor invariants that go beyond required
// fields. Returns a ValidationError on the first violation.
func (d *Descriptor) check() error {
	if d.Kind.String() == "invalid" {
		return &ValidationError{Key: d.Key, Field: "Kind", Message: "unknown kind"}
	}
	if d.Min > d.Max {
		return &ValidationError{Key: d.Key, Field: "Min",
			Message: fmt.Sprintf("min %d greater than max %d", d.Min, d.Max)}
	}
	if d.MinF > d.MaxF {
		return &ValidationError{Key: d.Key, Field: "MinF",
			Message: fmt.Sprintf("min %g greater than max %g", d.MinF, d.MaxF)}
	}
	if d.Kind == KindSelector && len(d.Options) == 0 {
		return &ValidationError{Key: d.Key, Field: "Options", Message: "selector requires options"}
	}
	if d.Kind == KindButton && !d.Default.IsUnset() {
		return &ValidationError{Key: d.Key, Field: "Default", Message: "button carries no value"}
	}
	return nil
}

// Ranged reports whether the descriptor declares a numeric range.
func (d *Descriptor) Ranged() bool {
	switch d.Kind.Family() {
	case FamilyInt:
		return d.Min != 0 || d.Max != 0
	case FamilyFloat:
		return d.MinF != 0 || d.MaxF != 0
	default:
		return false
	}
}

// ClampInt restricts v to the integer range when one is declared.
func (d *Descriptor) ClampInt(v int64) Value {
	if d.Min != 0 || d.Max != 0 {
		if v < d.Min {
			v = d.Min
		}
		if v > d.Max {
			v = d.Max
		}
	}
	return Int(v)
}

// ClampFloat restricts v to the float range when one is declared.
func (d *Descriptor) ClampFloat(v float64) Value {
	if d.MinF != 0 || d.MaxF != 0 {
		if v < d.MinF {
			v = d.MinF
		}
		if v > d.MaxF {
			v = d.MaxF
		}
	}
	return Float(v)
}

// Clamp restricts a numeric value to the descriptor's declared range.
// Selector values clamp into the 1-based option index range. Values of
// other families pass through unchanged.
func (d *Descriptor) Clamp(v Value) Value {
	if d.Kind == KindSelector {
		if idx, ok := v.AsInt(); ok {
			if idx < 1 {
				idx = 1
			}
			if max := int64(len(d.Options)); idx > max {
				idx = max
			}
			return Int(idx)
		}
		return v
	}
	if i, ok := v.AsInt(); ok && d.Kind.Family() == FamilyInt {
		return d.ClampInt(i)
	}
	if f, ok := v.AsFloat(); ok && d.Kind.Family() == FamilyFloat {
		return d.ClampFloat(f)
	}
	return v
}
