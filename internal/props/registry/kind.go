// Package registry defines the property data model for CryVigilance:
// the Kind enum, the tagged Value variant, the Descriptor, and the
// insertion-ordered Registry of descriptors.
//
// The registry maintains definitions of all known properties with their
// kinds, defaults, constraints, and grouping metadata. Descriptors are
// immutable after registration except for the Hidden flag.
package registry

// Kind identifies the widget type of a property. The zero value is
// invalid so that an uninitialized descriptor fails validation.
type Kind uint8

const (
	// KindInvalid is the zero Kind and never valid for registration.
	KindInvalid Kind = iota
	// KindSwitch is an on/off toggle.
	KindSwitch
	// KindCheckbox is a boolean checkbox.
	KindCheckbox
	// KindText is a single-line text input.
	KindText
	// KindParagraph is a multi-line text input.
	KindParagraph
	// KindSliderInt is an integer slider with an inclusive range.
	KindSliderInt
	// KindSliderDecimal is a float slider with configurable precision.
	KindSliderDecimal
	// KindSliderPercent is a float slider over the unit interval.
	KindSliderPercent
	// KindSliderVertical is a vertically rendered float slider.
	KindSliderVertical
	// KindSliderAngle is a float slider over degrees.
	KindSliderAngle
	// KindNumberInt is a free integer input.
	KindNumberInt
	// KindColor is an ARGB color picker.
	KindColor
	// KindSelector is a 1-based choice among a fixed option list.
	KindSelector
	// KindButton is an action trigger; it carries no value.
	KindButton
	// KindImage references an image or video by path.
	KindImage
)

// String returns the kind's canonical name.
func (k Kind) String() string {
	switch k {
	case KindSwitch:
		return "switch"
	case KindCheckbox:
		return "checkbox"
	case KindText:
		return "text"
	case KindParagraph:
		return "paragraph"
	case KindSliderInt:
		return "int-slider"
	case KindSliderDecimal:
		return "decimal-slider"
	case KindSliderPercent:
		return "percent-slider"
	case KindSliderVertical:
		return "vertical-slider"
	case KindSliderAngle:
		return "angle-slider"
	case KindNumberInt:
		return "int-number"
	case KindColor:
		return "color"
	case KindSelector:
		return "selector"
	case KindButton:
		return "button"
	case KindImage:
		return "image-reference"
	default:
		return "invalid"
	}
}

// KindOf returns the kind with the given canonical name, or
// KindInvalid when the name is unknown. The inverse of String.
func KindOf(name string) Kind {
	for k := KindSwitch; k <= KindImage; k++ {
		if k.String() == name {
			return k
		}
	}
	return KindInvalid
}

// Family returns the value family a kind's current value belongs to.
// Buttons have no value and map to FamilyNone.
func (k Kind) Family() Family {
	switch k {
	case KindSwitch, KindCheckbox:
		return FamilyBool
	case KindSliderInt, KindNumberInt, KindSelector:
		return FamilyInt
	case KindSliderDecimal, KindSliderPercent, KindSliderVertical, KindSliderAngle:
		return FamilyFloat
	case KindText, KindParagraph, KindImage:
		return FamilyString
	case KindColor:
		return FamilyColor
	default:
		return FamilyNone
	}
}

// FixedPrecision reports whether values of this kind persist with six
// fixed decimal places. All other numeric kinds persist as rounded
// integers.
func (k Kind) FixedPrecision() bool {
	return k == KindSliderDecimal || k == KindSliderPercent
}
