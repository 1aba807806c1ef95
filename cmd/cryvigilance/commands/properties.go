package commands

import (
	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

// registerBuiltins declares the host's property set. It exercises
// every kind the engine supports, so the shell commands and the panel
// have something real to operate on.
func registerBuiltins(eng *props.Engine) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.enabled",
		Kind:        registry.KindSwitch,
		Name:        "Enabled",
		Description: "Master switch for the overlay.",
		Category:    "Overlay",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.opacity",
		Kind:        registry.KindSliderPercent,
		Name:        "Opacity",
		Description: "Overlay opacity.",
		Category:    "Overlay",
		Default:     registry.Float(0.85),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.scale",
		Kind:        registry.KindSliderDecimal,
		Name:        "Scale",
		Description: "Render scale factor.",
		Category:    "Overlay",
		MinF:        0.5,
		MaxF:        3,
		Default:     registry.Float(1),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.rotation",
		Kind:        registry.KindSliderAngle,
		Name:        "Rotation",
		Description: "Overlay rotation in degrees.",
		Category:    "Overlay",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.fps",
		Kind:        registry.KindSliderInt,
		Name:        "Frame limit",
		Description: "Redraw rate cap.",
		Category:    "Overlay",
		Subcategory: "Performance",
		Min:         1,
		Max:         240,
		Default:     registry.Int(60),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.margin",
		Kind:        registry.KindNumberInt,
		Name:        "Margin",
		Description: "Edge margin in pixels.",
		Category:    "Overlay",
		Subcategory: "Layout",
		Default:     registry.Int(16),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.position",
		Kind:        registry.KindSelector,
		Name:        "Position",
		Description: "Screen corner the overlay anchors to.",
		Category:    "Overlay",
		Subcategory: "Layout",
		Options:     []string{"top-left", "top-right", "bottom-left", "bottom-right"},
	})
	eng.MustRegister(registry.Descriptor{
		Key:          "overlay.title",
		Kind:         registry.KindText,
		Name:         "Title",
		Description:  "Caption shown in the overlay header.",
		Category:     "Overlay",
		Placeholder:  "untitled",
		InlineLabel:  "clear",
		InlineAction: func() error { return eng.SetString("overlay.title", "") },
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.notes",
		Kind:        registry.KindParagraph,
		Name:        "Notes",
		Description: "Free-form notes.",
		Category:    "Overlay",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.accent",
		Kind:        registry.KindColor,
		Name:        "Accent color",
		Description: "Accent color of overlay chrome.",
		Category:    "Overlay",
		Subcategory: "Appearance",
		Alpha:       true,
		Default:     registry.RGBA(255, 92, 184, 255),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "overlay.background",
		Kind:        registry.KindImage,
		Name:        "Background",
		Description: "Background image or video path.",
		Category:    "Overlay",
		Subcategory: "Appearance",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "account.token",
		Kind:        registry.KindText,
		Name:        "API token",
		Description: "Token for the host's upstream service.",
		Category:    "Account",
		Protected:   true,
		Placeholder: "paste token",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "gauges.enabled",
		Kind:        registry.KindCheckbox,
		Name:        "Show gauges",
		Description: "Show the gauge cluster.",
		Category:    "Gauges",
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "gauges.level",
		Kind:        registry.KindSliderVertical,
		Name:        "Gauge level",
		Description: "Fill level of the main gauge.",
		Category:    "Gauges",
		MinF:        0,
		MaxF:        1,
		Default:     registry.Float(0.5),
	})
	eng.MustRegister(registry.Descriptor{
		Key:         "general.reset",
		Kind:        registry.KindButton,
		Name:        "Reset to defaults",
		Description: "Restores every property to its declared default.",
		Category:    "General",
		Action: func() error {
			eng.ResetToDefaults()
			return nil
		},
	})

	for _, dep := range [][2]string{
		{"overlay.opacity", "overlay.enabled"},
		{"overlay.scale", "overlay.enabled"},
		{"overlay.rotation", "overlay.enabled"},
		{"gauges.level", "gauges.enabled"},
	} {
		if err := eng.AddDependency(dep[0], dep[1]); err != nil {
			return err
		}
	}
	return nil
}
