// Package panel renders the property panel for the demo host: an
// immediate-mode, single-column settings surface over a tcell screen.
//
// The panel implements props.RenderSurface. Each Frame the engine's
// RenderPass walks the visible descriptors in registration order; the
// panel draws one row per property and applies the frame's pending key
// to the row under the cursor, reporting the edit back so the engine
// commits it through the normal Set path.
package panel

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

const valueColumn = 32

// Panel is the settings surface. All methods are safe for use from
// one goroutine at a time; the demo host drives it entirely from the
// scheduler goroutine and only reads IsOpen elsewhere.
type Panel struct {
	screen tcell.Screen
	eng    *props.Engine
	assets props.AssetLoader
	log    telemetry.Logger

	open      bool
	cursor    int
	colorChan int
	pending   *props.Key

	// Pass-scoped state, valid only inside Frame.
	y       int
	item    int
	items   int
	lastCat string

	resolved map[string]bool
}

// Option configures a Panel.
type Option func(*Panel)

// WithAssets lets image rows show whether their path resolves.
func WithAssets(loader props.AssetLoader) Option {
	return func(p *Panel) { p.assets = loader }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log telemetry.Logger) Option {
	return func(p *Panel) { p.log = log }
}

// New creates a closed panel over an initialized screen.
func New(screen tcell.Screen, eng *props.Engine, opts ...Option) *Panel {
	p := &Panel{
		screen:   screen,
		eng:      eng,
		log:      telemetry.Nop(),
		resolved: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Component("panel")
	return p
}

var _ props.RenderSurface = (*Panel)(nil)

// Open shows the panel.
func (p *Panel) Open() { p.open = true }

// IsOpen reports whether the panel is showing.
func (p *Panel) IsOpen() bool { return p.open }

// Handle consumes one host key. It reports whether the key was taken;
// an unconsumed key belongs to the host (such as its quit binding).
func (p *Panel) Handle(k props.Key) bool {
	if !p.open {
		if k.Name == "insert" {
			p.open = true
			return true
		}
		return false
	}
	switch k.Name {
	case "esc", "insert":
		p.open = false
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down":
		p.cursor++
	default:
		p.pending = &k
	}
	return true
}

// Frame draws the panel, routing the pending key to the row under the
// cursor on the way.
func (p *Panel) Frame() {
	p.screen.Clear()
	width, height := p.screen.Size()

	if !p.open {
		p.drawText(2, height-1, styleDim(), "insert: properties   q: quit")
		p.pending = nil
		p.screen.Show()
		return
	}

	title := " CryVigilance "
	if p.eng.Dirty() {
		title = " CryVigilance * "
	}
	p.drawText(0, 0, tcell.StyleDefault.Reverse(true),
		title+strings.Repeat(" ", max(0, width-len(title))))

	// Clamp against this frame's row count before routing the pending
	// key, so a row hidden since last frame cannot leave the cursor on
	// a slot that now maps to a different property.
	p.clampCursor()

	p.y = 1
	p.item = 0
	p.lastCat = ""
	p.eng.RenderPass(p)
	p.items = p.item

	p.drawText(2, height-1, styleDim(),
		"↑↓ move  ←→ adjust  space toggle  a action  r reset all  esc close")
	p.pending = nil
	p.screen.Show()
}

// Property draws one value row and applies the pending key when the
// row is under the cursor.
func (p *Panel) Property(d *registry.Descriptor, v registry.Value) (bool, registry.Value) {
	y, active := p.beginRow(d)

	changed, next := false, v
	if active && p.pending != nil {
		changed, next = p.edit(d, v, *p.pending)
	}
	shown := v
	if changed {
		shown = next
	}

	p.drawName(y, active, d)
	p.drawValue(y, active, d, shown)
	return changed, next
}

// Button draws a button row and reports a press.
func (p *Panel) Button(d *registry.Descriptor) bool {
	y, active := p.beginRow(d)
	p.drawName(y, active, d)

	style := tcell.StyleDefault
	if active {
		style = style.Reverse(true)
	}
	p.drawText(valueColumn, y, style, "[ "+d.Name+" ]")

	return active && p.pending != nil &&
		(p.pending.Name == "enter" || p.pending.Rune == ' ')
}

// InlineAction draws the secondary action on its owner's row and
// reports whether 'a' fired it.
func (p *Panel) InlineAction(d *registry.Descriptor) bool {
	y := p.y - 1
	active := p.item-1 == p.cursor

	label := d.InlineLabel
	if label == "" {
		label = "action"
	}
	width, _ := p.screen.Size()
	p.drawText(width-len(label)-4, y, styleDim(), "a:["+label+"]")

	if !active || p.pending == nil {
		return false
	}
	// Tab always fires; 'a' only where it cannot collide with typing.
	return p.pending.Name == "tab" ||
		(p.pending.Rune == 'a' && d.Kind.Family() != registry.FamilyString)
}

// clampCursor bounds the cursor to the rows visible right now.
func (p *Panel) clampCursor() {
	rows := 0
	for _, d := range p.eng.Registry().All() {
		if p.eng.Visible(d.Key) {
			rows++
		}
	}
	p.items = rows
	if p.cursor >= rows {
		p.cursor = rows - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// beginRow emits the category header when it changes and claims the
// next screen line and item slot.
func (p *Panel) beginRow(d *registry.Descriptor) (y int, active bool) {
	if d.Category != p.lastCat {
		p.lastCat = d.Category
		p.drawText(1, p.y, tcell.StyleDefault.Bold(true), "▸ "+d.Category)
		p.y++
	}
	y = p.y
	p.y++
	active = p.item == p.cursor
	p.item++
	return y, active
}

func (p *Panel) drawName(y int, active bool, d *registry.Descriptor) {
	style := tcell.StyleDefault
	marker := "  "
	if active {
		style = style.Bold(true)
		marker = "❯ "
	}
	p.drawText(2, y, style, marker+d.Name)
}

func (p *Panel) drawValue(y int, active bool, d *registry.Descriptor, v registry.Value) {
	if d.Kind == registry.KindColor {
		p.drawColor(y, active, d, v)
		return
	}
	style := tcell.StyleDefault
	if active {
		style = style.Underline(true)
	}
	text, dim := p.valueText(d, v)
	if dim {
		style = styleDim()
	}
	p.drawText(valueColumn, y, style, text)
}

// valueText renders the non-color kinds. dim marks placeholder text.
func (p *Panel) valueText(d *registry.Descriptor, v registry.Value) (string, bool) {
	switch d.Kind {
	case registry.KindSwitch:
		if b, _ := v.AsBool(); b {
			return "◉ on", false
		}
		return "○ off", false
	case registry.KindCheckbox:
		if b, _ := v.AsBool(); b {
			return "[x]", false
		}
		return "[ ]", false
	case registry.KindSliderInt:
		i, _ := v.AsInt()
		return bar(float64(i), float64(d.Min), float64(d.Max)) + fmt.Sprintf(" %d", i), false
	case registry.KindNumberInt:
		i, _ := v.AsInt()
		return fmt.Sprintf("%d", i), false
	case registry.KindSliderDecimal:
		f, _ := v.AsFloat()
		return bar(f, d.MinF, d.MaxF) + fmt.Sprintf(" %.*f", d.Precision, f), false
	case registry.KindSliderPercent:
		f, _ := v.AsFloat()
		return bar(f, d.MinF, d.MaxF) + fmt.Sprintf(" %.0f%%", f*100), false
	case registry.KindSliderVertical:
		f, _ := v.AsFloat()
		return vbar(f, d.MinF, d.MaxF) + fmt.Sprintf(" %.2f", f), false
	case registry.KindSliderAngle:
		f, _ := v.AsFloat()
		return bar(f, d.MinF, d.MaxF) + fmt.Sprintf(" %.0f°", f), false
	case registry.KindSelector:
		idx, _ := v.AsInt()
		opt := "?"
		if idx >= 1 && int(idx) <= len(d.Options) {
			opt = d.Options[idx-1]
		}
		return "◂ " + opt + " ▸", false
	case registry.KindText:
		s, _ := v.AsString()
		if s == "" && d.Placeholder != "" {
			return d.Placeholder, true
		}
		if d.Protected {
			return strings.Repeat("*", len([]rune(s))), false
		}
		return s, false
	case registry.KindParagraph:
		s, _ := v.AsString()
		if line, _, more := strings.Cut(s, "\n"); more {
			return line + " …", false
		}
		return s, false
	case registry.KindImage:
		s, _ := v.AsString()
		if s == "" {
			return "(no image)", true
		}
		return s + p.assetMark(s), false
	default:
		return v.String(), false
	}
}

// drawColor renders a swatch in the row's own color with a channel
// readout; the selected channel is bracketed while the row is active.
func (p *Panel) drawColor(y int, active bool, d *registry.Descriptor, v registry.Value) {
	c, _ := v.AsColor()

	bg := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	fg := tcell.ColorBlack
	l, _, _ := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Lab()
	if l < 0.5 {
		fg = tcell.ColorWhite
	}
	p.drawText(valueColumn, y, tcell.StyleDefault.Foreground(fg).Background(bg), "  ████  ")

	channels := []struct {
		label string
		val   uint8
	}{{"A", c.A}, {"R", c.R}, {"G", c.G}, {"B", c.B}}
	x := valueColumn + 10
	for i, ch := range channels {
		if i == 0 && !d.Alpha {
			continue
		}
		text := fmt.Sprintf("%s:%d", ch.label, ch.val)
		if active && i == p.colorChan {
			text = "[" + text + "]"
		}
		p.drawText(x, y, tcell.StyleDefault, text)
		x += len(text) + 1
	}
}

// assetMark reports the loader's view of an image path.
func (p *Panel) assetMark(path string) string {
	if p.assets == nil {
		return ""
	}
	ok, seen := p.resolved[path]
	if !seen {
		a, err := p.assets.Resolve(path)
		ok = err == nil
		if ok {
			p.assets.Release(a)
		}
		p.resolved[path] = ok
	}
	if ok {
		return " ✓"
	}
	return " ✗"
}

// edit applies one key to one row's value.
func (p *Panel) edit(d *registry.Descriptor, v registry.Value, k props.Key) (bool, registry.Value) {
	// 'r' resets everything, except on text rows where it types.
	if k.Rune == 'r' && d.Kind.Family() != registry.FamilyString {
		p.eng.ResetToDefaults()
		return false, v
	}

	switch d.Kind.Family() {
	case registry.FamilyBool:
		if k.Name == "enter" || k.Rune == ' ' {
			b, _ := v.AsBool()
			return true, registry.Bool(!b)
		}
	case registry.FamilyInt:
		return p.editInt(d, v, k)
	case registry.FamilyFloat:
		return p.editFloat(d, v, k)
	case registry.FamilyString:
		return editString(v, k, d.Kind == registry.KindParagraph)
	case registry.FamilyColor:
		return p.editColor(d, v, k)
	}
	return false, v
}

func (p *Panel) editInt(d *registry.Descriptor, v registry.Value, k props.Key) (bool, registry.Value) {
	i, _ := v.AsInt()

	if d.Kind == registry.KindSelector {
		n := int64(len(d.Options))
		switch {
		case k.Name == "left":
			i--
			if i < 1 {
				i = n
			}
			return true, registry.Int(i)
		case k.Name == "right":
			i++
			if i > n {
				i = 1
			}
			return true, registry.Int(i)
		}
		return false, v
	}

	step := int64(d.Step)
	if step < 1 {
		step = 1
	}
	switch {
	case k.Name == "left" || k.Rune == '-':
		return true, d.Clamp(registry.Int(i - step))
	case k.Name == "right" || k.Rune == '+':
		return true, d.Clamp(registry.Int(i + step))
	case k.Rune >= '0' && k.Rune <= '9':
		return true, d.Clamp(registry.Int(i*10 + int64(k.Rune-'0')))
	case k.Name == "backspace":
		return true, d.Clamp(registry.Int(i / 10))
	}
	return false, v
}

func (p *Panel) editFloat(d *registry.Descriptor, v registry.Value, k props.Key) (bool, registry.Value) {
	f, _ := v.AsFloat()
	step := d.Step
	if step == 0 {
		step = 0.01
	}
	switch {
	case k.Name == "left" || k.Rune == '-':
		return true, d.Clamp(registry.Float(f - step))
	case k.Name == "right" || k.Rune == '+':
		return true, d.Clamp(registry.Float(f + step))
	}
	return false, v
}

func editString(v registry.Value, k props.Key, multiline bool) (bool, registry.Value) {
	s, _ := v.AsString()
	switch {
	case k.Name == "backspace":
		if s == "" {
			return false, v
		}
		runes := []rune(s)
		return true, registry.String(string(runes[:len(runes)-1]))
	case k.Name == "delete":
		if s == "" {
			return false, v
		}
		return true, registry.String("")
	case k.Name == "enter" && multiline:
		return true, registry.String(s + "\n")
	case k.Rune != 0:
		return true, registry.String(s + string(k.Rune))
	}
	return false, v
}

func (p *Panel) editColor(d *registry.Descriptor, v registry.Value, k props.Key) (bool, registry.Value) {
	c, _ := v.AsColor()

	lo := 0
	if !d.Alpha {
		lo = 1
	}
	switch k.Name {
	case "left":
		p.colorChan--
		if p.colorChan < lo {
			p.colorChan = 3
		}
		return false, v
	case "right":
		p.colorChan++
		if p.colorChan > 3 {
			p.colorChan = lo
		}
		return false, v
	}

	var delta int
	switch k.Rune {
	case '+':
		delta = 1
	case '-':
		delta = -1
	default:
		return false, v
	}
	ch := [4]*uint8{&c.A, &c.R, &c.G, &c.B}[p.colorChan]
	n := int(*ch) + delta
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	*ch = uint8(n)
	return true, registry.ColorOf(c)
}

func (p *Panel) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func styleDim() tcell.Style {
	return tcell.StyleDefault.Dim(true)
}

// bar renders a horizontal slider track. Rows with no declared range
// get no track, just the number.
func bar(v, lo, hi float64) string {
	const width = 12
	if hi <= lo {
		return ""
	}
	frac := (v - lo) / (hi - lo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	pos := int(frac * float64(width-1))
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			b.WriteRune('●')
		} else {
			b.WriteRune('─')
		}
	}
	return b.String()
}

// vbar renders a compact gauge for vertical sliders, which the demo
// host lays out inline like everything else.
func vbar(v, lo, hi float64) string {
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	if hi <= lo {
		return string(blocks[len(blocks)-1])
	}
	frac := (v - lo) / (hi - lo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	idx := int(frac * float64(len(blocks)-1))
	return string(blocks[idx])
}
