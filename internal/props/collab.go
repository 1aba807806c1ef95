package props

import (
	"github.com/google/uuid"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

// RenderSurface draws property rows during a render pass. The engine
// walks every visible descriptor in registration order and calls one
// method per row; the surface reports edits back and the engine applies
// them through the normal mutation path.
type RenderSurface interface {
	// Property draws one value-carrying row. It returns true and the
	// replacement value when the user edited the row this frame.
	Property(d *registry.Descriptor, v registry.Value) (bool, registry.Value)

	// Button draws a button row and reports whether it was pressed.
	Button(d *registry.Descriptor) bool

	// InlineAction draws the secondary action of a row that declares
	// one and reports whether it fired.
	InlineAction(d *registry.Descriptor) bool
}

// Key is a host key event forwarded through a HostScheduler.
type Key struct {
	// Name is the host's name for the key, such as "insert" or "esc".
	Name string

	// Rune is the printable rune, when the key carries one.
	Rune rune
}

// HostScheduler supplies the periodic tick that drives autosave and
// signal polling, and forwards host key presses. Implementations run
// both callbacks from a single goroutine.
type HostScheduler interface {
	OnTick(fn func())
	OnKey(fn func(Key))
	Start() error
	Stop()
}

// Asset is an opaque handle to a resolved image or video resource.
type Asset interface {
	// Path returns the source path the asset was resolved from.
	Path() string
}

// AssetLoader resolves image-reference paths to drawable assets. The
// loader owns the asset lifecycle; the engine only asks it to release
// everything on Destroy.
type AssetLoader interface {
	Resolve(path string) (Asset, error)
	Release(a Asset)
	ReleaseAll()
}

// OpenRequest asks this instance to open its panel. Requests originate
// from another running instance through the signal bus.
type OpenRequest struct {
	// ID uniquely identifies the request.
	ID uuid.UUID

	// Sender is the announced name of the requesting instance.
	Sender string
}

// SignalBus connects independent engine instances through a shared
// outbox/inbox. Announce publishes this instance under a name,
// RequestOpen asks another instance to open its panel, Poll consumes a
// pending request addressed to this instance, and Retract withdraws
// the announcement. The bus lives strictly outside the engine's state
// and is injected through WithSignalBus.
type SignalBus interface {
	Announce(name string) error
	RequestOpen(target string) error
	Poll() (OpenRequest, bool)
	Retract()
}
