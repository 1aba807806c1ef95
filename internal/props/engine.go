package props

import (
	"fmt"
	"sync"

	"github.com/mizly/CryVigilance/internal/props/autosave"
	"github.com/mizly/CryVigilance/internal/props/depgraph"
	"github.com/mizly/CryVigilance/internal/props/notify"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/props/store"
	"github.com/mizly/CryVigilance/internal/props/storefile"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Engine provides unified access to the CryVigilance property system.
// It wires the registry, value store, dependency graph, change
// dispatcher, and autosave scheduler behind one surface.
//
// Lifecycle: register properties, subscriptions, and dependencies
// first; Initialize once to load persisted state and dispatch the
// restored values; mutate and tick until Destroy. Properties may also
// be registered after Initialize (they read their default until first
// set), but a second Initialize is an error.
type Engine struct {
	mu sync.Mutex

	// Descriptor registry
	reg *registry.Registry

	// Current values and the dirty flag
	values *store.Store

	// Change dispatcher
	notifier *notify.Notifier

	// Visibility dependencies
	deps *depgraph.Graph

	// Tick-driven batched persistence
	saver *autosave.Scheduler

	// Collaborators
	bus    SignalBus
	assets AssetLoader
	onOpen func(OpenRequest)

	// Options
	storePath string
	envPrefix string
	name      string

	log     telemetry.Logger
	metrics *telemetry.Metrics

	initialized bool
	destroyed   bool
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:  telemetry.Nop(),
		name: "cryvigilance",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.storePath == "" {
		e.storePath = DefaultStorePath()
	}

	root := e.log
	e.reg = registry.New()
	e.notifier = notify.New(root, e.metrics)
	e.values = store.New(e.reg, e.notifier, root, e.metrics)
	e.deps = depgraph.New()
	e.saver = autosave.New(e.values, e.writeSnapshot, root, e.metrics)
	e.log = root.Component("engine")
	return e
}

// writeSnapshot is the autosave writer.
func (e *Engine) writeSnapshot(snapshot map[string]registry.Value) error {
	return storefile.Save(e.storePath, e.reg, snapshot)
}

// Register adds a property definition. The returned descriptor is the
// registry's own canonical copy.
func (e *Engine) Register(desc registry.Descriptor) (*registry.Descriptor, error) {
	return e.reg.Register(desc)
}

// MustRegister adds a property definition and panics on a validation
// error. Registration errors are setup bugs, not runtime conditions.
func (e *Engine) MustRegister(desc registry.Descriptor) *registry.Descriptor {
	return e.reg.MustRegister(desc)
}

// Registry exposes the descriptor registry for read access and the
// Hidden flag. The registry is safe for concurrent use.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// OnChange registers a handler for one property's changes. Handlers
// run synchronously in registration order; a panic in one is logged
// and does not reach the others.
func (e *Engine) OnChange(key string, fn notify.Handler) *notify.Subscription {
	return e.notifier.Subscribe(key, fn)
}

// OnAnyChange registers a handler for every property change.
func (e *Engine) OnAnyChange(fn notify.Handler) *notify.Subscription {
	return e.notifier.SubscribeAll(fn)
}

// OnOpenRequest registers the handler invoked when another instance
// asks this one to open its panel. Only one handler is kept.
func (e *Engine) OnOpenRequest(fn func(OpenRequest)) {
	e.mu.Lock()
	e.onOpen = fn
	e.mu.Unlock()
}

// AddDependency makes dependent's visibility conditional on
// prerequisite's current value being truthy. Edges are single hop:
// a prerequisite's own prerequisites are not consulted.
func (e *Engine) AddDependency(dependent, prerequisite string) error {
	return e.deps.Add(dependent, prerequisite)
}

// Initialize loads persisted values, applies environment overrides,
// seeds the value store, dispatches the restored state, and announces
// this instance on the signal bus. It runs once; a second call fails.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	if e.initialized {
		e.mu.Unlock()
		return ErrAlreadyInitialized
	}
	e.initialized = true
	e.mu.Unlock()

	loaded, stats, err := storefile.Load(e.storePath, e.reg)
	if err != nil {
		// A read error keeps whatever decoded before it; anything past
		// the failure degrades to defaults and the next save rewrites
		// the file.
		e.log.WithPath(e.storePath).WithError(err).Warn("store file partially read")
	}
	if loaded == nil {
		loaded = map[string]registry.Value{}
	}
	if n := stats.Skipped(); n > 0 {
		e.log.WithPath(e.storePath).Warnf("skipped %d store line(s): %d unknown, %d undecodable, %d malformed",
			n, stats.UnknownKeys, stats.BadValues, stats.Malformed)
		e.metrics.AddSkippedLines(n)
	}

	if e.envPrefix != "" {
		if n := applyEnvOverrides(e.envPrefix, e.reg, loaded, e.log); n > 0 {
			e.log.Debugf("applied %d environment override(s)", n)
		}
	}

	e.values.Init(loaded)
	e.log.WithPath(e.storePath).Infof("initialized %d properties, %d restored", e.reg.Len(), stats.Applied)

	if e.bus != nil {
		if err := e.bus.Announce(e.name); err != nil {
			e.log.WithError(err).Warn("signal announce failed")
		}
	}
	return nil
}

// Get returns the current value for a key. ok is false only when the
// key is not registered.
func (e *Engine) Get(key string) (registry.Value, bool) {
	return e.values.Get(key)
}

// GetBool returns a boolean property's current value.
func (e *Engine) GetBool(key string) (bool, error) {
	v, ok := e.values.Get(key)
	if !ok {
		return false, fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	b, ok := v.AsBool()
	if !ok {
		return false, &registry.TypeError{Want: registry.FamilyBool, Got: v.Family()}
	}
	return b, nil
}

// GetInt returns an integer property's current value.
func (e *Engine) GetInt(key string) (int64, error) {
	v, ok := e.values.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, &registry.TypeError{Want: registry.FamilyInt, Got: v.Family()}
	}
	return i, nil
}

// GetFloat returns a float property's current value.
func (e *Engine) GetFloat(key string) (float64, error) {
	v, ok := e.values.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, &registry.TypeError{Want: registry.FamilyFloat, Got: v.Family()}
	}
	return f, nil
}

// GetString returns a string property's current value.
func (e *Engine) GetString(key string) (string, error) {
	v, ok := e.values.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	s, ok := v.AsString()
	if !ok {
		return "", &registry.TypeError{Want: registry.FamilyString, Got: v.Family()}
	}
	return s, nil
}

// GetColor returns a color property's current value.
func (e *Engine) GetColor(key string) (registry.Color, error) {
	v, ok := e.values.Get(key)
	if !ok {
		return registry.Color{}, fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	c, ok := v.AsColor()
	if !ok {
		return registry.Color{}, &registry.TypeError{Want: registry.FamilyColor, Got: v.Family()}
	}
	return c, nil
}

// Set updates a property value through the uniform mutation path:
// coerced to the property's family, suppressed when equal to the
// current value, committed, marked dirty, and dispatched.
func (e *Engine) Set(key string, v registry.Value) error {
	return e.values.Set(key, v)
}

// SetBool sets a boolean property.
func (e *Engine) SetBool(key string, v bool) error {
	return e.values.Set(key, registry.Bool(v))
}

// SetInt sets an integer property.
func (e *Engine) SetInt(key string, v int64) error {
	return e.values.Set(key, registry.Int(v))
}

// SetFloat sets a float property.
func (e *Engine) SetFloat(key string, v float64) error {
	return e.values.Set(key, registry.Float(v))
}

// SetString sets a string property.
func (e *Engine) SetString(key string, v string) error {
	return e.values.Set(key, registry.String(v))
}

// SetColor sets a color property.
func (e *Engine) SetColor(key string, c registry.Color) error {
	return e.values.Set(key, registry.ColorOf(c))
}

// ResetToDefaults restores every non-button property to its declared
// default. Subscribers fire only for values that actually change.
func (e *Engine) ResetToDefaults() {
	e.values.ResetToDefaults()
}

// Snapshot returns the full current state: one entry per non-button
// property.
func (e *Engine) Snapshot() map[string]registry.Value {
	return e.values.Snapshot()
}

// Dirty reports whether mutations await a flush.
func (e *Engine) Dirty() bool {
	return e.values.Dirty()
}

// StorePath returns the persisted store-file path.
func (e *Engine) StorePath() string {
	return e.storePath
}

// Save writes the store file now, regardless of the dirty flag.
func (e *Engine) Save() error {
	return e.saver.Flush()
}

// Tick is the host's periodic callback. It polls the signal inbox for
// open requests, then lets autosave flush if mutations are pending.
// Polling runs first so the flush observes state as of the tick's end.
func (e *Engine) Tick() {
	if e.bus != nil {
		if req, ok := e.bus.Poll(); ok {
			e.handleOpenRequest(req)
		}
	}
	e.saver.Tick()
}

// handleOpenRequest forwards a polled request to the registered
// handler under the usual recover discipline.
func (e *Engine) handleOpenRequest(req OpenRequest) {
	e.log.Infof("open requested by %s", req.Sender)

	e.mu.Lock()
	fn := e.onOpen
	e.mu.Unlock()
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("open handler panic: %v", r)
		}
	}()
	fn(req)
}

// Visible reports whether a property may be shown: the key is
// registered, not hidden, and its prerequisite (if any) holds a truthy
// value.
func (e *Engine) Visible(key string) bool {
	d := e.reg.Get(key)
	if d == nil {
		return false
	}
	return e.deps.Visible(d, e.lookup)
}

// lookup is the dependency graph's view of current values.
func (e *Engine) lookup(key string) registry.Value {
	v, _ := e.values.Get(key)
	return v
}

// RenderPass walks every visible property in registration order and
// lets the surface draw it. Edits the surface reports are applied
// through the normal Set path; button presses and inline actions run
// under the dispatcher's recover discipline, so a failing action never
// aborts the pass.
func (e *Engine) RenderPass(surface RenderSurface) {
	for _, d := range e.reg.All() {
		if !e.deps.Visible(d, e.lookup) {
			continue
		}
		if d.Kind == registry.KindButton {
			if surface.Button(d) {
				e.notifier.Invoke(d.Key, d.Action)
			}
		} else {
			cur, _ := e.values.Get(d.Key)
			if changed, next := surface.Property(d, cur); changed {
				if err := e.values.Set(d.Key, next); err != nil {
					e.log.WithKey(d.Key).WithError(err).Warn("edit rejected")
				}
			}
		}
		if d.InlineAction != nil && surface.InlineAction(d) {
			e.notifier.Invoke(d.Key, d.InlineAction)
		}
	}
}

// PressButton fires a button property's action.
func (e *Engine) PressButton(key string) error {
	d := e.reg.Get(key)
	if d == nil {
		return fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	if d.Kind != registry.KindButton {
		return fmt.Errorf("%w: %s", ErrNotButton, key)
	}
	e.notifier.Invoke(key, d.Action)
	return nil
}

// PressInline fires a property's secondary inline action.
func (e *Engine) PressInline(key string) error {
	d := e.reg.Get(key)
	if d == nil {
		return fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	if d.InlineAction == nil {
		return fmt.Errorf("%w: %s", ErrNoInlineAction, key)
	}
	e.notifier.Invoke(key, d.InlineAction)
	return nil
}

// Destroy flushes unsaved changes, withdraws the bus announcement,
// releases loader-held assets, and closes the dispatcher. Safe to call
// more than once; the engine is unusable afterward.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.mu.Unlock()

	if e.values.Dirty() {
		if err := e.saver.Flush(); err != nil {
			e.log.WithError(err).Error("final flush failed")
		}
	}
	if e.bus != nil {
		e.bus.Retract()
	}
	if e.assets != nil {
		e.assets.ReleaseAll()
	}
	e.notifier.Close()
	e.log.Info("engine destroyed")
}
