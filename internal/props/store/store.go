// Package store holds the current value of every registered property
// and the dirty flag that drives autosave batching.
//
// Values live in one cell per non-button property, created at Init
// from the loaded file merged over descriptor defaults. Cells are
// never destroyed; properties registered after Init read their default
// until the first Set creates their cell. All mutations flow through
// Set, which suppresses equal values, marks the store dirty, and
// dispatches to subscribers after the commit.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mizly/CryVigilance/internal/props/notify"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// ErrNotSettable indicates a Set on a property that carries no value,
// such as a button.
var ErrNotSettable = errors.New("property carries no value")

// Store is the value store.
type Store struct {
	mu       sync.Mutex
	reg      *registry.Registry
	notifier *notify.Notifier
	values   map[string]registry.Value
	dirty    bool
	log      telemetry.Logger
	metrics  *telemetry.Metrics
}

// New creates a store over a registry. The metrics may be nil.
func New(reg *registry.Registry, notifier *notify.Notifier, log telemetry.Logger, metrics *telemetry.Metrics) *Store {
	return &Store{
		reg:      reg,
		notifier: notifier,
		values:   make(map[string]registry.Value),
		log:      log.Component("store"),
		metrics:  metrics,
	}
}

// Init creates the value cells from loaded values merged over
// defaults, then dispatches each initial value to its subscribers
// unless the descriptor opts out. Buttons get no cell and no dispatch.
// Init does not mark the store dirty.
func (s *Store) Init(loaded map[string]registry.Value) {
	type initial struct {
		key string
		v   registry.Value
	}
	var dispatch []initial

	s.mu.Lock()
	for _, d := range s.reg.All() {
		if d.Kind == registry.KindButton {
			continue
		}
		v, ok := loaded[d.Key]
		if !ok {
			v = d.Default
		}
		s.values[d.Key] = v
		if !d.SkipInitNotify {
			dispatch = append(dispatch, initial{key: d.Key, v: v})
		}
	}
	s.mu.Unlock()

	for _, in := range dispatch {
		s.notifier.NotifyInitial(in.key, in.v)
	}
}

// Get returns the current value for a key. ok is false only when the
// key is not registered. Buttons and never-set late registrations
// yield their unset/default value with ok true.
func (s *Store) Get(key string) (registry.Value, bool) {
	d := s.reg.Get(key)
	if d == nil {
		return registry.Value{}, false
	}
	if d.Kind == registry.KindButton {
		return registry.Value{}, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v, true
	}
	return d.Default, true
}

// Set updates a property value. Unknown keys and buttons are errors;
// a value equal to the current one is a silent no-op that neither
// marks dirty nor notifies. An accepted mutation commits before its
// subscribers run, so a failing subscriber cannot roll it back.
func (s *Store) Set(key string, v registry.Value) error {
	d := s.reg.Get(key)
	if d == nil {
		return fmt.Errorf("%w: %s", registry.ErrNotFound, key)
	}
	if d.Kind == registry.KindButton {
		return fmt.Errorf("%w: %s", ErrNotSettable, key)
	}
	coerced, err := v.Coerce(d.Kind)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.mu.Lock()
	old, had := s.values[key]
	if !had {
		old = d.Default
	}
	if coerced.Equal(old) {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = coerced
	s.dirty = true
	s.mu.Unlock()

	s.log.WithKey(key).Debugf("%s -> %s", old, coerced)
	s.metrics.RecordChange(d.Category)
	s.notifier.NotifySet(key, old, coerced)
	return nil
}

// ResetToDefaults walks every non-button property in registration
// order and sets it back to its declared default through the normal
// Set path, so subscribers fire only for values that actually change.
func (s *Store) ResetToDefaults() {
	for _, d := range s.reg.All() {
		if d.Kind == registry.KindButton {
			continue
		}
		if err := s.Set(d.Key, d.Default); err != nil {
			s.log.WithKey(d.Key).WithError(err).Warn("reset failed")
		}
	}
}

// Snapshot returns the full current state: one entry per non-button
// property, falling back to the default for cells never created.
func (s *Store) Snapshot() map[string]registry.Value {
	descs := s.reg.All()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]registry.Value, len(descs))
	for _, d := range descs {
		if d.Kind == registry.KindButton {
			continue
		}
		if v, ok := s.values[d.Key]; ok {
			snap[d.Key] = v
		} else {
			snap[d.Key] = d.Default
		}
	}
	return snap
}

// Dirty reports whether mutations await a flush.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ClearDirty marks the store flushed. Called only after a successful
// save; a failed save keeps the flag so the next tick retries.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// MarkDirty forces a flush on the next tick.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}
