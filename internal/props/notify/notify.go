// Package notify dispatches property change events to subscribers.
//
// Handlers register per key or globally and are invoked synchronously
// in registration order: key handlers first, then global handlers. A
// panic inside one handler is recovered and logged with the offending
// key; it never stops delivery to the remaining handlers and never
// rolls back the mutation that produced the event.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Change describes one accepted property mutation.
type Change struct {
	// ID uniquely identifies the event.
	ID uuid.UUID

	// Key is the property key.
	Key string

	// Old is the value before the mutation. Unset on the initial
	// dispatch.
	Old registry.Value

	// New is the value after the mutation.
	New registry.Value

	// Initial marks the one-time dispatch of restored state during
	// engine initialization.
	Initial bool

	// Time is when the mutation committed.
	Time time.Time
}

// Handler consumes change events.
type Handler func(Change)

type entry struct {
	id uint64
	fn Handler
}

// Subscription identifies an active handler registration.
type Subscription struct {
	id       uint64
	key      string
	global   bool
	notifier *Notifier
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s)
	}
}

// Notifier manages ordered per-key and global subscriptions.
type Notifier struct {
	mu      sync.RWMutex
	nextID  uint64
	byKey   map[string][]entry
	global  []entry
	closed  bool
	log     telemetry.Logger
	metrics *telemetry.Metrics
}

// New creates a Notifier. The metrics may be nil.
func New(log telemetry.Logger, metrics *telemetry.Metrics) *Notifier {
	return &Notifier{
		byKey:   make(map[string][]entry),
		log:     log.Component("notify"),
		metrics: metrics,
	}
}

// Subscribe registers a handler for one key's changes.
func (n *Notifier) Subscribe(key string, fn Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.byKey[key] = append(n.byKey[key], entry{id: id, fn: fn})
	return &Subscription{id: id, key: key, notifier: n}
}

// SubscribeAll registers a handler for every change.
func (n *Notifier) SubscribeAll(fn Handler) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global = append(n.global, entry{id: id, fn: fn})
	return &Subscription{id: id, global: true, notifier: n}
}

// NotifySet delivers a mutation event.
func (n *Notifier) NotifySet(key string, old, new registry.Value) {
	n.deliver(Change{
		ID:   uuid.New(),
		Key:  key,
		Old:  old,
		New:  new,
		Time: time.Now(),
	})
}

// NotifyInitial delivers the one-time initialization event for a key.
func (n *Notifier) NotifyInitial(key string, v registry.Value) {
	n.deliver(Change{
		ID:      uuid.New(),
		Key:     key,
		New:     v,
		Initial: true,
		Time:    time.Now(),
	})
}

// Invoke runs a button action or inline action under the same
// recover-and-log discipline as change handlers. A nil action is a
// no-op, and nothing runs after Close.
func (n *Notifier) Invoke(key string, action func() error) {
	if action == nil {
		return
	}
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			n.log.WithKey(key).Errorf("action panic: %v", r)
			n.metrics.RecordNotifyFault()
		}
	}()
	if err := action(); err != nil {
		n.log.WithKey(key).WithError(err).Error("action failed")
		n.metrics.RecordNotifyFault()
	}
}

// Close stops delivery. Safe to call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *Notifier) unsubscribe(s *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s.global {
		n.global = remove(n.global, s.id)
		return
	}
	entries := remove(n.byKey[s.key], s.id)
	if len(entries) == 0 {
		delete(n.byKey, s.key)
	} else {
		n.byKey[s.key] = entries
	}
}

func remove(entries []entry, id uint64) []entry {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}

// deliver invokes the key's handlers, then the global handlers, each
// isolated from the others' panics. Handlers run outside the lock.
func (n *Notifier) deliver(c Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	targets := make([]entry, 0, len(n.byKey[c.Key])+len(n.global))
	targets = append(targets, n.byKey[c.Key]...)
	targets = append(targets, n.global...)
	n.mu.RUnlock()

	for _, e := range targets {
		n.safeInvoke(c, e.fn)
	}
}

func (n *Notifier) safeInvoke(c Change, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			n.log.WithKey(c.Key).Errorf("subscriber panic: %v", r)
			n.metrics.RecordNotifyFault()
		}
	}()
	fn(c)
}
