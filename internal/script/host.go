package script

import (
	"errors"
	"sync"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/props/notify"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Category is the registry category holding script toggles.
const Category = "Scripts"

// Host maps discovered scripts to switch properties and runs each
// script while its switch is on. It is an ordinary consumer of the
// engine's public surface: toggles flow through the normal Set path,
// so persisted toggle state restarts scripts on the next launch.
type Host struct {
	mu      sync.Mutex
	dir     string
	eng     *props.Engine
	log     telemetry.Logger
	metrics *telemetry.Metrics
	paths   map[string]string
	running map[string]*runner
	subs    []*notify.Subscription
	closed  bool
}

// NewHost creates a host over a script directory. The metrics may be
// nil.
func NewHost(dir string, eng *props.Engine, log telemetry.Logger, metrics *telemetry.Metrics) *Host {
	return &Host{
		dir:     dir,
		eng:     eng,
		log:     log.Component("script"),
		metrics: metrics,
		paths:   make(map[string]string),
		running: make(map[string]*runner),
	}
}

// Dir returns the watched script directory.
func (h *Host) Dir() string { return h.dir }

// Scan discovers the directory's scripts and registers a toggle for
// each new one. Call once before engine initialization so restored
// toggle states start their scripts during the initial dispatch; the
// watcher calls it again as files appear.
func (h *Host) Scan() error {
	infos, err := Discover(h.dir)
	if err != nil {
		return err
	}
	for _, info := range infos {
		h.adopt(info)
	}
	return nil
}

// adopt registers or unhides the toggle for one script.
func (h *Host) adopt(info Info) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	_, known := h.paths[info.Name]
	h.paths[info.Name] = info.Path
	h.mu.Unlock()

	key := Key(info.Name)
	if known {
		// A file that came back after removal keeps its toggle;
		// only the Hidden flag changes.
		if err := h.eng.Registry().SetHidden(key, false); err != nil {
			h.log.WithKey(key).WithError(err).Warn("unhide failed")
		}
		return
	}

	name := info.Name
	_, err := h.eng.Register(registry.Descriptor{
		Key:         key,
		Kind:        registry.KindSwitch,
		Name:        name,
		Description: "Runs " + info.Path + " while enabled.",
		Category:    Category,
	})
	if err != nil && !errors.Is(err, registry.ErrDuplicateKey) {
		h.log.WithKey(key).WithError(err).Error("toggle registration failed")
		return
	}

	sub := h.eng.OnChange(key, func(c notify.Change) {
		if c.New.Truthy() {
			h.start(name)
		} else {
			h.stop(name)
		}
	})
	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	h.log.WithKey(key).Debugf("adopted %s", info.Path)
}

// start runs a script. A failing script is logged and its switch
// flipped back off; the failure never leaves this method.
func (h *Host) start(name string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if _, up := h.running[name]; up {
		h.mu.Unlock()
		return
	}
	path := h.paths[name]
	r := newRunner(name, path, h.eng, h.log)
	h.running[name] = r
	h.mu.Unlock()

	h.metrics.ScriptStarted()
	if err := r.Run(); err != nil {
		h.log.WithKey(Key(name)).WithError(err).Error("script failed")
		h.stop(name)
		if serr := h.eng.SetBool(Key(name), false); serr != nil {
			h.log.WithKey(Key(name)).WithError(serr).Warn("toggle revert failed")
		}
	}
}

// stop closes a script's runner if it is up.
func (h *Host) stop(name string) {
	h.mu.Lock()
	r := h.running[name]
	delete(h.running, name)
	h.mu.Unlock()

	if r == nil {
		return
	}
	r.Close()
	h.metrics.ScriptStopped()
	h.log.WithKey(Key(name)).Debug("stopped")
}

// Drop reacts to a removed script file: the script stops and its
// toggle goes hidden and off. The registry entry stays; the toggle
// returns unhidden if the file does.
func (h *Host) Drop(name string) {
	key := Key(name)
	h.mu.Lock()
	_, known := h.paths[name]
	h.mu.Unlock()
	if !known {
		return
	}

	h.stop(name)
	if err := h.eng.Registry().SetHidden(key, true); err != nil {
		h.log.WithKey(key).WithError(err).Warn("hide failed")
	}
	if err := h.eng.SetBool(key, false); err != nil {
		h.log.WithKey(key).WithError(err).Warn("toggle off failed")
	}
}

// Running reports whether a script is currently up.
func (h *Host) Running(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, up := h.running[name]
	return up
}

// Close stops every running script and drops the change
// subscriptions. The host is unusable afterward.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	running := h.running
	h.running = make(map[string]*runner)
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	for range running {
		h.metrics.ScriptStopped()
	}
	for _, r := range running {
		r.Close()
	}
}
