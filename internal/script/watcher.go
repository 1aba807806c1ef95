package script

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Watcher follows the script directory with fsnotify: a created
// script file gains a toggle, a removed one stops and hides its
// toggle. Non-script files are ignored.
type Watcher struct {
	fsw  *fsnotify.Watcher
	host *Host
	log  telemetry.Logger
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher starts watching the host's directory. The directory must
// exist.
func NewWatcher(host *Host, log telemetry.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(host.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:  fsw,
		host: host,
		log:  log.Component("script").WithPath(host.Dir()),
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		case <-w.done:
			return
		}
	}
}

// handle maps one filesystem event onto the host. Renames count as
// removal; the create event for the new name arrives separately.
func (w *Watcher) handle(ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	if !strings.HasSuffix(base, scriptExt) || strings.HasPrefix(base, ".") {
		return
	}
	stem := strings.TrimSuffix(base, scriptExt)

	switch {
	case ev.Op.Has(fsnotify.Create):
		w.host.adopt(Info{Name: stem, Path: ev.Name})
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.host.Drop(stem)
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.done)
		w.fsw.Close()
		w.wg.Wait()
	})
}
