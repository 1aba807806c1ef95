// Package autosave batches store flushes onto an external tick.
//
// The scheduler keeps no clock of its own. The host drives it with
// periodic Tick calls; any burst of mutations inside one tick window
// coalesces into at most one disk write on the next tick.
package autosave

import (
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Writer persists a full value snapshot.
type Writer func(map[string]registry.Value) error

// Source exposes the store state the scheduler needs.
type Source interface {
	Dirty() bool
	ClearDirty()
	Snapshot() map[string]registry.Value
}

// Scheduler flushes a Source through a Writer when dirty.
type Scheduler struct {
	source  Source
	write   Writer
	log     telemetry.Logger
	metrics *telemetry.Metrics
}

// New creates a scheduler. The metrics may be nil.
func New(source Source, write Writer, log telemetry.Logger, metrics *telemetry.Metrics) *Scheduler {
	return &Scheduler{
		source:  source,
		write:   write,
		log:     log.Component("autosave"),
		metrics: metrics,
	}
}

// Tick flushes the store if it is dirty. A write failure is logged and
// leaves the dirty flag set, so the next tick retries; it never
// propagates to the host.
func (s *Scheduler) Tick() {
	if !s.source.Dirty() {
		return
	}
	_ = s.flush()
}

// Flush writes the snapshot regardless of the dirty flag, clearing it
// on success. This is the forced-save path.
func (s *Scheduler) Flush() error {
	return s.flush()
}

func (s *Scheduler) flush() error {
	if err := s.write(s.source.Snapshot()); err != nil {
		s.log.WithError(err).Error("flush failed")
		s.metrics.RecordFlush(false)
		return err
	}
	s.source.ClearDirty()
	s.metrics.RecordFlush(true)
	return nil
}
