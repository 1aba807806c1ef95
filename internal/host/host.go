// Package host provides the HostScheduler implementation used by the
// demo host: a single goroutine that fires the periodic tick and
// forwards posted key events, in order, one at a time.
package host

import (
	"errors"
	"sync"
	"time"

	"github.com/mizly/CryVigilance/internal/props"
)

// ErrStarted indicates a second Start call.
var ErrStarted = errors.New("scheduler already started")

// DefaultInterval is the tick period used when none is given.
const DefaultInterval = 250 * time.Millisecond

// Scheduler implements props.HostScheduler over a time.Ticker. Both
// callbacks run on the scheduler's goroutine, so consumers that are
// not otherwise synchronized may treat tick and key handling as one
// serialized stream.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	tick     func()
	key      func(props.Key)
	keys     chan props.Key
	done     chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopped  bool
}

var _ props.HostScheduler = (*Scheduler)(nil)

// New creates a stopped scheduler. A non-positive interval falls back
// to DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		keys:     make(chan props.Key, 64),
		done:     make(chan struct{}),
	}
}

// OnTick sets the periodic tick callback. Set before Start.
func (s *Scheduler) OnTick(fn func()) {
	s.mu.Lock()
	s.tick = fn
	s.mu.Unlock()
}

// OnKey sets the key event callback. Set before Start.
func (s *Scheduler) OnKey(fn func(props.Key)) {
	s.mu.Lock()
	s.key = fn
	s.mu.Unlock()
}

// PostKey enqueues a key event from any goroutine. Events past the
// buffer are dropped rather than blocking the poster.
func (s *Scheduler) PostKey(k props.Key) {
	select {
	case s.keys <- k:
	default:
	}
}

// Start launches the scheduler goroutine.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.started = true
	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop halts the scheduler and waits for the goroutine to exit. Safe
// to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case k := <-s.keys:
			s.mu.Lock()
			fn := s.key
			s.mu.Unlock()
			if fn != nil {
				fn(k)
			}
		case <-ticker.C:
			s.mu.Lock()
			fn := s.tick
			s.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}
