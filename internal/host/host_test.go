package host

import (
	"sync"
	"testing"
	"time"

	"github.com/mizly/CryVigilance/internal/props"
)

func TestSchedulerTicks(t *testing.T) {
	s := New(5 * time.Millisecond)
	defer s.Stop()

	ticked := make(chan struct{}, 8)
	s.OnTick(func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("tick never fired")
	}
}

func TestSchedulerForwardsKeysInOrder(t *testing.T) {
	s := New(time.Hour)
	defer s.Stop()

	var mu sync.Mutex
	var got []rune
	done := make(chan struct{})
	s.OnKey(func(k props.Key) {
		mu.Lock()
		got = append(got, k.Rune)
		n := len(got)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, r := range "abc" {
		s.PostKey(props.Key{Rune: r})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("keys never delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	if string(got) != "abc" {
		t.Errorf("key order = %q, want %q", string(got), "abc")
	}
}

func TestSchedulerDoubleStart(t *testing.T) {
	s := New(time.Hour)
	defer s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := s.Start(); err != ErrStarted {
		t.Errorf("second Start = %v, want ErrStarted", err)
	}
}

func TestSchedulerStopTwice(t *testing.T) {
	s := New(time.Millisecond)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop()
}
