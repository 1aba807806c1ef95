package notify

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

func newTestNotifier() *Notifier {
	return New(telemetry.Nop(), nil)
}

func TestNotifier_DeliversToKey(t *testing.T) {
	n := newTestNotifier()

	var got []Change
	n.Subscribe("a", func(c Change) { got = append(got, c) })
	n.Subscribe("b", func(c Change) { t.Error("wrong key delivered") })

	n.NotifySet("a", registry.Bool(false), registry.Bool(true))

	if len(got) != 1 {
		t.Fatalf("delivered %d changes, want 1", len(got))
	}
	c := got[0]
	if c.Key != "a" {
		t.Errorf("Key = %s, want a", c.Key)
	}
	if v, _ := c.Old.AsBool(); v {
		t.Error("Old should be false")
	}
	if v, _ := c.New.AsBool(); !v {
		t.Error("New should be true")
	}
	if c.Initial {
		t.Error("Initial should be false for a set")
	}
	if c.ID == uuid.Nil {
		t.Error("expected a populated change ID")
	}
}

func TestNotifier_OrderedDelivery(t *testing.T) {
	n := newTestNotifier()

	var order []string
	n.Subscribe("k", func(Change) { order = append(order, "first") })
	n.Subscribe("k", func(Change) { order = append(order, "second") })
	n.SubscribeAll(func(Change) { order = append(order, "global") })

	n.NotifySet("k", registry.Int(1), registry.Int(2))

	want := []string{"first", "second", "global"}
	if len(order) != len(want) {
		t.Fatalf("delivered %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestNotifier_FaultIsolation(t *testing.T) {
	n := newTestNotifier()

	var survived bool
	n.Subscribe("k", func(Change) { panic("listener bug") })
	n.Subscribe("k", func(Change) { survived = true })

	n.NotifySet("k", registry.Unset(), registry.Int(1))

	if !survived {
		t.Error("panic in one subscriber must not stop the next")
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := newTestNotifier()

	var first, second int
	sub := n.Subscribe("k", func(Change) { first++ })
	n.Subscribe("k", func(Change) { second++ })

	n.NotifySet("k", registry.Int(0), registry.Int(1))
	sub.Unsubscribe()
	sub.Unsubscribe() // repeat is harmless
	n.NotifySet("k", registry.Int(1), registry.Int(2))

	if first != 1 {
		t.Errorf("first = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("second = %d, want 2", second)
	}
}

func TestNotifier_InitialFlag(t *testing.T) {
	n := newTestNotifier()

	var got Change
	n.Subscribe("k", func(c Change) { got = c })

	n.NotifyInitial("k", registry.String("restored"))

	if !got.Initial {
		t.Error("Initial should be true")
	}
	if !got.Old.IsUnset() {
		t.Error("Old should be unset on the initial dispatch")
	}
	if s, _ := got.New.AsString(); s != "restored" {
		t.Errorf("New = %q, want restored", s)
	}
}

func TestNotifier_Invoke(t *testing.T) {
	n := newTestNotifier()

	ran := false
	n.Invoke("btn", func() error { ran = true; return nil })
	if !ran {
		t.Error("action should run")
	}

	// Neither panics nor errors propagate.
	n.Invoke("btn", func() error { panic("action bug") })
	n.Invoke("btn", func() error { return errTest })
	n.Invoke("btn", nil)
}

func TestNotifier_ClosedDropsEvents(t *testing.T) {
	n := newTestNotifier()

	count := 0
	n.Subscribe("k", func(Change) { count++ })

	n.Close()
	n.Close() // idempotent
	n.NotifySet("k", registry.Int(0), registry.Int(1))

	if count != 0 {
		t.Errorf("delivered %d after Close, want 0", count)
	}
}

func TestNotifier_ClosedDropsActions(t *testing.T) {
	n := newTestNotifier()
	n.Close()

	ran := false
	n.Invoke("btn", func() error { ran = true; return nil })
	if ran {
		t.Error("action ran after Close")
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test error" }
