package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func newEngine(t *testing.T) *props.Engine {
	t.Helper()
	return props.New(props.WithStorePath(filepath.Join(t.TempDir(), "properties.store")))
}

func TestDiscoverSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "charlie.lua", "")
	writeScript(t, dir, "alpha.lua", "")
	writeScript(t, dir, "notes.txt", "")
	writeScript(t, dir, ".hidden.lua", "")
	if err := os.Mkdir(filepath.Join(dir, "nested.lua"), 0o755); err != nil {
		t.Fatal(err)
	}

	infos, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "charlie" {
		t.Errorf("wrong order: %q, %q", infos[0].Name, infos[1].Name)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	infos, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected no scripts, got %d", len(infos))
	}
}

func TestHostToggleRunsScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "probe.lua", `props.set("test.value", 42)`)

	eng := newEngine(t)
	defer eng.Destroy()
	eng.MustRegister(registry.Descriptor{
		Key: "test.value", Kind: registry.KindNumberInt,
		Name: "Value", Category: "Test",
	})

	h := NewHost(dir, eng, telemetry.Nop(), nil)
	defer h.Close()
	if err := h.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := eng.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	key := Key("probe")
	if d := eng.Registry().Get(key); d == nil {
		t.Fatalf("toggle %s not registered", key)
	}
	if err := eng.SetBool(key, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if !h.Running("probe") {
		t.Error("script should be running after toggle on")
	}
	got, err := eng.GetInt("test.value")
	if err != nil {
		t.Fatalf("GetInt: %v", err)
	}
	if got != 42 {
		t.Errorf("script did not run: test.value = %d, want 42", got)
	}

	if err := eng.SetBool(key, false); err != nil {
		t.Fatalf("SetBool off: %v", err)
	}
	if h.Running("probe") {
		t.Error("script should be stopped after toggle off")
	}
}

func TestHostScriptFailureRevertsToggle(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", `error("boom")`)

	eng := newEngine(t)
	defer eng.Destroy()
	h := NewHost(dir, eng, telemetry.Nop(), nil)
	defer h.Close()
	if err := h.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := eng.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	key := Key("broken")
	if err := eng.SetBool(key, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if h.Running("broken") {
		t.Error("failed script should not stay running")
	}
	on, err := eng.GetBool(key)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if on {
		t.Error("toggle should revert to off after script failure")
	}
}

func TestHostDropHidesToggle(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gone.lua", ``)

	eng := newEngine(t)
	defer eng.Destroy()
	h := NewHost(dir, eng, telemetry.Nop(), nil)
	defer h.Close()
	if err := h.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := eng.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	key := Key("gone")
	if err := eng.SetBool(key, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	h.Drop("gone")

	if h.Running("gone") {
		t.Error("dropped script should stop")
	}
	d := eng.Registry().Get(key)
	if d == nil {
		t.Fatal("registry entry must survive removal")
	}
	if !d.Hidden {
		t.Error("dropped script's toggle should hide")
	}
	on, err := eng.GetBool(key)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if on {
		t.Error("dropped script's toggle should turn off")
	}
}

func TestWatcherAdoptsAndDrops(t *testing.T) {
	dir := t.TempDir()

	eng := newEngine(t)
	defer eng.Destroy()
	h := NewHost(dir, eng, telemetry.Nop(), nil)
	defer h.Close()
	if err := eng.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	w, err := NewWatcher(h, telemetry.Nop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := writeScript(t, dir, "late.lua", ``)
	key := Key("late")
	waitFor(t, "toggle registration", func() bool {
		return eng.Registry().Has(key)
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "toggle hiding", func() bool {
		d := eng.Registry().Get(key)
		return d != nil && d.Hidden
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
