package storefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.MustRegister(registry.Descriptor{
		Key: "overlay.enabled", Kind: registry.KindSwitch, Name: "Enabled", Category: "Overlay",
	})
	r.MustRegister(registry.Descriptor{
		Key: "overlay.opacity", Kind: registry.KindSliderPercent, Name: "Opacity",
		Category: "Overlay", Subcategory: "Look",
	})
	r.MustRegister(registry.Descriptor{
		Key: "overlay.accent", Kind: registry.KindColor, Name: "Accent",
		Category: "Overlay", Subcategory: "Look", Alpha: true,
	})
	r.MustRegister(registry.Descriptor{
		Key: "overlay.watermark", Kind: registry.KindImage, Name: "Watermark", Category: "Overlay",
	})
	r.MustRegister(registry.Descriptor{
		Key: "capture.fps", Kind: registry.KindSliderInt, Name: "FPS",
		Category: "Video Capture", Min: 1, Max: 240,
	})
	r.MustRegister(registry.Descriptor{
		Key: "capture.note", Kind: registry.KindText, Name: "Note", Category: "Video Capture",
	})
	r.MustRegister(registry.Descriptor{
		Key: "capture.clear", Kind: registry.KindButton, Name: "Clear",
		Category: "Video Capture", Action: func() error { return nil },
	})
	return r
}

func testSnapshot() map[string]registry.Value {
	return map[string]registry.Value{
		"overlay.enabled":   registry.Bool(true),
		"overlay.opacity":   registry.Float(0.5),
		"overlay.accent":    registry.RGBA(255, 10, 20, 30),
		"overlay.watermark": registry.String("wm.png"),
		"capture.fps":       registry.Int(60),
		"capture.note":      registry.String(`say "hi"`),
	}
}

func TestSave_Layout(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	if err := Save(path, reg, testSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}

	want := `[overlay]
[overlay.overlay]
overlay.enabled = true
overlay.watermark = "wm.png"

[overlay.look]
overlay.opacity = 0.500000
overlay.accent = "255,10,20,30"

[video_capture]
[video_capture.video_capture]
capture.fps = 60
capture.note = "say \"hi\""

`
	if string(data) != want {
		t.Errorf("saved file:\n%s\nwant:\n%s", data, want)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")
	snapshot := testSnapshot()

	if err := Save(path, reg, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, stats, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stats.Applied != len(snapshot) {
		t.Errorf("Applied = %d, want %d", stats.Applied, len(snapshot))
	}
	if stats.Skipped() != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped())
	}
	for key, want := range snapshot {
		got, ok := loaded[key]
		if !ok {
			t.Errorf("%s missing after round trip", key)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "props.cfg")

	if err := Save(path, reg, testSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSave_MissingDirFails(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "missing", "props.cfg")

	if err := Save(path, reg, testSnapshot()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSave_Overwrites(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	first := testSnapshot()
	if err := Save(path, reg, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := testSnapshot()
	second["capture.fps"] = registry.Int(144)
	if err := Save(path, reg, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, _, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, _ := loaded["capture.fps"].AsInt(); got != 144 {
		t.Errorf("capture.fps = %d, want 144", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	reg := testRegistry(t)

	loaded, stats, err := Load(filepath.Join(t.TempDir(), "absent.cfg"), reg)
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty map, got %d entries", len(loaded))
	}
	if stats.Applied != 0 {
		t.Errorf("Applied = %d, want 0", stats.Applied)
	}
}

func TestLoad_MalformedTolerance(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	content := `# comment line
[overlay]
overlay.enabled = true
overlay.opacity = banana
!!garbage!!
unknown.key = 5
= 7

123bad = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loaded, stats, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got, _ := loaded["overlay.enabled"].AsBool(); !got {
		t.Error("well-formed line should load despite garbled neighbors")
	}
	if _, ok := loaded["overlay.opacity"]; ok {
		t.Error("undecodable value should be absent, leaving the default downstream")
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
	if stats.BadValues != 1 {
		t.Errorf("BadValues = %d, want 1", stats.BadValues)
	}
	if stats.UnknownKeys != 1 {
		t.Errorf("UnknownKeys = %d, want 1", stats.UnknownKeys)
	}
	if stats.Malformed != 3 {
		t.Errorf("Malformed = %d, want 3", stats.Malformed)
	}
}

func TestSaveLoad_MultilineParagraph(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Descriptor{
		Key: "overlay.credits", Kind: registry.KindParagraph, Name: "Credits", Category: "Overlay",
	})
	path := filepath.Join(t.TempDir(), "props.cfg")
	want := "line1\nline2"

	snapshot := map[string]registry.Value{"overlay.credits": registry.String(want)}
	if err := Save(path, reg, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, stats, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stats.Applied != 1 || stats.Skipped() != 0 {
		t.Errorf("stats = %+v, want 1 applied, none skipped", stats)
	}
	if got, _ := loaded["overlay.credits"].AsString(); got != want {
		t.Errorf("overlay.credits = %q, want %q", got, want)
	}
}

func TestLoad_LongValueLine(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	// Well past bufio.Scanner's default 64KB token limit.
	long := strings.Repeat("x", 200*1024)
	content := "capture.note = \"" + long + "\"\ncapture.fps = 90\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loaded, stats, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stats.Applied != 2 {
		t.Errorf("Applied = %d, want 2", stats.Applied)
	}
	if got, _ := loaded["capture.note"].AsString(); got != long {
		t.Errorf("capture.note lost content: len = %d, want %d", len(got), len(long))
	}
}

func TestLoad_OversizedLineKeepsEarlierValues(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	// A line beyond the raised token cap aborts the read, but values
	// decoded before it must still come back alongside the error.
	junk := strings.Repeat("y", 5*1024*1024)
	content := "capture.fps = 90\n" + junk + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loaded, _, err := Load(path, reg)
	if err == nil {
		t.Fatal("expected error for oversized line")
	}
	if got, _ := loaded["capture.fps"].AsInt(); got != 90 {
		t.Errorf("capture.fps = %d, want 90", got)
	}
}

func TestLoad_ExtractsPairsAnywhere(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "props.cfg")

	// No headers at all, values indented and out of section order.
	content := "   capture.fps = 120\noverlay.enabled=false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loaded, stats, err := Load(path, reg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stats.Applied != 2 {
		t.Errorf("Applied = %d, want 2", stats.Applied)
	}
	if got, _ := loaded["capture.fps"].AsInt(); got != 120 {
		t.Errorf("capture.fps = %d, want 120", got)
	}
	if got, _ := loaded["overlay.enabled"].AsBool(); got {
		t.Error("overlay.enabled should load false")
	}
}
