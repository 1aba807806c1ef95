package storefile

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

// Snapshot is the YAML backup form of the store: every persistable
// value in registry order, each in its store-file literal encoding.
type Snapshot struct {
	SavedAt time.Time       `yaml:"saved_at"`
	Values  []SnapshotEntry `yaml:"values"`
}

// SnapshotEntry is one property value within a Snapshot. Kind is
// informational; the registry's declared kind governs decoding.
type SnapshotEntry struct {
	Key   string `yaml:"key"`
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// ExportYAML writes a snapshot of the current values for backup.
// Buttons and unset values are omitted, as in Save.
func ExportYAML(w io.Writer, reg *registry.Registry, snapshot map[string]registry.Value) error {
	snap := Snapshot{SavedAt: time.Now().UTC()}
	for _, d := range reg.All() {
		if d.Kind == registry.KindButton {
			continue
		}
		v, ok := snapshot[d.Key]
		if !ok || v.IsUnset() {
			continue
		}
		enc, err := codec.Encode(v, d.Kind)
		if err != nil {
			continue
		}
		snap.Values = append(snap.Values, SnapshotEntry{
			Key:   d.Key,
			Kind:  d.Kind.String(),
			Value: enc,
		})
	}

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}

// ImportYAML reads a snapshot back into a value map, skipping unknown
// keys and undecodable values.
func ImportYAML(r io.Reader, reg *registry.Registry) (map[string]registry.Value, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return nil, &ParseError{Path: "<snapshot>", Message: err.Error(), Err: err}
	}

	values := make(map[string]registry.Value, len(snap.Values))
	for _, e := range snap.Values {
		desc := reg.Get(e.Key)
		if desc == nil {
			continue
		}
		v, err := codec.Decode(e.Value, desc.Kind)
		if err != nil {
			continue
		}
		values[e.Key] = v
	}
	return values, nil
}
