package props

import (
	"os"
	"strings"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// applyEnvOverrides overlays environment variables onto the loaded
// values before store initialization. Every registered non-button
// property is probed once; an undecodable variable is logged and
// skipped, so one bad override never blocks the rest.
// Note: empty string values are treated as valid values, not as unset.
func applyEnvOverrides(prefix string, reg *registry.Registry, loaded map[string]registry.Value, log telemetry.Logger) int {
	applied := 0
	for _, d := range reg.All() {
		if d.Kind == registry.KindButton {
			continue
		}
		name := envName(prefix, d.Key)
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		v, err := codec.DecodeLoose(raw, d.Kind)
		if err != nil {
			log.WithKey(d.Key).WithError(err).Warnf("ignoring override %s", name)
			continue
		}
		loaded[d.Key] = v
		applied++
	}
	return applied
}

// envName converts a property key to its override variable name:
// general.volume with prefix CRYV becomes CRYV_GENERAL_VOLUME.
func envName(prefix, key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ':
			return '_'
		}
		return r
	}, key)
	return prefix + "_" + strings.ToUpper(mapped)
}
