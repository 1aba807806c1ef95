package props

import (
	"os"
	"path/filepath"

	"github.com/mizly/CryVigilance/internal/telemetry"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStorePath sets the persisted store-file path.
func WithStorePath(path string) Option {
	return func(e *Engine) {
		e.storePath = path
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log telemetry.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithMetrics sets the metrics sink. Defaults to disabled.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSignalBus injects the cross-instance signal bus. Without one the
// engine neither announces itself nor polls for open requests.
func WithSignalBus(bus SignalBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithAssetLoader injects the image asset loader so Destroy can release
// outstanding assets.
func WithAssetLoader(loader AssetLoader) Option {
	return func(e *Engine) {
		e.assets = loader
	}
}

// WithEnvOverrides enables environment variable overrides at
// Initialize. A property key like general.volume is overridden by
// PREFIX_GENERAL_VOLUME. Off by default.
func WithEnvOverrides(prefix string) Option {
	return func(e *Engine) {
		e.envPrefix = prefix
	}
}

// WithInstanceName sets the name announced on the signal bus.
// Defaults to "cryvigilance".
func WithInstanceName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

// DefaultStorePath returns the store-file path used when none is
// configured: $XDG_CONFIG_HOME/cryvigilance/properties.store, falling
// back to ~/.config.
func DefaultStorePath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cryvigilance", "properties.store")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cryvigilance", "properties.store")
}
