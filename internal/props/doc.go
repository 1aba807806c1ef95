// Package props provides the CryVigilance property engine.
//
// The engine is a reactive, typed registry of declaratively defined
// properties: it maintains current values, persists them to a
// section-grouped text file, derives widget visibility from
// inter-property dependencies, and notifies subscribers on change. It
// is embedded inside a host application that supplies rendering, input
// events, and a periodic tick.
//
// # Architecture
//
// Mutations flow through one path and fan out from there:
//
//	register ─▶ Registry ──▶ Store ──▶ Notifier ──▶ subscribers
//	                           │
//	                     dirty flag ──▶ Autosave ──▶ store file
//	                           │
//	                       Depgraph ──▶ visibility
//
// # Sub-packages
//
//   - registry: Kind enum, tagged Value variant, Descriptor, Registry
//   - codec: single-value encode/decode for the store-file format
//   - storefile: whole-file load/save, TOML import, YAML snapshots
//   - store: current values, equality suppression, dirty flag
//   - depgraph: single-hop visibility dependencies
//   - notify: ordered fault-isolated change dispatch
//   - autosave: tick-driven batched persistence
//
// # Basic Usage
//
//	eng := props.New(props.WithStorePath(path))
//	eng.MustRegister(registry.Descriptor{
//	    Key: "overlay.enabled", Kind: registry.KindSwitch,
//	    Name: "Enabled", Category: "Overlay",
//	})
//	eng.OnChange("overlay.enabled", func(c notify.Change) {
//	    // react to restored and changed values
//	})
//	if err := eng.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	eng.SetBool("overlay.enabled", true)
//	eng.Tick() // host-driven; flushes dirty state
//	eng.Destroy()
//
// # Error Handling
//
// Registration errors are fatal at setup time and surface from
// Register as *registry.ValidationError. Everything after that is
// recoverable by design: undecodable persisted lines fall back to
// defaults, failing subscribers and actions are logged and isolated,
// and a failed save keeps the dirty flag so the next tick retries.
package props
