// Package signal connects independent CryVigilance instances through
// flag files in a shared directory.
//
// An instance announces itself by writing <name>.active and withdraws
// it with Retract. Another instance asks it to open its panel by
// writing <name>.open; the target consumes that file on its next tick
// poll. The bus carries no engine state: losing a flag file costs a
// convenience, never correctness.
package signal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

const (
	activeExt = ".active"
	openExt   = ".open"
)

// Bus is the file-based signal bus. It implements props.SignalBus.
type Bus struct {
	mu      sync.Mutex
	dir     string
	name    string
	log     telemetry.Logger
	metrics *telemetry.Metrics
}

var _ props.SignalBus = (*Bus)(nil)

// New creates a bus over a shared directory, creating it when missing.
func New(dir string, log telemetry.Logger, metrics *telemetry.Metrics) (*Bus, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating signal dir %s: %w", dir, err)
	}
	return &Bus{
		dir:     dir,
		log:     log.Component("signal"),
		metrics: metrics,
	}, nil
}

// Announce publishes this instance under the given name. The name also
// selects which .open file Poll consumes.
func (b *Bus) Announce(name string) error {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()

	body := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := writeFlag(b.flagPath(name, activeExt), body); err != nil {
		return err
	}
	b.metrics.RecordSignal()
	b.log.Debugf("announced %s", name)
	return nil
}

// RequestOpen asks the named instance to open its panel. The request
// carries a fresh id and this instance's announced name, so the target
// can tell who knocked.
func (b *Bus) RequestOpen(target string) error {
	b.mu.Lock()
	from := b.name
	b.mu.Unlock()
	if from == "" {
		from = "anonymous"
	}

	body := fmt.Sprintf("id = %s\nfrom = %s\n", uuid.New(), from)
	if err := writeFlag(b.flagPath(target, openExt), body); err != nil {
		return err
	}
	b.metrics.RecordSignal()
	b.log.Debugf("requested open of %s", target)
	return nil
}

// Poll consumes a pending open request addressed to this instance.
// The flag file itself is the request; a garbled body still counts,
// with the sender and id filled best effort.
func (b *Bus) Poll() (props.OpenRequest, bool) {
	b.mu.Lock()
	name := b.name
	b.mu.Unlock()
	if name == "" {
		return props.OpenRequest{}, false
	}

	path := b.flagPath(name, openExt)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.WithPath(path).WithError(err).Warn("poll failed")
		}
		return props.OpenRequest{}, false
	}
	if err := os.Remove(path); err != nil {
		b.log.WithPath(path).WithError(err).Warn("consuming request failed")
	}
	return parseRequest(string(data)), true
}

// Retract withdraws this instance's announcement.
func (b *Bus) Retract() {
	b.mu.Lock()
	name := b.name
	b.mu.Unlock()
	if name == "" {
		return
	}
	if err := os.Remove(b.flagPath(name, activeExt)); err != nil && !os.IsNotExist(err) {
		b.log.WithError(err).Warn("retract failed")
	}
}

// Peers lists the announced names of other instances on the bus.
func (b *Bus) Peers() ([]string, error) {
	b.mu.Lock()
	own := flagName(b.name)
	b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("reading signal dir %s: %w", b.dir, err)
	}
	var peers []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), activeExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), activeExt)
		if name == own {
			continue
		}
		peers = append(peers, name)
	}
	return peers, nil
}

func (b *Bus) flagPath(name, ext string) string {
	return filepath.Join(b.dir, flagName(name)+ext)
}

// flagName sanitizes an instance name for use as a file name:
// lowercase, spaces to underscores, anything outside [a-z0-9_-]
// replaced by an underscore.
func flagName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(name))
	return mapped
}

// parseRequest reads the id and from lines of an open request body.
func parseRequest(body string) props.OpenRequest {
	var req props.OpenRequest
	for _, line := range strings.Split(body, "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "id":
			if id, err := uuid.Parse(strings.TrimSpace(v)); err == nil {
				req.ID = id
			}
		case "from":
			req.Sender = strings.TrimSpace(v)
		}
	}
	return req
}

// writeFlag writes a flag file atomically so a concurrent poller never
// observes a partial body.
func writeFlag(path, body string) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing flag %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("placing flag %s: %w", path, err)
	}
	return nil
}
