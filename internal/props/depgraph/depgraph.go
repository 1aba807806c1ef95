// Package depgraph derives property visibility from dependency edges.
//
// Each edge makes one dependent property's visibility conditional on
// another property's current value. Evaluation is deliberately one hop
// deep: a prerequisite's own prerequisites never chain into the
// decision, only its current value does. Cycles are therefore inert,
// but self-edges are rejected as always wrong.
package depgraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

// ErrBadEdge indicates a rejected dependency edge.
var ErrBadEdge = errors.New("invalid dependency edge")

// Graph maps each dependent key to its single prerequisite key.
type Graph struct {
	mu    sync.RWMutex
	edges map[string]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string]string)}
}

// Add registers dependent -> prerequisite. A later edge for the same
// dependent replaces the earlier one.
func (g *Graph) Add(dependent, prerequisite string) error {
	if dependent == "" || prerequisite == "" {
		return fmt.Errorf("%w: empty key", ErrBadEdge)
	}
	if dependent == prerequisite {
		return fmt.Errorf("%w: %s depends on itself", ErrBadEdge, dependent)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[dependent] = prerequisite
	return nil
}

// Prerequisite returns the prerequisite key for a dependent, if any.
func (g *Graph) Prerequisite(dependent string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.edges[dependent]
	return p, ok
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Visible derives a descriptor's visibility. A hidden descriptor is
// never visible. Otherwise, with no edge the property is visible; with
// an edge it is visible exactly when the prerequisite's current value
// is truthy, where only unset and boolean false count as falsy. lookup
// resolves a key's current value; an unregistered prerequisite
// resolves unset and hides the dependent.
func (g *Graph) Visible(d *registry.Descriptor, lookup func(string) registry.Value) bool {
	if d == nil || d.Hidden {
		return false
	}

	g.mu.RLock()
	prereq, ok := g.edges[d.Key]
	g.mu.RUnlock()
	if !ok {
		return true
	}
	return lookup(prereq).Truthy()
}
