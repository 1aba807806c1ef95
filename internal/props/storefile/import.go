package storefile

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

// ParseError represents an error while parsing an import file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ImportTOML reads a strict TOML file and returns the values of every
// registered property it addresses. Unlike Load, this path parses real
// TOML: table nesting joins with dots to form property keys, so
// [overlay] enabled = true addresses "overlay.enabled". A missing or
// malformed file is an error here; individual unknown keys and
// mismatched leaf values are skipped like everywhere else.
func ImportTOML(path string, reg *registry.Registry) (map[string]registry.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file %s: %w", path, err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	flat := make(map[string]any)
	flatten("", tree, flat)

	values := make(map[string]registry.Value)
	for key, leaf := range flat {
		desc := reg.Get(key)
		if desc == nil {
			continue
		}
		v, err := coerceLeaf(leaf, desc.Kind)
		if err != nil {
			continue
		}
		values[key] = v
	}
	return values, nil
}

// flatten joins nested table keys with dots into out.
func flatten(prefix string, tree map[string]any, out map[string]any) {
	for key, val := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			flatten(full, sub, out)
			continue
		}
		out[full] = val
	}
}

// coerceLeaf converts a decoded TOML leaf into a value of the kind's
// family. Colors are the bare A,R,G,B quad as a TOML string.
func coerceLeaf(leaf any, k registry.Kind) (registry.Value, error) {
	switch k.Family() {
	case registry.FamilyBool:
		if b, ok := leaf.(bool); ok {
			return registry.Bool(b), nil
		}
	case registry.FamilyInt:
		switch n := leaf.(type) {
		case int64:
			return registry.Int(n), nil
		case float64:
			return registry.Int(registry.RoundHalfUp(n)), nil
		}
	case registry.FamilyFloat:
		switch n := leaf.(type) {
		case float64:
			return registry.Float(n), nil
		case int64:
			return registry.Float(float64(n)), nil
		}
	case registry.FamilyString:
		if s, ok := leaf.(string); ok {
			return registry.String(s), nil
		}
	case registry.FamilyColor:
		if s, ok := leaf.(string); ok {
			c, err := codec.ParseColor(s)
			if err != nil {
				return registry.Value{}, err
			}
			return registry.ColorOf(c), nil
		}
	}
	return registry.Value{}, fmt.Errorf("cannot use %T as %s", leaf, k.Family())
}
