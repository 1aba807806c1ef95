// Package storefile reads and writes the persisted property file.
//
// The format is line oriented and TOML inspired, not general TOML.
// Section headers like [general] and [general.appearance] group the
// key = value lines for readability, but the loader only extracts
// identifier = value pairs wherever they appear and silently skips
// every other line. That skip rule is the format's tolerance mechanism
// for forward and backward drift: old readers ignore new structure, new
// readers ignore stale lines, and one garbled line never poisons the
// rest of the file.
package storefile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

// LoadStats counts what happened to each line during a load.
type LoadStats struct {
	// Applied counts values decoded and returned.
	Applied int
	// UnknownKeys counts well-formed pairs whose key is not registered.
	UnknownKeys int
	// BadValues counts pairs whose value failed to decode.
	BadValues int
	// Malformed counts candidate lines that did not match the
	// identifier = value shape. Blank lines, comments, and section
	// headers are structural and not counted.
	Malformed int
}

// Skipped returns the number of lines ignored for any reason.
func (s LoadStats) Skipped() int {
	return s.UnknownKeys + s.BadValues + s.Malformed
}

// Load reads the store file and returns the decoded values keyed by
// property key. A missing file is not an error and yields an empty
// map. A decode failure in one value never aborts the rest of the
// file; the failure is reflected in the stats and the key falls back
// to its default downstream.
func Load(path string, reg *registry.Registry) (map[string]registry.Value, LoadStats, error) {
	var stats LoadStats

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]registry.Value{}, stats, nil
		}
		return nil, stats, fmt.Errorf("opening store file %s: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]registry.Value)
	sc := bufio.NewScanner(f)
	// Long paragraph values make long lines; the default 64KB token
	// cap would turn one of them into a whole-file read error.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '[' || line[0] == '#' || line[0] == ';' {
			continue
		}

		key, raw, ok := splitAssignment(line)
		if !ok {
			stats.Malformed++
			continue
		}
		desc := reg.Get(key)
		if desc == nil {
			stats.UnknownKeys++
			continue
		}
		v, err := codec.Decode(raw, desc.Kind)
		if err != nil {
			stats.BadValues++
			continue
		}
		values[key] = v
		stats.Applied++
	}
	if err := sc.Err(); err != nil {
		return values, stats, fmt.Errorf("reading store file %s: %w", path, err)
	}
	return values, stats, nil
}

// Save writes the full snapshot grouped by normalized category and
// subcategory, then atomically replaces the target file via a temp
// file and rename. Buttons and unset values are never written. On
// error the previous file content is left intact, so the caller can
// keep its dirty flag and retry on a later tick.
func Save(path string, reg *registry.Registry, snapshot map[string]registry.Value) error {
	var b strings.Builder

	for _, cat := range reg.Categories() {
		writeCategory(&b, cat, reg.ByCategory(cat), snapshot)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing store file %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing store file %s: %w", path, err)
	}
	return nil
}

// writeCategory emits one [category] section with one
// [category.subcategory] sub-section per first-seen subcategory.
// Ungrouped properties section under the category's own name.
func writeCategory(b *strings.Builder, cat string, descs []*registry.Descriptor, snapshot map[string]registry.Value) {
	type bucket struct {
		name  string
		descs []*registry.Descriptor
	}
	var buckets []bucket
	index := make(map[string]int)

	for _, d := range descs {
		if d.Kind == registry.KindButton {
			continue
		}
		v, ok := snapshot[d.Key]
		if !ok || v.IsUnset() {
			continue
		}
		sub := d.Subcategory
		if sub == "" {
			sub = cat
		}
		name := normalizeName(sub)
		i, seen := index[name]
		if !seen {
			i = len(buckets)
			index[name] = i
			buckets = append(buckets, bucket{name: name})
		}
		buckets[i].descs = append(buckets[i].descs, d)
	}
	if len(buckets) == 0 {
		return
	}

	normCat := normalizeName(cat)
	fmt.Fprintf(b, "[%s]\n", normCat)
	for _, bk := range buckets {
		fmt.Fprintf(b, "[%s.%s]\n", normCat, bk.name)
		for _, d := range bk.descs {
			enc, err := codec.Encode(snapshot[d.Key], d.Kind)
			if err != nil {
				continue
			}
			fmt.Fprintf(b, "%s = %s\n", d.Key, enc)
		}
		b.WriteString("\n")
	}
}

// normalizeName lowercases a grouping name and replaces spaces with
// underscores for use in section headers.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// splitAssignment matches the identifier = value line shape.
func splitAssignment(line string) (key, raw string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	if !validKey(key) {
		return "", "", false
	}
	return key, strings.TrimSpace(line[i+1:]), true
}

// validKey reports whether s is an identifier: a letter or underscore
// followed by letters, digits, underscores, dots, or hyphens.
func validKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '.' || ch == '-'):
		default:
			return false
		}
	}
	return true
}
