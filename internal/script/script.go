// Package script discovers user Lua scripts and runs them against the
// property engine.
//
// Each script in the watched directory gets one switch property under
// the Scripts category, keyed scripts.<stem>. Toggling the switch
// starts or stops the script in a sandboxed Lua state that exposes a
// small props API (get, set, on_change, register, log). Script
// failures are logged and isolated; they never crash the host. The
// directory is watched: new files gain a toggle, removed files stop
// and hide theirs. Registry entries are never destroyed.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const scriptExt = ".lua"

// Info describes one discovered script.
type Info struct {
	// Name is the file stem, also the toggle key suffix.
	Name string

	// Path is the script file path.
	Path string
}

// Key returns the toggle property key for a script name.
func Key(name string) string {
	return "scripts." + name
}

// Discover lists the scripts in a directory sorted by name. A missing
// directory yields no scripts and no error. Hidden files are skipped.
func Discover(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading script dir %s: %w", dir, err)
	}

	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, scriptExt) || strings.HasPrefix(name, ".") {
			continue
		}
		infos = append(infos, Info{
			Name: strings.TrimSuffix(name, scriptExt),
			Path: filepath.Join(dir, name),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
