package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/props/storefile"
)

func newImportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import values from a TOML file or a YAML snapshot",
		Long: `Apply values from an external file and save the store. TOML input is
parsed strictly, with table nesting forming property keys; YAML input
is the snapshot form the export command writes. Unknown keys and
mismatched values are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cliLogger())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			if err := eng.Initialize(); err != nil {
				return err
			}

			path := args[0]
			f := format
			if f == "" {
				switch filepath.Ext(path) {
				case ".yaml", ".yml":
					f = "yaml"
				default:
					f = "toml"
				}
			}

			var values map[string]registry.Value
			switch f {
			case "toml":
				values, err = storefile.ImportTOML(path, eng.Registry())
			case "yaml":
				var r *os.File
				r, err = os.Open(path)
				if err != nil {
					return err
				}
				defer r.Close()
				values, err = storefile.ImportYAML(r, eng.Registry())
			default:
				return fmt.Errorf("unknown format %q", f)
			}
			if err != nil {
				return err
			}

			applied := 0
			for key, v := range values {
				if err := eng.Set(key, v); err != nil {
					continue
				}
				applied++
			}
			if err := eng.Save(); err != nil {
				return err
			}
			fmt.Printf("imported %d value(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: toml or yaml (default by extension)")
	return cmd
}
