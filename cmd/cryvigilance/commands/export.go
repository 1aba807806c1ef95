package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props/storefile"
)

func newExportCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current values as a YAML snapshot",
		Long: `Write a YAML snapshot of every persistable property value, suitable
for backup or for moving settings between machines. Restore it with
the import command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cliLogger())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			if err := eng.Initialize(); err != nil {
				return err
			}

			w := os.Stdout
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return storefile.ExportYAML(w, eng.Registry(), eng.Snapshot())
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	return cmd
}
