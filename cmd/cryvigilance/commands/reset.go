package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore every property to its default and save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cliLogger())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			if err := eng.Initialize(); err != nil {
				return err
			}

			eng.ResetToDefaults()
			if err := eng.Save(); err != nil {
				return err
			}
			fmt.Println("defaults restored")
			return nil
		},
	}
}
