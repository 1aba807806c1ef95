package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/signal"
)

func newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [instance]",
		Short: "Ask a running instance to open its panel",
		Long: `Drop an open request on the signal bus. The target instance picks it
up on its next tick and opens its panel. Defaults to the default
instance name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "cryvigilance"
			if len(args) == 1 {
				target = args[0]
			}

			bus, err := signal.New(signalDir, cliLogger(), nil)
			if err != nil {
				return err
			}
			if err := bus.RequestOpen(target); err != nil {
				return err
			}
			fmt.Printf("open request sent to %s\n", target)
			return nil
		},
	}
}
