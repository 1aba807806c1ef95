package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props/registry"
)

func newListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties and their current values",
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

			reg := eng.Registry()
			for _, cat := range reg.Categories() {
				fmt.Printf("[%s]\n", cat)
				for _, d := range reg.ByCategory(cat) {
					visible := eng.Visible(d.Key)
					if !visible && !all {
						continue
					}
					marker := " "
					if !visible {
						marker = "·"
					}
					if d.Kind == registry.KindButton {
						fmt.Printf(" %s %-24s %-16s (button)\n", marker, d.Key, d.Kind)
						continue
					}
					v, _ := eng.Get(d.Key)
					fmt.Printf(" %s %-24s %-16s %s\n", marker, d.Key, d.Kind, v)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden and dependency-gated properties")
	return cmd
}
