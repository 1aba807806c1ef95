package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one property's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cliLogger())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			if err := eng.Initialize(); err != nil {
				return err
			}

			key := args[0]
			d := eng.Registry().Get(key)
			if d == nil {
				return fmt.Errorf("%w: %s", registry.ErrNotFound, key)
			}
			v, _ := eng.Get(key)
			if v.IsUnset() {
				fmt.Println("<unset>")
				return nil
			}
			enc, err := codec.Encode(v, d.Kind)
			if err != nil {
				return err
			}
			fmt.Println(enc)
			return nil
		},
	}
}
