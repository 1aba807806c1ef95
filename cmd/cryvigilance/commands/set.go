package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props/codec"
	"github.com/mizly/CryVigilance/internal/props/registry"
)

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one property and save the store",
		Long: `Set a property value. The value is parsed per the property's kind:
booleans as true/false, numerics bare, colors as A,R,G,B, strings
either quoted in the store-file form or bare.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cliLogger())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			if err := eng.Initialize(); err != nil {
				return err
			}

			key, raw := args[0], args[1]
			d := eng.Registry().Get(key)
			if d == nil {
				return fmt.Errorf("%w: %s", registry.ErrNotFound, key)
			}
			v, err := codec.DecodeLoose(raw, d.Kind)
			if err != nil {
				return fmt.Errorf("parsing %q as %s: %w", raw, d.Kind, err)
			}
			if err := eng.Set(key, v); err != nil {
				return err
			}
			if err := eng.Save(); err != nil {
				return err
			}
			now, _ := eng.Get(key)
			fmt.Printf("%s = %s\n", key, now)
			return nil
		},
	}
}
