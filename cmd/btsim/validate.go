package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/core/bt/definition"
)

func (c *cli) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenarios for structural problems",
		Long:  `Builds every scenario and reports unknown leaves, bad parameters, broken edges and invalid thresholds without ticking anything.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := definition.NewDefaultRegistry(nil)
			failed := 0
			for _, path := range args {
				def, err := definition.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				tree, err := definition.Build(def, reg)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s is valid (%d nodes, fingerprint %s)\n",
					path, def.Name, len(tree.Nodes()), definition.Fingerprint(tree))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios are invalid", failed, len(args))
			}
			return nil
		},
	}
}
