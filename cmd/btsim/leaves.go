package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/core/bt/definition"
)

func (c *cli) newLeavesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaves",
		Short: "List the built-in actions and conditions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			reg := definition.NewDefaultRegistry(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "actions:    %s\n", strings.Join(reg.Actions(), ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "conditions: %s\n", strings.Join(reg.Conditions(), ", "))
		},
	}
}
