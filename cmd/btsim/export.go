package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/core/bt/definition"
)

func (c *cli) newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <scenario>",
		Short: "Print the built tree of a scenario",
		Long: `Prints the tree built from a scenario. The json format is the snapshot
consumed by the inspector; the yaml format is the normalized definition.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := definition.LoadFile(args[0])
			if err != nil {
				return err
			}
			tree, err := definition.Build(def, definition.NewDefaultRegistry(nil))
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(definition.Export(tree))
			case "yaml":
				return def.EncodeYAML(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	return cmd
}
