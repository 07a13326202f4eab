package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zeusync/btree/internal/config"
)

type cli struct {
	v          *viper.Viper
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "btsim",
		Short:         "btsim runs behavior tree scenarios",
		Long:          `btsim loads behavior tree definitions from YAML or JSON, validates them and ticks a population of agents frame by frame.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		c.newRunCmd(),
		c.newValidateCmd(),
		c.newExportCmd(),
		c.newLeavesCmd(),
	)
	return root
}

func (c *cli) config() (*config.Config, error) {
	return config.Load(c.v, c.configPath)
}
