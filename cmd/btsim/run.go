package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/core/bt/definition"
	"github.com/zeusync/btree/internal/core/observability/log"
	"github.com/zeusync/btree/internal/injector"
)

func (c *cli) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Tick agents driven by a scenario",
		Long:  `Builds one tree per agent from the scenario file and ticks them every frame until they settle, the frame limit is hit or the process is interrupted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Int("frames", 0, "Stop after this many frames (0 = until every agent is done)")
	flags.Duration("rate", 0, "Interval between frames (0 = back to back)")
	flags.Int("agents", 0, "Number of agents to spawn")
	flags.Bool("restart", false, "Restart trees after they settle")
	flags.String("inspect", "", "Serve the websocket inspector on this address")
	flags.String("metrics", "", "Serve Prometheus metrics on this address")
	for key, name := range map[string]string{
		"sim.frames":            "frames",
		"sim.tick_rate":         "rate",
		"sim.agents":            "agents",
		"sim.restart_on_settle": "restart",
		"inspector.addr":        "inspect",
		"metrics.addr":          "metrics",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func (c *cli) run(cmd *cobra.Command, path string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	def, err := definition.LoadFile(path)
	if err != nil {
		return err
	}
	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(ctx); err != nil {
			rt.Logger.Warn("shutdown", log.Error(err))
		}
	}()

	for i := range cfg.Sim.Agents {
		if _, err := rt.Spawn(def, fmt.Sprintf("%s-%d", def.Name, i+1)); err != nil {
			return err
		}
	}
	if err := rt.Start(); err != nil {
		return err
	}

	rt.Logger.Info("simulation started",
		log.Tree(def.Name),
		log.Int("agents", cfg.Sim.Agents),
		log.Duration("rate", cfg.Sim.TickRate),
	)
	stats, err := rt.Manager.Run(cmd.Context(), cfg.Sim.TickRate, cfg.Sim.Frames)
	if err != nil && cmd.Context().Err() == nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frames: %d\n", stats.Frame)
	for _, a := range rt.Manager.All() {
		line := fmt.Sprintf("%s\t%s\t%d", a.ID(), a.LastStatus(), a.Frames())
		if herr := a.Halted(); herr != nil {
			line += "\t" + herr.Error()
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
