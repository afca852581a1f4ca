package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hawkdove",
		Short: "Hawk/Dove population simulation with an equilibrium oracle",
		Long: `hawkdove runs a Hawk/Dove evolutionary population and compares the
long-run hawk share with the mixed equilibrium of the payoff matrix.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			logger, err := game.NewLogger(level, format, os.Stderr)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: info, debug or trace")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or text")

	rootCmd.AddCommand(
		newRunCmd(),
		newEquilibriumCmd(),
		newPresetsCmd(),
		newSweepCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// addConfigFlags registers the flags every config-driven command shares.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config.yaml (empty = use defaults)")
	cmd.Flags().String("preset", "", "Named preset applied before --config (see 'presets')")
	cmd.Flags().Int("rounds", 0, "Override simulation.rounds")
	cmd.Flags().Int("fight-cost", 0, "Override energy.fight_cost")
}

// loadConfig layers defaults, --preset, --config and explicit overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	preset, _ := cmd.Flags().GetString("preset")

	cfg, err := config.LoadWithPreset(preset, path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("rounds") {
		cfg.Simulation.Rounds, _ = cmd.Flags().GetInt("rounds")
	}
	if cmd.Flags().Changed("fight-cost") {
		cfg.Energy.FightCost, _ = cmd.Flags().GetInt("fight-cost")
	}
	cfg.ComputeDerived()
	return cfg, nil
}
