package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/traits"
)

func newEquilibriumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equilibrium",
		Short: "Print the payoff matrix and its equilibrium without simulating",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			model := payoff.FromConfig(cfg)
			eq, eqErr := model.MixedEquilibrium()

			out := cmd.OutOrStdout()
			if jsonOut {
				result := map[string]any{
					"mid_food":          model.MidFood(),
					"fight_cost":        model.FightCost(),
					"matrix":            model.Matrix(),
					"dominant_profiles": model.StrongDominantEquilibria(),
				}
				if eqErr != nil {
					result["error"] = eqErr.Error()
				} else {
					result["equilibrium"] = eq
					result["hawk_share"] = eq.HawkShare()
				}
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "midFood=%d fightCost=%d\n\n", model.MidFood(), model.FightCost())
			fmt.Fprintf(out, "%-6s %-14s %-14s\n", "", "hawk", "dove")
			for _, row := range traits.Strategies {
				fmt.Fprintf(out, "%-6s", row)
				for _, col := range traits.Strategies {
					c := model.Cell(row, col)
					fmt.Fprintf(out, " %-14s", fmt.Sprintf("(%d, %d)", c[0], c[1]))
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)

			for _, p := range model.StrongDominantEquilibria() {
				fmt.Fprintf(out, "Strong dominant equilibrium: (%s, %s)\n", p.Row, p.Col)
			}
			if eqErr != nil {
				fmt.Fprintf(out, "No equilibrium: %v\n", eqErr)
				return nil
			}
			fmt.Fprintf(out, "p = (%.4f, %.4f)\nq = (%.4f, %.4f)\n", eq.P[0], eq.P[1], eq.Q[0], eq.Q[1])
			fmt.Fprintf(out, "Predicted hawk share: %.4f\n", eq.HawkShare())
			return nil
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}
