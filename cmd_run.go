package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and compare it with the equilibrium",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetInt64("seed")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			logStats, _ := cmd.Flags().GetBool("log-stats")
			storePath, _ := cmd.Flags().GetString("store")
			preset, _ := cmd.Flags().GetString("preset")
			jsonOut, _ := cmd.Flags().GetBool("json")

			logger := slog.Default()
			sim, err := game.New(cfg, game.Options{
				Seed:      seed,
				LogStats:  logStats || cfg.Telemetry.LogStats,
				OutputDir: outputDir,
				Logger:    logger,
				OnMatchup: game.MatchupTracer(logger),
			})
			if err != nil {
				return err
			}
			defer sim.Close()

			runErr := sim.Run(cmd.Context())
			report := sim.Report()

			if storePath != "" {
				st, err := store.Open(cmd.Context(), storePath)
				if err != nil {
					return err
				}
				defer st.Close()
				run, err := st.Save(cmd.Context(), store.Record{
					Preset:  preset,
					Config:  cfg,
					Summary: report.Summary,
					Report:  report,
					History: sim.History(),
				})
				if err != nil {
					return fmt.Errorf("archiving run: %w", err)
				}
				logger.Info("run archived", "id", run.ID, "store", storePath)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if runErr != nil {
				return fmt.Errorf("run interrupted after %d rounds: %w", report.Summary.RoundsCompleted, runErr)
			}
			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	cmd.Flags().String("output-dir", "", "Directory for config.yaml, rounds.csv, perf.csv and summary.json")
	cmd.Flags().Bool("log-stats", false, "Log every round at info level")
	cmd.Flags().String("store", "", "SQLite archive to save the run into")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

// printReport writes the human-readable end-of-run summary.
func printReport(w io.Writer, r game.Report) {
	s := r.Summary
	fmt.Fprintf(w, "Seed:             %d\n", s.Seed)
	fmt.Fprintf(w, "Rounds completed: %d (%s)\n", s.RoundsCompleted, s.Termination)
	fmt.Fprintf(w, "Total dead:       %d\n", s.TotalDeaths)
	fmt.Fprintf(w, "Total births:     %d\n", s.TotalBirths)
	fmt.Fprintf(w, "Final population: %d (%d hawks, %d doves)\n", s.Final.Total(), s.Final.Hawks, s.Final.Doves)
	if pct, ok := s.Final.HawkPercent(); ok {
		dpct, _ := s.Final.DovePercent()
		fmt.Fprintf(w, "Final mix:        %.1f%% hawks, %.1f%% doves\n", pct, dpct)
	} else {
		fmt.Fprintln(w, "Final mix:        no survivors")
	}
	fmt.Fprintf(w, "Wall time:        %s\n", s.WallTime)

	switch {
	case r.Equilibrium == nil:
		fmt.Fprintf(w, "Equilibrium:      none (%s)\n", r.EquilibriumError)
	default:
		kind := "mixed"
		if r.Equilibrium.Dominant {
			kind = "dominant"
		}
		fmt.Fprintf(w, "Equilibrium:      p=(%.4f, %.4f) q=(%.4f, %.4f) %s\n",
			r.Equilibrium.P[0], r.Equilibrium.P[1], r.Equilibrium.Q[0], r.Equilibrium.Q[1], kind)
	}
	switch {
	case r.Verdict != nil:
		v := r.Verdict
		verdict := "outside"
		if v.Within {
			verdict = "within"
		}
		fmt.Fprintf(w, "Observed share:   %.4f ± %.4f over %d rounds, predicted %.4f (%s tolerance %.3f)\n",
			v.Observed, v.StdDev, v.Samples, v.Predicted, verdict, v.Tolerance)
	case r.VerdictError != "":
		fmt.Fprintf(w, "Observed share:   n/a (%s)\n", r.VerdictError)
	}
	for _, b := range r.Bookmarks {
		fmt.Fprintf(w, "  round %4d  %-16s %s\n", b.Round, b.Type, b.Description)
	}
}
