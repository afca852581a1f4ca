package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// sweepRow aggregates all seeds run at one fight cost.
type sweepRow struct {
	FightCost     int     `csv:"fight_cost"`
	MidFood       int     `csv:"mid_food"`
	Runs          int     `csv:"runs"`
	Failed        int     `csv:"failed"`
	Predicted     float64 `csv:"predicted_hawk_share"`
	ObservedMean  float64 `csv:"observed_mean"`
	ObservedStd   float64 `csv:"observed_std"`
	MeanDeviation float64 `csv:"mean_deviation"`
	Within        int     `csv:"within_tolerance"`
	Collapses     int     `csv:"collapses"`
	MeanRounds    float64 `csv:"mean_rounds"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a grid of fight costs x seeds concurrently and compare each with its equilibrium",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			costs, _ := cmd.Flags().GetIntSlice("fight-costs")
			seeds, _ := cmd.Flags().GetInt("seeds")
			baseSeed, _ := cmd.Flags().GetInt64("base-seed")
			workers, _ := cmd.Flags().GetInt("workers")
			outPath, _ := cmd.Flags().GetString("out")

			if len(costs) == 0 {
				costs = []int{base.Energy.FightCost}
			}
			if seeds < 1 {
				return fmt.Errorf("--seeds must be at least 1")
			}

			jobs := sweepJobs(base, costs, seeds, baseSeed)
			slog.Info("starting sweep", "fight_costs", costs, "seeds", seeds, "runs", len(jobs))

			results, err := game.RunBatch(cmd.Context(), jobs, workers, slog.Default())
			if err != nil {
				return err
			}

			rows := aggregateSweep(costs, results)
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(),
					"fight_cost=%-4d predicted=%.4f observed=%.4f±%.4f within=%d/%d collapses=%d\n",
					r.FightCost, r.Predicted, r.ObservedMean, r.ObservedStd, r.Within, r.Runs, r.Collapses)
			}

			if outPath != "" {
				if err := telemetry.WriteCSV(outPath, rows); err != nil {
					return err
				}
				slog.Info("sweep written", "path", outPath)
			}
			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().IntSlice("fight-costs", nil, "Fight costs to sweep (default: the configured one)")
	cmd.Flags().Int("seeds", 4, "Seeds per fight cost")
	cmd.Flags().Int64("base-seed", 1, "First seed; runs use base-seed, base-seed+1, ...")
	cmd.Flags().Int("workers", 0, "Concurrent runs (0 = GOMAXPROCS)")
	cmd.Flags().String("out", "sweep.csv", "CSV output path (empty = none)")
	return cmd
}

// sweepJobs expands fight costs x seeds into independent runs.
func sweepJobs(base *config.Config, costs []int, seeds int, baseSeed int64) []game.Job {
	jobs := make([]game.Job, 0, len(costs)*seeds)
	for _, cost := range costs {
		for i := range seeds {
			cfg := base.Clone()
			cfg.Energy.FightCost = cost
			cfg.ComputeDerived()
			jobs = append(jobs, game.Job{
				Name:   fmt.Sprintf("cost=%d/seed=%d", cost, baseSeed+int64(i)),
				Config: cfg,
				Seed:   baseSeed + int64(i),
			})
		}
	}
	return jobs
}

// aggregateSweep folds batch results into one row per fight cost, in the
// order costs were given. Runs without a verdict count as failed.
func aggregateSweep(costs []int, results []game.Result) []sweepRow {
	rows := make([]sweepRow, len(costs))
	index := make(map[int]int, len(costs))
	for i, c := range costs {
		rows[i].FightCost = c
		index[c] = i
	}

	observed := make([][]float64, len(costs))
	deviations := make([][]float64, len(costs))
	rounds := make([][]float64, len(costs))

	for _, res := range results {
		i, ok := index[res.Job.Config.Energy.FightCost]
		if !ok {
			continue
		}
		row := &rows[i]
		row.Runs++
		row.MidFood = res.Job.Config.Derived.MidFood
		if res.Err != nil || res.Report.Verdict == nil {
			row.Failed++
			continue
		}
		v := res.Report.Verdict
		row.Predicted = v.Predicted
		if v.Within {
			row.Within++
		}
		if res.Report.Summary.Termination == string(game.TerminationPopulationCollapse) {
			row.Collapses++
		}
		observed[i] = append(observed[i], v.Observed)
		deviations[i] = append(deviations[i], v.Deviation)
		rounds[i] = append(rounds[i], float64(res.Report.Summary.RoundsCompleted))
	}

	for i := range rows {
		if len(observed[i]) == 0 {
			continue
		}
		rows[i].ObservedMean, rows[i].ObservedStd = stat.MeanStdDev(observed[i], nil)
		if len(observed[i]) < 2 {
			rows[i].ObservedStd = 0
		}
		rows[i].MeanDeviation = stat.Mean(deviations[i], nil)
		rows[i].MeanRounds = stat.Mean(rounds[i], nil)
	}
	return rows
}
