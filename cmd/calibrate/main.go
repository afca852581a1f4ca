// Command calibrate searches for the parameter values whose simulated
// long-run hawk share best matches a target.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval     int     `csv:"eval"`
	Fitness  float64 `csv:"fitness"`
	Share    float64 `csv:"observed_share"`
	Missing  int     `csv:"missing"`
	Params   string  `csv:"params"`
	Duration string  `csv:"duration"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCalibrateCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "calibrate",
		Short:        "Tune parameters so the simulated hawk share matches a target",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			preset, _ := cmd.Flags().GetString("preset")
			tune, _ := cmd.Flags().GetStringSlice("tune")
			target, _ := cmd.Flags().GetFloat64("target")
			seeds, _ := cmd.Flags().GetInt("seeds")
			maxEvals, _ := cmd.Flags().GetInt("max-evals")
			method, _ := cmd.Flags().GetString("method")
			workers, _ := cmd.Flags().GetInt("workers")
			outputDir, _ := cmd.Flags().GetString("output")
			logLevel, _ := cmd.Flags().GetString("log-level")

			logger, err := game.NewLogger(logLevel, "text", os.Stderr)
			if err != nil {
				return err
			}

			baseCfg, err := config.LoadWithPreset(preset, configPath)
			if err != nil {
				return err
			}
			if err := baseCfg.Validate(); err != nil {
				return err
			}

			params, unknown, ok := NewParamVector(tune)
			if !ok {
				return fmt.Errorf("unknown parameter %q", unknown)
			}
			if params.Dim() == 0 {
				return fmt.Errorf("--tune needs at least one parameter")
			}

			if math.IsNaN(target) {
				eq, err := payoff.FromConfig(baseCfg).MixedEquilibrium()
				if err != nil {
					return fmt.Errorf("no --target given and the base config has no equilibrium: %w", err)
				}
				target = eq.HawkShare()
			}
			if target < 0 || target > 1 {
				return fmt.Errorf("--target %v outside [0, 1]", target)
			}

			evalSeeds := make([]int64, seeds)
			for i := range evalSeeds {
				evalSeeds[i] = int64(i*1000 + 42)
			}
			evaluator := NewFitnessEvaluator(params, evalSeeds, baseCfg, target, workers, logger)

			var m optimize.Method
			switch method {
			case "neldermead":
				m = &optimize.NelderMead{}
			case "cmaes":
				m = &optimize.CmaEsChol{InitStepSize: 0.3}
			default:
				return fmt.Errorf("unknown method %q (want neldermead or cmaes)", method)
			}

			out := cmd.OutOrStdout()
			var rows []evalRow
			bestFitness := math.Inf(1)
			var bestParams []float64
			startTime := time.Now()

			problem := optimize.Problem{
				Func: func(x []float64) float64 {
					raw := params.Clamp(params.Denormalize(x))
					evalStart := time.Now()
					fitness := evaluator.Evaluate(cmd.Context(), raw)
					share, missing := evaluator.Last()

					if fitness < bestFitness {
						bestFitness = fitness
						bestParams = raw
					}
					rows = append(rows, evalRow{
						Eval:     len(rows) + 1,
						Fitness:  fitness,
						Share:    share,
						Missing:  missing,
						Params:   fmt.Sprint(raw),
						Duration: time.Since(evalStart).Round(time.Millisecond).String(),
					})

					elapsed := time.Since(startTime)
					remaining := time.Duration(maxEvals-len(rows)) * (elapsed / time.Duration(len(rows)))
					fmt.Fprintf(out, "Eval %d/%d: params=%v share=%.4f fitness=%.6f (best=%.6f) | elapsed: %s, ETA: %s\n",
						len(rows), maxEvals, raw, share, fitness, bestFitness,
						formatDuration(elapsed), formatDuration(remaining))
					return fitness
				},
			}

			initX := params.Normalize(params.ExtractFromConfig(baseCfg))
			fmt.Fprintf(out, "Calibrating %v towards hawk share %.4f with %s, %d seeds per evaluation\n",
				tune, target, method, seeds)

			if _, err := optimize.Minimize(problem, initX, &optimize.Settings{FuncEvaluations: maxEvals}, m); err != nil {
				logger.Warn("optimization ended", "error", err)
			}
			if bestParams == nil {
				return fmt.Errorf("no evaluation completed")
			}

			fmt.Fprintf(out, "\nCalibration complete after %d evaluations in %s\n", len(rows), formatDuration(time.Since(startTime)))
			fmt.Fprintf(out, "Best fitness: %.6f\n", bestFitness)
			for i, spec := range params.Specs {
				fmt.Fprintf(out, "  %s: %.0f\n", spec.Path, bestParams[i])
			}

			if outputDir == "" {
				return nil
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			if err := telemetry.WriteCSV(filepath.Join(outputDir, "calibrate_log.csv"), rows); err != nil {
				return err
			}
			bestCfg := baseCfg.Clone()
			params.ApplyToConfig(bestCfg, bestParams)
			configOutPath := filepath.Join(outputDir, "best_config.yaml")
			if err := bestCfg.WriteYAML(configOutPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nBest config saved to: %s\n", configOutPath)
			return nil
		},
	}

	cmd.Flags().String("config", "", "Base config YAML file (empty = use defaults)")
	cmd.Flags().String("preset", "", "Named preset for the base config")
	cmd.Flags().StringSlice("tune", []string{"fight_cost"}, "Parameters to tune: fight_cost, loss_per_round, required_for_reproduction")
	cmd.Flags().Float64("target", math.NaN(), "Target hawk share (default: the base config's equilibrium)")
	cmd.Flags().Int("seeds", 3, "Number of seeds per evaluation")
	cmd.Flags().Int("max-evals", 40, "Maximum number of evaluations")
	cmd.Flags().String("method", "neldermead", "Optimizer: neldermead or cmaes")
	cmd.Flags().Int("workers", 0, "Concurrent runs per evaluation (0 = GOMAXPROCS)")
	cmd.Flags().String("output", "", "Output directory for calibrate_log.csv and best_config.yaml")
	cmd.Flags().String("log-level", "warn", "Log level for simulation output")
	return cmd
}
