package game

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.StartingDoves = 50
	cfg.Population.StartingHawks = 50
	cfg.Simulation.Rounds = 30
	cfg.Simulation.Seed = 11
	cfg.ComputeDerived()
	return cfg
}

func TestZeroRoundsLeavesPopulationUntouched(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Rounds = 0

	sim, err := New(cfg, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	before := sim.Population().States()

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(sim.History()) != 0 || sim.Round() != 0 {
		t.Errorf("history = %d rounds, want 0", len(sim.History()))
	}
	if sim.Termination() != TerminationRoundsExhausted {
		t.Errorf("termination = %v, want rounds_exhausted", sim.Termination())
	}
	if after := sim.Population().States(); !reflect.DeepEqual(before, after) {
		t.Error("population changed without any round")
	}
}

func TestRunsAllRounds(t *testing.T) {
	cfg := smallConfig()
	sim, err := New(cfg, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	history := sim.History()
	if sim.Termination() == TerminationRoundsExhausted && len(history) != 30 {
		t.Errorf("history = %d rounds, want 30", len(history))
	}
	for i, r := range history {
		if r.Round != i+1 {
			t.Errorf("history[%d].Round = %d", i, r.Round)
		}
	}

	sum := sim.Summary()
	if sum.RoundsCompleted != len(history) || sum.Seed != 11 {
		t.Errorf("summary = %+v", sum)
	}
	if got := sim.Composition(); got != sum.Final {
		t.Errorf("final composition %+v, live %+v", sum.Final, got)
	}

	// Step after termination is a no-op
	if _, ok := sim.Step(); ok {
		t.Error("Step after termination should report false")
	}
}

func TestCollapseBeforeFirstRound(t *testing.T) {
	cfg := smallConfig()
	cfg.Population.StartingDoves = 1
	cfg.Population.StartingHawks = 1
	cfg.ComputeDerived()

	sim, err := New(cfg, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sim.Termination() != TerminationPopulationCollapse {
		t.Errorf("termination = %v, want population_collapse", sim.Termination())
	}
	if len(sim.History()) != 0 {
		t.Errorf("history = %d rounds, want 0", len(sim.History()))
	}
}

func TestCollapseAfterMassCull(t *testing.T) {
	cfg := smallConfig()
	cfg.Energy.LossPerRound = 10000

	sim, err := New(cfg, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sim.Termination() != TerminationPopulationCollapse {
		t.Fatalf("termination = %v, want population_collapse", sim.Termination())
	}
	history := sim.History()
	if len(history) != 1 {
		t.Fatalf("history = %d rounds, want 1", len(history))
	}
	if history[0].Deaths() != 100 || history[0].Population() != 0 {
		t.Errorf("round 1 = %+v, want everyone culled", history[0])
	}

	report := sim.Report()
	if report.Verdict != nil || report.VerdictError == "" {
		t.Errorf("empty composition should give a verdict error, got %+v", report)
	}
	if _, ok := report.Summary.Final.HawkPercent(); ok {
		t.Error("final composition should be empty")
	}
}

// boomingConfig keeps every energy non-negative and above the breeding
// threshold with nobody culled, so the population doubles each round.
func boomingConfig() *config.Config {
	cfg := smallConfig()
	cfg.Energy.RequiredForReproduction = -1
	cfg.Energy.RequiredForLiving = -1000000
	cfg.Energy.LossPerRound = 0
	cfg.Energy.FightCost = 0
	return cfg
}

func TestPopulationCapEndsRun(t *testing.T) {
	sim, err := New(boomingConfig(), Options{Logger: quietLogger(), MaxPopulation: 300})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sim.Termination() != TerminationPopulationCap {
		t.Fatalf("termination = %v, want population_cap", sim.Termination())
	}
	// 100 -> 200 -> 400, then the third round is refused
	history := sim.History()
	if len(history) != 2 {
		t.Fatalf("history = %d rounds, want 2", len(history))
	}
	if got := sim.Population().Len(); got != 400 {
		t.Errorf("population = %d, want 400", got)
	}
	if sum := sim.Summary(); sum.PeakPopulation >= 2*300 {
		t.Errorf("peak population %d not bounded by twice the cap", sum.PeakPopulation)
	}
}

func TestNoCapByDefault(t *testing.T) {
	cfg := boomingConfig()
	cfg.Simulation.Rounds = 4

	sim, err := New(cfg, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sim.Termination() != TerminationRoundsExhausted || sim.Population().Len() != 1600 {
		t.Errorf("termination = %v, population = %d; want rounds_exhausted, 1600",
			sim.Termination(), sim.Population().Len())
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() []telemetry.RoundStats {
		sim, err := New(smallConfig(), Options{Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}
		if err := sim.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return sim.History()
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different histories")
	}
}

func TestCancelStopsBetweenRounds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen int
	sim, err := New(smallConfig(), Options{
		Logger: quietLogger(),
		StatsCallback: func(telemetry.RoundStats) {
			seen++
			if seen == 3 {
				cancel()
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = sim.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if len(sim.History()) != 3 {
		t.Errorf("history = %d rounds, want 3", len(sim.History()))
	}
	if sim.Termination() != TerminationCancelled {
		t.Errorf("termination = %v, want cancelled", sim.Termination())
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := smallConfig()
	cfg.Food.MinPerRound = 80

	if _, err := New(cfg, Options{Logger: quietLogger()}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := smallConfig()
	cfg.Simulation.Rounds = 10
	cfg.Telemetry.PerfWindow = 5

	sim, err := New(cfg, Options{Logger: quietLogger(), OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := sim.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"config.yaml", "rounds.csv", "perf.csv", "bookmarks.csv", "summary.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("summary.json: %v", err)
	}
	if report.Equilibrium == nil {
		t.Fatal("report has no equilibrium")
	}
	if report.Equilibrium.HawkShare() <= 0.33 || report.Equilibrium.HawkShare() >= 0.34 {
		t.Errorf("hawk share = %v, want 1/3", report.Equilibrium.HawkShare())
	}
	if report.Summary.RoundsCompleted != len(report.Series.Rounds) {
		t.Errorf("series has %d points for %d rounds", len(report.Series.Rounds), report.Summary.RoundsCompleted)
	}
}
