package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/hawkdove/config"
)

func TestNewParamVector(t *testing.T) {
	pv, _, ok := NewParamVector([]string{"fight_cost", "loss_per_round"})
	if !ok || pv.Dim() != 2 {
		t.Fatalf("expected 2 params, got %+v", pv)
	}
	if _, unknown, ok := NewParamVector([]string{"fight_cost", "bogus"}); ok || unknown != "bogus" {
		t.Errorf("expected bogus to be rejected, got ok=%v unknown=%q", ok, unknown)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv, _, _ := NewParamVector([]string{"fight_cost", "required_for_reproduction"})
	raw := []float64{60, 250}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("param %d: %v -> %v", i, raw[i], back[i])
		}
	}
}

func TestClampAndApply(t *testing.T) {
	pv, _, _ := NewParamVector([]string{"fight_cost", "loss_per_round"})

	got := pv.Clamp([]float64{-5, 7.6})
	if got[0] != 0 || got[1] != 8 {
		t.Errorf("Clamp = %v, want [0 8]", got)
	}

	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{33.4, 500})
	if cfg.Energy.FightCost != 33 || cfg.Energy.LossPerRound != 40 {
		t.Errorf("applied fight cost %d, loss %d", cfg.Energy.FightCost, cfg.Energy.LossPerRound)
	}
	if ex := pv.ExtractFromConfig(cfg); ex[0] != 33 || ex[1] != 40 {
		t.Errorf("ExtractFromConfig = %v", ex)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluate(t *testing.T) {
	cfg := config.Default()
	cfg.Population.StartingDoves = 40
	cfg.Population.StartingHawks = 40
	cfg.Simulation.Rounds = 20
	cfg.ComputeDerived()

	pv, _, _ := NewParamVector([]string{"fight_cost"})
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, cfg, 0.5, 2, quietLogger())

	fitness := fe.Evaluate(context.Background(), []float64{60})
	if fitness < 0 || fitness > missPenalty {
		t.Errorf("fitness = %v, want within [0, %v]", fitness, missPenalty)
	}
	share, missing := fe.Last()
	if missing == 0 && (share < 0 || share > 1) {
		t.Errorf("share = %v", share)
	}
	if cfg.Energy.FightCost != 60 {
		t.Error("Evaluate mutated the base config")
	}
}

func TestEvaluatePenalizesMissingVerdicts(t *testing.T) {
	cfg := config.Default()
	cfg.Population.StartingDoves = 1
	cfg.Population.StartingHawks = 1
	cfg.ComputeDerived()

	pv, _, _ := NewParamVector([]string{"fight_cost"})
	fe := NewFitnessEvaluator(pv, []int64{1, 2, 3}, cfg, 0.5, 1, quietLogger())

	if fitness := fe.Evaluate(context.Background(), []float64{60}); fitness != missPenalty {
		t.Errorf("fitness = %v, want %v", fitness, missPenalty)
	}
	if share, missing := fe.Last(); missing != 3 || !math.IsNaN(share) {
		t.Errorf("Last() = %v, %d", share, missing)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute + 3*time.Second, "2h05m03s"},
		{0, "0m00s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCalibrateCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "base.yaml")
	base := "simulation:\n  rounds: 10\npopulation:\n  starting_doves: 30\n  starting_hawks: 30\n"
	if err := os.WriteFile(cfgPath, []byte(base), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	cmd := newCalibrateCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"--config", cfgPath,
		"--seeds", "1",
		"--max-evals", "3",
		"--workers", "1",
		"--log-level", "error",
		"--output", outDir,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("calibrate failed: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Calibration complete") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	for _, name := range []string{"calibrate_log.csv", "best_config.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestCalibrateCommandRejectsUnknownParameter(t *testing.T) {
	cmd := newCalibrateCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--tune", "bogus"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("expected unknown parameter error, got %v", err)
	}
}
