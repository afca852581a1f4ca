package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/hawkdove/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}
	// Methods on a nil manager are no-ops
	if err := om.WriteRound(RoundStats{Round: 1}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := om.WriteRound(RoundStats{Round: i, Hawks: i, Doves: 10 - i}); err != nil {
			t.Fatalf("WriteRound failed: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseBreed: 12}}, 3); err != nil {
		t.Fatalf("WritePerf failed: %v", err)
	}
	if err := om.WriteSummary(Summary{RoundsCompleted: 3, Termination: "rounds_exhausted"}); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "rounds.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("rounds.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "round,food,hawks,doves") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "round,") != 1 {
		t.Error("header written more than once")
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot not loadable: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got Summary
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("summary.json invalid: %v", err)
	}
	if got.RoundsCompleted != 3 || got.Termination != "rounds_exhausted" {
		t.Errorf("summary = %+v", got)
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "breed_pct") {
		t.Error("perf.csv missing breed_pct column")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	rows := []RoundStats{{Round: 1}, {Round: 2}}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(strings.Split(strings.TrimSpace(string(data)), "\n")); n != 3 {
		t.Errorf("got %d lines, want 3", n)
	}
}
