// Package telemetry records per-round statistics and writes them to CSV and
// JSON sinks.
package telemetry

import (
	"context"
	"log/slog"
	"sort"
)

// RoundStats holds the tallies for one completed round.
type RoundStats struct {
	Round int `csv:"round" json:"round"`
	Food  int `csv:"food" json:"food"`

	// Population counts at round end
	Hawks int `csv:"hawks" json:"hawks"`
	Doves int `csv:"doves" json:"doves"`

	// Events during the round
	DeadHawks  int `csv:"dead_hawks" json:"dead_hawks"`
	DeadDoves  int `csv:"dead_doves" json:"dead_doves"`
	HawkBirths int `csv:"hawk_births" json:"hawk_births"`
	DoveBirths int `csv:"dove_births" json:"dove_births"`

	// Pairing
	Pairs    int `csv:"pairs" json:"pairs"`
	Unpaired int `csv:"unpaired" json:"unpaired"`

	// Energy distribution (sampled at round end)
	HawkEnergyMean float64 `csv:"hawk_energy_mean" json:"hawk_energy_mean"`
	HawkEnergyP10  float64 `csv:"hawk_energy_p10" json:"hawk_energy_p10"`
	HawkEnergyP50  float64 `csv:"hawk_energy_p50" json:"hawk_energy_p50"`
	HawkEnergyP90  float64 `csv:"hawk_energy_p90" json:"hawk_energy_p90"`

	DoveEnergyMean float64 `csv:"dove_energy_mean" json:"dove_energy_mean"`
	DoveEnergyP10  float64 `csv:"dove_energy_p10" json:"dove_energy_p10"`
	DoveEnergyP50  float64 `csv:"dove_energy_p50" json:"dove_energy_p50"`
	DoveEnergyP90  float64 `csv:"dove_energy_p90" json:"dove_energy_p90"`

	TotalEnergy int `csv:"total_energy" json:"total_energy"`
}

// Population returns the living agent count at round end.
func (s RoundStats) Population() int {
	return s.Hawks + s.Doves
}

// Composition returns the hawk/dove split at round end.
func (s RoundStats) Composition() Composition {
	return Composition{Hawks: s.Hawks, Doves: s.Doves}
}

// Deaths returns agents culled this round.
func (s RoundStats) Deaths() int {
	return s.DeadHawks + s.DeadDoves
}

// Births returns agents born this round.
func (s RoundStats) Births() int {
	return s.HawkBirths + s.DoveBirths
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s RoundStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("round", s.Round),
		slog.Int("food", s.Food),
		slog.Int("hawks", s.Hawks),
		slog.Int("doves", s.Doves),
		slog.Int("dead_hawks", s.DeadHawks),
		slog.Int("dead_doves", s.DeadDoves),
		slog.Int("hawk_births", s.HawkBirths),
		slog.Int("dove_births", s.DoveBirths),
		slog.Int("pairs", s.Pairs),
		slog.Int("unpaired", s.Unpaired),
		slog.Float64("hawk_energy_mean", s.HawkEnergyMean),
		slog.Float64("dove_energy_mean", s.DoveEnergyMean),
		slog.Int("total_energy", s.TotalEnergy),
	}
	if pct, ok := s.Composition().HawkPercent(); ok {
		attrs = append(attrs, slog.Float64("hawk_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the round stats at the given level.
func (s RoundStats) LogStats(logger *slog.Logger, level slog.Level) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), level, "round", "stats", s)
}
