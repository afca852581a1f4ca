package telemetry

import "gonum.org/v1/gonum/floats"

// Series holds the per-round curves of a run, aligned by index.
// Rounds with an empty composition carry zero fractions.
type Series struct {
	Rounds       []float64 `json:"rounds"`
	HawkFraction []float64 `json:"hawk_fraction"`
	DoveFraction []float64 `json:"dove_fraction"`
	// Population divided by its maximum over the run.
	ScaledPopulation []float64 `json:"scaled_population"`
}

// BuildSeries derives plot-ready curves from a run history.
func BuildSeries(history []RoundStats) Series {
	n := len(history)
	s := Series{
		Rounds:           make([]float64, n),
		HawkFraction:     make([]float64, n),
		DoveFraction:     make([]float64, n),
		ScaledPopulation: make([]float64, n),
	}
	for i, r := range history {
		s.Rounds[i] = float64(r.Round)
		comp := r.Composition()
		s.HawkFraction[i], _ = comp.HawkFraction()
		s.DoveFraction[i], _ = comp.DoveFraction()
		s.ScaledPopulation[i] = float64(comp.Total())
	}
	if n > 0 {
		if peak := floats.Max(s.ScaledPopulation); peak > 0 {
			floats.Scale(1/peak, s.ScaledPopulation)
		}
	}
	return s
}

// HawkFractions returns the hawk share of every round with a non-empty
// composition, in round order.
func HawkFractions(history []RoundStats) []float64 {
	out := make([]float64, 0, len(history))
	for _, r := range history {
		if f, ok := r.Composition().HawkFraction(); ok {
			out = append(out, f)
		}
	}
	return out
}
