// Package oracle checks a simulated run against the analytic equilibrium.
package oracle

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// ErrNoComposition is returned when no round in the history has a living agent.
var ErrNoComposition = errors.New("no round with a non-empty composition")

// Verdict compares the observed tail hawk share with the predicted one.
type Verdict struct {
	Predicted float64 `json:"predicted_hawk_share"`
	Observed  float64 `json:"observed_hawk_share"` // mean over the tail
	StdDev    float64 `json:"observed_std_dev"`
	Deviation float64 `json:"deviation"` // |Observed - Predicted|
	Tolerance float64 `json:"tolerance"`
	Within    bool    `json:"within_tolerance"`
	Samples   int     `json:"samples"` // tail rounds used
}

// LogValue implements slog.LogValuer.
func (v Verdict) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("predicted", v.Predicted),
		slog.Float64("observed", v.Observed),
		slog.Float64("std_dev", v.StdDev),
		slog.Float64("deviation", v.Deviation),
		slog.Bool("within", v.Within),
		slog.Int("samples", v.Samples),
	)
}

// Tail returns the last ceil(fraction*len) elements of xs, at least one
// when xs is non-empty.
func Tail(xs []float64, fraction float64) []float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	k := int(math.Ceil(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return xs[n-k:]
}

// Compare reduces history to its hawk-fraction series, skipping rounds where
// nobody is alive, and compares the mean of the last tailFraction of it with
// the equilibrium hawk share.
func Compare(eq payoff.Equilibrium, history []telemetry.RoundStats, tailFraction, tolerance float64) (Verdict, error) {
	series := telemetry.HawkFractions(history)
	if len(series) == 0 {
		return Verdict{}, ErrNoComposition
	}
	if tailFraction <= 0 || tailFraction > 1 {
		return Verdict{}, fmt.Errorf("tail fraction %v outside (0, 1]", tailFraction)
	}

	tail := Tail(series, tailFraction)
	mean, std := stat.MeanStdDev(tail, nil)
	if len(tail) < 2 {
		std = 0
	}

	predicted := eq.HawkShare()
	deviation := math.Abs(mean - predicted)
	return Verdict{
		Predicted: predicted,
		Observed:  mean,
		StdDev:    std,
		Deviation: deviation,
		Tolerance: tolerance,
		Within:    deviation <= tolerance,
		Samples:   len(tail),
	}, nil
}
