package payoff

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/hawkdove/traits"
)

// ErrDegenerateGame is returned when the indifference system is singular and
// no interior mixed equilibrium exists. It signals a configuration problem.
var ErrDegenerateGame = errors.New("degenerate game: indifference system is singular")

// singularEpsilon is the determinant magnitude treated as zero.
const singularEpsilon = 1e-12

// Profile is a pure-strategy pair.
type Profile struct {
	Row traits.Strategy `json:"row"`
	Col traits.Strategy `json:"col"`
}

// Equilibrium is a pair of mixed strategies: P over the row player's
// strategies, Q over the column player's. Dominant is set when the result
// came from a strong dominant strategy equilibrium.
type Equilibrium struct {
	P        [2]float64 `json:"p"`
	Q        [2]float64 `json:"q"`
	Dominant bool       `json:"dominant"`
}

// HawkShare is the row player's probability of playing Hawk. In this
// symmetric game it is the predicted long-run hawk fraction.
func (e Equilibrium) HawkShare() float64 {
	return e.P[traits.Hawk]
}

// LogValue implements slog.LogValuer.
func (e Equilibrium) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("p_hawk", e.P[0]),
		slog.Float64("p_dove", e.P[1]),
		slog.Float64("q_hawk", e.Q[0]),
		slog.Float64("q_dove", e.Q[1]),
		slog.Bool("dominant", e.Dominant),
	)
}

// dominantFor returns the strategy that strictly beats the other against
// every opponent choice, if one exists.
func (m *Model) dominantFor(player int) (traits.Strategy, bool) {
	for _, s := range traits.Strategies {
		other := s.Other()
		dominates := true
		for _, opp := range traits.Strategies {
			var mine, alt int
			if player == RowPlayer {
				mine, alt = m.m[s][opp][RowPlayer], m.m[other][opp][RowPlayer]
			} else {
				mine, alt = m.m[opp][s][ColumnPlayer], m.m[opp][other][ColumnPlayer]
			}
			if mine <= alt {
				dominates = false
				break
			}
		}
		if dominates {
			return s, true
		}
	}
	return 0, false
}

// StrongDominantEquilibria returns every profile in which both players play
// a strongly dominant strategy. With two strategies each player has at most
// one, so the result has zero or one element.
func (m *Model) StrongDominantEquilibria() []Profile {
	row, okRow := m.dominantFor(RowPlayer)
	col, okCol := m.dominantFor(ColumnPlayer)
	if !okRow || !okCol {
		return nil
	}
	return []Profile{{Row: row, Col: col}}
}

// MixedEquilibrium returns the mixed-strategy Nash equilibrium found with
// the indifference principle. A strong dominant strategy equilibrium, when
// present, short-circuits to the matching unit vectors.
func (m *Model) MixedEquilibrium() (Equilibrium, error) {
	if sdse := m.StrongDominantEquilibria(); len(sdse) > 0 {
		var eq Equilibrium
		eq.P[sdse[0].Row] = 1
		eq.Q[sdse[0].Col] = 1
		eq.Dominant = true
		return eq, nil
	}

	// q makes the row player indifferent between Hawk and Dove.
	rowDiff := [2]float64{
		float64(m.m[traits.Hawk][traits.Hawk][RowPlayer] - m.m[traits.Dove][traits.Hawk][RowPlayer]),
		float64(m.m[traits.Hawk][traits.Dove][RowPlayer] - m.m[traits.Dove][traits.Dove][RowPlayer]),
	}
	q, err := solveIndifference(rowDiff)
	if err != nil {
		return Equilibrium{}, fmt.Errorf("column mix: %w", err)
	}

	// p makes the column player indifferent.
	colDiff := [2]float64{
		float64(m.m[traits.Hawk][traits.Hawk][ColumnPlayer] - m.m[traits.Hawk][traits.Dove][ColumnPlayer]),
		float64(m.m[traits.Dove][traits.Hawk][ColumnPlayer] - m.m[traits.Dove][traits.Dove][ColumnPlayer]),
	}
	p, err := solveIndifference(colDiff)
	if err != nil {
		return Equilibrium{}, fmt.Errorf("row mix: %w", err)
	}

	return Equilibrium{P: p, Q: q}, nil
}

// solveIndifference solves [[1, 1], [d0, d1]] x = [1, 0] by Cramer's rule.
func solveIndifference(d [2]float64) ([2]float64, error) {
	det := d[1] - d[0]
	if math.Abs(det) <= singularEpsilon {
		return [2]float64{}, fmt.Errorf("%w (d0=%g, d1=%g)", ErrDegenerateGame, d[0], d[1])
	}
	return [2]float64{d[1] / det, -d[0] / det}, nil
}

// Solve is the equilibrium query: a pure function of the food midpoint and
// fight cost.
func Solve(midFood, fightCost int) (Equilibrium, error) {
	return New(midFood, fightCost).MixedEquilibrium()
}
