// Package payoff builds the Hawk-Dove payoff tensor and solves it for
// dominant-strategy and mixed-strategy equilibria.
package payoff

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/traits"
)

// Player indices into a payoff cell.
const (
	RowPlayer    = 0
	ColumnPlayer = 1
)

// Matrix is M[row][col][player] with strategies indexed Hawk=0, Dove=1.
type Matrix [traits.NumStrategies][traits.NumStrategies][2]int

// Model holds the payoff tensor for one (midFood, fightCost) pair.
// It is immutable after construction.
type Model struct {
	midFood   int
	fightCost int
	m         Matrix
}

// New builds the payoff tensor.
func New(midFood, fightCost int) *Model {
	half := midFood / 2
	return &Model{
		midFood:   midFood,
		fightCost: fightCost,
		m: Matrix{
			{ // row plays Hawk
				{half - fightCost, half - fightCost}, // vs Hawk
				{midFood, 0},                         // vs Dove
			},
			{ // row plays Dove
				{0, midFood}, // vs Hawk
				{half, half}, // vs Dove
			},
		},
	}
}

// FromConfig builds the tensor from the food range midpoint and fight cost.
func FromConfig(cfg *config.Config) *Model {
	midFood := (cfg.Food.MinPerRound + cfg.Food.MaxPerRound) / 2
	return New(midFood, cfg.Energy.FightCost)
}

// MidFood returns the food value the tensor was built from.
func (m *Model) MidFood() int { return m.midFood }

// FightCost returns the fight cost the tensor was built from.
func (m *Model) FightCost() int { return m.fightCost }

// Matrix returns a copy of the tensor.
func (m *Model) Matrix() Matrix { return m.m }

// Cell returns both players' payoffs for a strategy pair.
func (m *Model) Cell(row, col traits.Strategy) [2]int {
	return m.m[row][col]
}

// Payoff returns one player's payoff for a strategy pair.
func (m *Model) Payoff(row, col traits.Strategy, player int) int {
	return m.m[row][col][player]
}

// Dense returns one player's 2x2 payoff table as a gonum matrix
// (rows = row player's strategy, columns = column player's strategy).
func (m *Model) Dense(player int) *mat.Dense {
	data := make([]float64, 0, traits.NumStrategies*traits.NumStrategies)
	for _, r := range traits.Strategies {
		for _, c := range traits.Strategies {
			data = append(data, float64(m.m[r][c][player]))
		}
	}
	return mat.NewDense(traits.NumStrategies, traits.NumStrategies, data)
}

// ExpectedPayoffs returns each player's expected payoff when the row player
// mixes with p and the column player with q.
func (m *Model) ExpectedPayoffs(p, q [2]float64) (row, col float64) {
	pv := mat.NewVecDense(2, p[:])
	qv := mat.NewVecDense(2, q[:])
	return mat.Inner(pv, m.Dense(RowPlayer), qv), mat.Inner(pv, m.Dense(ColumnPlayer), qv)
}
