package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hawkdove/traits"
)

// Matchup records one resolved pairing.
type Matchup struct {
	Round          int
	Food           int
	First          uint64
	Second         uint64
	FirstStrategy  traits.Strategy
	SecondStrategy traits.Strategy
	FirstDelta     int
	SecondDelta    int
}

// Contest returns the energy gained by each side of a pairing over food.
// Hawks meeting hawks split the food and both pay fightCost; a hawk takes
// everything from a dove; doves split evenly.
func Contest(first, second traits.Strategy, food, fightCost int) (firstDelta, secondDelta int) {
	half := food / 2
	switch {
	case first == traits.Hawk && second == traits.Hawk:
		return half - fightCost, half - fightCost
	case first == traits.Hawk:
		return food, 0
	case second == traits.Hawk:
		return 0, food
	default:
		return half, half
	}
}

// PairCount returns how many pairs compete among n agents when pairing stops
// once more than maxAppearance pairs have been processed.
func PairCount(n, maxAppearance int) int {
	pairs := n / 2
	if limit := maxAppearance + 1; pairs > limit {
		pairs = limit
	}
	return pairs
}

// compete draws the food, shuffles the population and resolves each pair.
func (e *RoundEngine) compete(pop *Population) {
	food := e.drawFood()
	e.collector.RecordFood(food)

	order := pop.Entities()
	e.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	pairs := PairCount(len(order), e.params.MaxAppearance)
	for k := 0; k < pairs; k++ {
		e.resolve(pop, order[2*k], order[2*k+1], food)
	}
	e.collector.RecordPairing(pairs, len(order)-2*pairs)
}

// resolve applies one contest's payoffs and puts both agents to sleep.
func (e *RoundEngine) resolve(pop *Population, a, b ecs.Entity, food int) {
	agentA := *pop.Agent(a)
	agentB := *pop.Agent(b)
	da, db := Contest(agentA.Strategy, agentB.Strategy, food, e.params.FightCost)

	e.apply(pop, a, agentA.ID, da)
	e.apply(pop, b, agentB.ID, db)

	fought := agentA.Strategy == traits.Hawk && agentB.Strategy == traits.Hawk
	e.lifetimes.RecordContest(agentA.ID, da, e.params.FightCost, fought)
	e.lifetimes.RecordContest(agentB.ID, db, e.params.FightCost, fought)

	if e.OnMatchup != nil {
		e.OnMatchup(Matchup{
			Round:          e.round,
			Food:           food,
			First:          agentA.ID,
			Second:         agentB.ID,
			FirstStrategy:  agentA.Strategy,
			SecondStrategy: agentB.Strategy,
			FirstDelta:     da,
			SecondDelta:    db,
		})
	}
}

func (e *RoundEngine) apply(pop *Population, ent ecs.Entity, id uint64, delta int) {
	en := pop.Energy(ent)
	en.Value += delta
	pop.Activity(ent).Status = traits.Asleep
	e.lifetimes.UpdateEnergy(id, en.Value)
}
