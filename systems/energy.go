package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hawkdove/traits"
)

// Upkeep charges every agent loss energy, exactly once.
func Upkeep(pop *Population, loss int) {
	pop.AddEnergyAll(-loss)
}

// Victim identifies a culled agent.
type Victim struct {
	ID       uint64
	Strategy traits.Strategy
	Energy   int
}

// Cull removes every agent whose energy is below living and returns them in
// world order. Victims are collected before any removal.
func Cull(pop *Population, living int) []Victim {
	var victims []Victim
	var toRemove []ecs.Entity

	query := pop.agentFilter.Query()
	for query.Next() {
		agent, en, _ := query.Get()
		if en.Value < living {
			victims = append(victims, Victim{ID: agent.ID, Strategy: agent.Strategy, Energy: en.Value})
			toRemove = append(toRemove, query.Entity())
		}
	}

	// Query iteration complete
	for _, e := range toRemove {
		pop.Remove(e)
	}
	return victims
}
