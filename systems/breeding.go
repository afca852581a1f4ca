package systems

import "github.com/pthm-cable/hawkdove/traits"

// Birth records one reproduction.
type Birth struct {
	ParentID uint64
	ChildID  uint64
	Strategy traits.Strategy
	Energy   int // parent's post-halving energy, also given to the child
}

// Breed lets every agent with energy above threshold split: its energy is
// halved (floor) and a same-strategy Asleep child gets the same amount.
// Only agents alive at phase start are considered; newborns never breed in
// the round they are born.
func Breed(pop *Population, threshold int) []Birth {
	var births []Birth

	for _, e := range pop.Entities() {
		en := pop.Energy(e)
		if en.Value <= threshold {
			continue
		}
		en.Value = floorDiv(en.Value, 2)
		parent := *pop.Agent(e)
		energy := en.Value

		// Spawning may move components; en is not used past this point.
		childID := pop.NextID()
		pop.Spawn(parent.Strategy, energy)

		births = append(births, Birth{
			ParentID: parent.ID,
			ChildID:  childID,
			Strategy: parent.Strategy,
			Energy:   energy,
		})
	}
	return births
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
