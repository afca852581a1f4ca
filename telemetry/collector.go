package telemetry

import "github.com/pthm-cable/hawkdove/traits"

// Collector accumulates events within a round and produces RoundStats.
type Collector struct {
	round int
	food  int

	// Event counters for the current round
	deadHawks  int
	deadDoves  int
	hawkBirths int
	doveBirths int
	pairs      int
	unpaired   int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// BeginRound resets counters and records the round number.
func (c *Collector) BeginRound(round int) {
	*c = Collector{round: round}
}

// RecordFood records the round's food draw.
func (c *Collector) RecordFood(food int) {
	c.food = food
}

// RecordPairing records how many pairs competed and how many agents sat out.
func (c *Collector) RecordPairing(pairs, unpaired int) {
	c.pairs = pairs
	c.unpaired = unpaired
}

// RecordDeath records a cull.
func (c *Collector) RecordDeath(s traits.Strategy) {
	if s == traits.Hawk {
		c.deadHawks++
	} else {
		c.deadDoves++
	}
}

// RecordBirth records a birth.
func (c *Collector) RecordBirth(s traits.Strategy) {
	if s == traits.Hawk {
		c.hawkBirths++
	} else {
		c.doveBirths++
	}
}

// Flush produces the RoundStats for the current round.
// hawkEnergies and doveEnergies are the end-of-round energies per type; their
// lengths are the population counts.
func (c *Collector) Flush(hawkEnergies, doveEnergies []float64) RoundStats {
	hawkMean, hawkP10, hawkP50, hawkP90 := ComputeEnergyStats(hawkEnergies)
	doveMean, doveP10, doveP50, doveP90 := ComputeEnergyStats(doveEnergies)

	var total float64
	for _, e := range hawkEnergies {
		total += e
	}
	for _, e := range doveEnergies {
		total += e
	}

	return RoundStats{
		Round: c.round,
		Food:  c.food,

		Hawks: len(hawkEnergies),
		Doves: len(doveEnergies),

		DeadHawks:  c.deadHawks,
		DeadDoves:  c.deadDoves,
		HawkBirths: c.hawkBirths,
		DoveBirths: c.doveBirths,

		Pairs:    c.pairs,
		Unpaired: c.unpaired,

		HawkEnergyMean: hawkMean,
		HawkEnergyP10:  hawkP10,
		HawkEnergyP50:  hawkP50,
		HawkEnergyP90:  hawkP90,

		DoveEnergyMean: doveMean,
		DoveEnergyP10:  doveP10,
		DoveEnergyP50:  doveP50,
		DoveEnergyP90:  doveP90,

		TotalEnergy: int(total),
	}
}
