package systems

import (
	"math/rand"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/telemetry"
	"github.com/pthm-cable/hawkdove/traits"
)

// RoundParams holds the per-round rules, copied out of the config once.
type RoundParams struct {
	MinFood       int
	MaxFood       int
	MaxAppearance int
	FightCost     int
	LossPerRound  int
	Living        int // culled when energy < Living
	Reproduction  int // breeds when energy > Reproduction
}

// ParamsFromConfig extracts round rules from cfg.
func ParamsFromConfig(cfg *config.Config) RoundParams {
	return RoundParams{
		MinFood:       cfg.Food.MinPerRound,
		MaxFood:       cfg.Food.MaxPerRound,
		MaxAppearance: cfg.Food.MaxAppearance,
		FightCost:     cfg.Energy.FightCost,
		LossPerRound:  cfg.Energy.LossPerRound,
		Living:        cfg.Energy.RequiredForLiving,
		Reproduction:  cfg.Energy.RequiredForReproduction,
	}
}

// RoundEngine advances a Population by one generation per Step.
// It draws all randomness from the rng it was given.
type RoundEngine struct {
	params    RoundParams
	rng       *rand.Rand
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	lifetimes *telemetry.LifetimeTracker
	round     int

	// OnMatchup, if set, is called for every resolved pairing.
	OnMatchup func(Matchup)
}

// NewRoundEngine creates an engine. perf and lifetimes may be nil.
func NewRoundEngine(params RoundParams, rng *rand.Rand, perf *telemetry.PerfCollector, lifetimes *telemetry.LifetimeTracker) *RoundEngine {
	return &RoundEngine{
		params:    params,
		rng:       rng,
		collector: telemetry.NewCollector(),
		perf:      perf,
		lifetimes: lifetimes,
	}
}

// Params returns the engine's rules.
func (e *RoundEngine) Params() RoundParams {
	return e.params
}

// Round returns the number of rounds stepped so far.
func (e *RoundEngine) Round() int {
	return e.round
}

// Step runs one round: awaken, compete, upkeep, cull, breed, sleep.
func (e *RoundEngine) Step(pop *Population) telemetry.RoundStats {
	e.round++
	e.collector.BeginRound(e.round)
	e.perf.StartRound()

	e.perf.StartPhase(telemetry.PhaseAwaken)
	pop.SetAllStatus(traits.Active)

	e.perf.StartPhase(telemetry.PhaseCompetition)
	e.compete(pop)

	e.perf.StartPhase(telemetry.PhaseUpkeep)
	Upkeep(pop, e.params.LossPerRound)

	e.perf.StartPhase(telemetry.PhaseCull)
	for _, v := range Cull(pop, e.params.Living) {
		e.collector.RecordDeath(v.Strategy)
		e.lifetimes.Remove(v.ID, e.round)
	}

	e.perf.StartPhase(telemetry.PhaseBreed)
	for _, b := range Breed(pop, e.params.Reproduction) {
		e.collector.RecordBirth(b.Strategy)
		e.lifetimes.Register(b.ChildID, b.Strategy, e.round, b.ParentID, b.Energy)
	}

	e.perf.StartPhase(telemetry.PhaseSleep)
	pop.SetAllStatus(traits.Asleep)

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	stats := e.collector.Flush(pop.EnergiesByStrategy())
	e.perf.EndRound()

	return stats
}

// drawFood picks the round's food uniformly in [MinFood, MaxFood].
func (e *RoundEngine) drawFood() int {
	return e.params.MinFood + e.rng.Intn(e.params.MaxFood-e.params.MinFood+1)
}
