package telemetry

import "github.com/pthm-cable/hawkdove/traits"

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	Strategy   traits.Strategy
	BirthRound int // 0 for the seeded cohort
	ParentID   uint64

	// Competition
	Contests  int
	FoodWon   int // total positive payoff from contests
	FightLoss int // total fight cost paid in hawk-hawk contests

	// Reproduction
	Children int

	// Energy
	PeakEnergy int
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint64]*LifetimeStats

	// Completed lifetimes by strategy
	deaths        [traits.NumStrategies]int
	roundsLived   [traits.NumStrategies]int
	childrenTotal [traits.NumStrategies]int
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint64]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint64, s traits.Strategy, birthRound int, parentID uint64, energy int) {
	if lt == nil {
		return
	}
	lt.stats[id] = &LifetimeStats{
		Strategy:   s,
		BirthRound: birthRound,
		ParentID:   parentID,
		PeakEnergy: energy,
	}
	if parent := lt.stats[parentID]; parentID != 0 && parent != nil {
		parent.Children++
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint64) *LifetimeStats {
	if lt == nil {
		return nil
	}
	return lt.stats[id]
}

// RecordContest records one matchup outcome for an agent.
func (lt *LifetimeTracker) RecordContest(id uint64, delta, fightCost int, fought bool) {
	ls := lt.Get(id)
	if ls == nil {
		return
	}
	ls.Contests++
	if fought {
		ls.FightLoss += fightCost
		ls.FoodWon += delta + fightCost
	} else {
		ls.FoodWon += delta
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint64, energy int) {
	if ls := lt.Get(id); ls != nil && energy > ls.PeakEnergy {
		ls.PeakEnergy = energy
	}
}

// Remove closes an agent's lifetime at deathRound and returns its stats.
func (lt *LifetimeTracker) Remove(id uint64, deathRound int) *LifetimeStats {
	if lt == nil {
		return nil
	}
	ls := lt.stats[id]
	if ls == nil {
		return nil
	}
	delete(lt.stats, id)

	lt.deaths[ls.Strategy]++
	lt.roundsLived[ls.Strategy] += deathRound - ls.BirthRound
	lt.childrenTotal[ls.Strategy] += ls.Children
	return ls
}

// Living returns how many agents are currently tracked.
func (lt *LifetimeTracker) Living() int {
	if lt == nil {
		return 0
	}
	return len(lt.stats)
}

// Lifespans summarizes completed lifetimes per strategy.
type Lifespans struct {
	HawkDeaths       int     `json:"hawk_deaths"`
	DoveDeaths       int     `json:"dove_deaths"`
	HawkMeanLifespan float64 `json:"hawk_mean_lifespan"`
	DoveMeanLifespan float64 `json:"dove_mean_lifespan"`
	HawkMeanChildren float64 `json:"hawk_mean_children"`
	DoveMeanChildren float64 `json:"dove_mean_children"`
}

// Lifespans returns mean rounds lived and children per completed lifetime.
func (lt *LifetimeTracker) Lifespans() Lifespans {
	if lt == nil {
		return Lifespans{}
	}
	mean := func(sum [traits.NumStrategies]int, s traits.Strategy) float64 {
		if lt.deaths[s] == 0 {
			return 0
		}
		return float64(sum[s]) / float64(lt.deaths[s])
	}
	return Lifespans{
		HawkDeaths:       lt.deaths[traits.Hawk],
		DoveDeaths:       lt.deaths[traits.Dove],
		HawkMeanLifespan: mean(lt.roundsLived, traits.Hawk),
		DoveMeanLifespan: mean(lt.roundsLived, traits.Dove),
		HawkMeanChildren: mean(lt.childrenTotal, traits.Hawk),
		DoveMeanChildren: mean(lt.childrenTotal, traits.Dove),
	}
}
