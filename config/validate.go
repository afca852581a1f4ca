package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError describes one rejected parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// MinPairingPopulation is the smallest population that keeps the round loop running.
const MinPairingPopulation = 3

// Validate checks parameter ranges and ordering. All problems are reported
// together; the result wraps ErrInvalidConfig when non-nil.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field, reason string) {
		if !ok {
			errs = append(errs, &ConfigError{Field: field, Reason: reason})
		}
	}

	check(c.Simulation.Rounds >= 0, "simulation.rounds", "must be >= 0")
	check(c.Population.StartingDoves >= 0, "population.starting_doves", "must be >= 0")
	check(c.Population.StartingHawks >= 0, "population.starting_hawks", "must be >= 0")
	check(c.Population.StartingEnergy >= 0, "population.starting_energy", "must be >= 0")
	check(c.Food.MinPerRound >= 0, "food.min_per_round", "must be >= 0")
	check(c.Food.MaxPerRound >= c.Food.MinPerRound, "food.max_per_round",
		fmt.Sprintf("must be >= food.min_per_round (%d)", c.Food.MinPerRound))
	check(c.Food.MaxAppearance >= 0, "food.max_appearance", "must be >= 0")
	check(c.Energy.LossPerRound >= 0, "energy.loss_per_round", "must be >= 0")
	check(c.Energy.FightCost >= 0, "energy.fight_cost", "must be >= 0")
	check(c.Telemetry.PerfWindow >= 0, "telemetry.perf_window", "must be >= 0")
	check(c.Oracle.TailFraction > 0 && c.Oracle.TailFraction <= 1, "oracle.tail_fraction", "must be in (0, 1]")
	check(c.Oracle.Tolerance >= 0, "oracle.tolerance", "must be >= 0")

	return errors.Join(errs...)
}

// Warnings returns non-fatal observations about the configuration.
func (c *Config) Warnings() []string {
	var out []string
	if n := c.Population.StartingDoves + c.Population.StartingHawks; n < MinPairingPopulation {
		out = append(out, fmt.Sprintf("starting population %d is below %d; no round will run", n, MinPairingPopulation))
	}
	if c.Energy.RequiredForReproduction < c.Energy.RequiredForLiving {
		out = append(out, "energy.required_for_reproduction is below energy.required_for_living; offspring may be culled on their next round")
	}
	return out
}
