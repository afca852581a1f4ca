package game

import (
	"context"
	"time"

	"github.com/pthm-cable/hawkdove/telemetry"
)

// stopReason reports whether the loop condition fails before the next round.
// Exhausted rounds take precedence over a collapse on the same check.
func (s *Simulation) stopReason() Termination {
	if s.currentRound > s.cfg.Simulation.Rounds {
		return TerminationRoundsExhausted
	}
	if s.pop.Len() <= collapseThreshold {
		return TerminationPopulationCollapse
	}
	if s.maxPopulation > 0 && s.pop.Len() > s.maxPopulation {
		return TerminationPopulationCap
	}
	return TerminationNone
}

// Done reports whether the run has terminated.
func (s *Simulation) Done() bool {
	return s.termination != TerminationNone
}

// Step runs one round if the loop condition still holds. It returns false,
// and records the termination reason, once the run is over.
func (s *Simulation) Step() (telemetry.RoundStats, bool) {
	if s.Done() {
		return telemetry.RoundStats{}, false
	}
	if reason := s.stopReason(); reason != TerminationNone {
		s.finish(reason)
		return telemetry.RoundStats{}, false
	}
	if s.started.IsZero() {
		s.started = time.Now()
	}

	stats := s.engine.Step(s.pop)
	s.history = append(s.history, stats)
	s.currentRound++

	s.flushTelemetry(stats)
	return stats, true
}

// Run steps until the rounds are exhausted, the population collapses or
// outgrows Options.MaxPopulation, or ctx is cancelled. Cancellation is
// checked between rounds; a cancelled run returns ctx.Err() and keeps the
// rounds completed so far.
func (s *Simulation) Run(ctx context.Context) error {
	s.logger.Info("starting simulation",
		"seed", s.seed,
		"rounds", s.cfg.Simulation.Rounds,
		"population", s.initial,
	)

	for {
		if err := ctx.Err(); err != nil {
			s.finish(TerminationCancelled)
			return err
		}
		if _, ok := s.Step(); !ok {
			return nil
		}
	}
}

// finish records the termination reason and writes the run report.
func (s *Simulation) finish(reason Termination) {
	if s.finished {
		return
	}
	s.finished = true
	s.termination = reason
	if !s.started.IsZero() {
		s.wallTime = time.Since(s.started)
	}

	report := s.Report()
	s.logger.Info("simulation finished", "summary", report.Summary)
	if report.Verdict != nil {
		s.logger.Info("equilibrium check", "equilibrium", *report.Equilibrium, "verdict", *report.Verdict)
	}

	if err := s.outputManager.WriteSummary(report); err != nil {
		s.logger.Error("failed to write summary", "error", err)
	}
}
