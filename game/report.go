package game

import (
	"github.com/pthm-cable/hawkdove/oracle"
	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// Report is the end-of-run record written to summary.json.
type Report struct {
	Summary          telemetry.Summary    `json:"summary"`
	Equilibrium      *payoff.Equilibrium  `json:"equilibrium,omitempty"`
	EquilibriumError string               `json:"equilibrium_error,omitempty"`
	Verdict          *oracle.Verdict      `json:"verdict,omitempty"`
	VerdictError     string               `json:"verdict_error,omitempty"`
	Bookmarks        []telemetry.Bookmark `json:"bookmarks,omitempty"`
	Series           telemetry.Series     `json:"series"`
}

// Report builds the run report: totals, the analytic equilibrium for the
// configured payoffs and how the observed hawk share compares with it.
// A degenerate game or an empty history is reported, not returned.
func (s *Simulation) Report() Report {
	r := Report{
		Summary:   s.Summary(),
		Bookmarks: s.Bookmarks(),
		Series:    telemetry.BuildSeries(s.history),
	}

	eq, err := payoff.FromConfig(s.cfg).MixedEquilibrium()
	if err != nil {
		r.EquilibriumError = err.Error()
		return r
	}
	r.Equilibrium = &eq

	v, err := oracle.Compare(eq, s.history, s.cfg.Oracle.TailFraction, s.cfg.Oracle.Tolerance)
	if err != nil {
		r.VerdictError = err.Error()
		return r
	}
	r.Verdict = &v
	return r
}
