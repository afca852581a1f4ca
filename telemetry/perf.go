package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one round.
const (
	PhaseAwaken      = "awaken"
	PhaseCompetition = "competition"
	PhaseUpkeep      = "upkeep"
	PhaseCull        = "cull"
	PhaseBreed       = "breed"
	PhaseSleep       = "sleep"
	PhaseTelemetry   = "telemetry"
)

// Phases lists the round phases in execution order.
var Phases = []string{
	PhaseAwaken, PhaseCompetition, PhaseUpkeep, PhaseCull, PhaseBreed, PhaseSleep, PhaseTelemetry,
}

// PerfSample holds timing data for a single round.
type PerfSample struct {
	RoundDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks per-phase round timing over a rolling window.
// A nil *PerfCollector is valid and records nothing.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	roundStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	runStart time.Time
	rounds   int
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of rounds to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 50
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartRound begins timing a new round.
func (p *PerfCollector) StartRound() {
	if p == nil {
		return
	}
	p.roundStart = time.Now()
	if p.runStart.IsZero() {
		p.runStart = p.roundStart
	}
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndRound finishes timing the current round and records the sample.
// It returns the round's wall time.
func (p *PerfCollector) EndRound() time.Duration {
	if p == nil {
		return 0
	}
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		RoundDuration: now.Sub(p.roundStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.rounds++
	return sample.RoundDuration
}

// Elapsed returns wall time since the first round started.
func (p *PerfCollector) Elapsed() time.Duration {
	if p == nil || p.runStart.IsZero() {
		return 0
	}
	return time.Since(p.runStart)
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgRoundDuration time.Duration
	MinRoundDuration time.Duration
	MaxRoundDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total round time
	PhasePct map[string]float64

	RoundsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalRound time.Duration
	var minRound, maxRound time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalRound += s.RoundDuration

		if i == 0 || s.RoundDuration < minRound {
			minRound = s.RoundDuration
		}
		if s.RoundDuration > maxRound {
			maxRound = s.RoundDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgRound := totalRound / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgRound > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgRound) * 100
		}
	}

	var roundsPerSec float64
	if avgRound > 0 {
		roundsPerSec = float64(time.Second) / float64(avgRound)
	}

	return PerfStats{
		AvgRoundDuration: avgRound,
		MinRoundDuration: minRound,
		MaxRoundDuration: maxRound,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		RoundsPerSecond:  roundsPerSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_round_us", s.AvgRoundDuration.Microseconds()),
		slog.Int64("min_round_us", s.MinRoundDuration.Microseconds()),
		slog.Int64("max_round_us", s.MaxRoundDuration.Microseconds()),
		slog.Float64("rounds_per_sec", s.RoundsPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Round          int     `csv:"round"`
	AvgRoundUS     int64   `csv:"avg_round_us"`
	MinRoundUS     int64   `csv:"min_round_us"`
	MaxRoundUS     int64   `csv:"max_round_us"`
	RoundsPerSec   float64 `csv:"rounds_per_sec"`
	AwakenPct      float64 `csv:"awaken_pct"`
	CompetitionPct float64 `csv:"competition_pct"`
	UpkeepPct      float64 `csv:"upkeep_pct"`
	CullPct        float64 `csv:"cull_pct"`
	BreedPct       float64 `csv:"breed_pct"`
	SleepPct       float64 `csv:"sleep_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(round int) PerfStatsCSV {
	return PerfStatsCSV{
		Round:          round,
		AvgRoundUS:     s.AvgRoundDuration.Microseconds(),
		MinRoundUS:     s.MinRoundDuration.Microseconds(),
		MaxRoundUS:     s.MaxRoundDuration.Microseconds(),
		RoundsPerSec:   s.RoundsPerSecond,
		AwakenPct:      s.PhasePct[PhaseAwaken],
		CompetitionPct: s.PhasePct[PhaseCompetition],
		UpkeepPct:      s.PhasePct[PhaseUpkeep],
		CullPct:        s.PhasePct[PhaseCull],
		BreedPct:       s.PhasePct[PhaseBreed],
		SleepPct:       s.PhasePct[PhaseSleep],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
