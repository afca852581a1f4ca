// Package game drives a full Hawk/Dove run: seeding, the round loop,
// termination and telemetry sinks.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/systems"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// Termination says why a run stopped.
type Termination string

const (
	TerminationNone               Termination = ""
	TerminationRoundsExhausted    Termination = "rounds_exhausted"
	TerminationPopulationCollapse Termination = "population_collapse"
	TerminationPopulationCap      Termination = "population_cap"
	TerminationCancelled          Termination = "cancelled"
)

// collapseThreshold: rounds continue only while more agents than this live.
const collapseThreshold = 2

// Options configures a Simulation beyond the config file.
type Options struct {
	Seed      int64 // overrides cfg.Simulation.Seed when nonzero
	LogStats  bool  // log every round at info instead of debug
	OutputDir string
	Logger    *slog.Logger

	// MaxPopulation, when positive, ends the run before any round that
	// would start with more agents than this. One round at most doubles
	// the population, so the peak stays below twice the ceiling.
	MaxPopulation int

	// StatsCallback, if set, receives every round record.
	StatsCallback func(telemetry.RoundStats)
	// OnMatchup, if set, receives every resolved pairing.
	OnMatchup func(systems.Matchup)
}

// Simulation owns one run: its population, RNG, engine and history.
type Simulation struct {
	cfg    *config.Config
	seed   int64
	rng    *rand.Rand
	pop    *systems.Population
	engine *systems.RoundEngine

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logger           *slog.Logger
	logStats         bool
	statsCallback    func(telemetry.RoundStats)
	maxPopulation    int

	// State
	currentRound int
	history      []telemetry.RoundStats
	bookmarks    []telemetry.Bookmark
	initial      telemetry.Composition
	termination  Termination
	started      time.Time
	wallTime     time.Duration
	finished     bool
}

// New validates cfg, seeds the population and opens any output sinks.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("config warning", "warning", w)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	lifetimes := telemetry.NewLifetimeTracker()

	s := &Simulation{
		cfg:              cfg,
		seed:             seed,
		rng:              rng,
		pop:              systems.NewPopulation(),
		engine:           systems.NewRoundEngine(systems.ParamsFromConfig(cfg), rng, perf, lifetimes),
		perfCollector:    perf,
		lifetimeTracker:  lifetimes,
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		outputManager:    om,
		logger:           logger,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		maxPopulation:    opts.MaxPopulation,
		currentRound:     1,
	}
	s.engine.OnMatchup = opts.OnMatchup

	s.spawnInitialPopulation()
	return s, nil
}

// spawnInitialPopulation seeds the starting cohort and registers lifetimes.
func (s *Simulation) spawnInitialPopulation() {
	p := s.cfg.Population
	s.pop.Seed(p.StartingDoves, p.StartingHawks, p.StartingEnergy)
	for _, a := range s.pop.States() {
		s.lifetimeTracker.Register(a.ID, a.Strategy, 0, 0, a.Energy)
	}
	hawks, doves := s.pop.Counts()
	s.initial = telemetry.Composition{Hawks: hawks, Doves: doves}
}

// Config returns the run's configuration.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Seed returns the RNG seed actually used.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Population returns the live population. Callers must not mutate it.
func (s *Simulation) Population() *systems.Population {
	return s.pop
}

// Round returns the number of completed rounds.
func (s *Simulation) Round() int {
	return s.currentRound - 1
}

// History returns one record per completed round, oldest first.
// The returned slice must not be modified.
func (s *Simulation) History() []telemetry.RoundStats {
	return s.history[:len(s.history):len(s.history)]
}

// Bookmarks returns notable moments detected so far.
func (s *Simulation) Bookmarks() []telemetry.Bookmark {
	return s.bookmarks[:len(s.bookmarks):len(s.bookmarks)]
}

// Termination returns why the run stopped, or TerminationNone while running.
func (s *Simulation) Termination() Termination {
	return s.termination
}

// Composition returns the current hawk/dove split.
func (s *Simulation) Composition() telemetry.Composition {
	hawks, doves := s.pop.Counts()
	return telemetry.Composition{Hawks: hawks, Doves: doves}
}

// Summary folds the history into run totals.
func (s *Simulation) Summary() telemetry.Summary {
	sum := telemetry.Summarize(s.history, s.initial)
	sum.Seed = s.seed
	sum.Termination = string(s.termination)
	sum.Lifespans = s.lifetimeTracker.Lifespans()
	sum.WallTime = s.wallTime
	if !s.finished && !s.started.IsZero() {
		sum.WallTime = time.Since(s.started)
	}
	return sum
}

// Close flushes and closes output files.
func (s *Simulation) Close() error {
	return s.outputManager.Close()
}

// String implements fmt.Stringer.
func (t Termination) String() string {
	if t == TerminationNone {
		return "running"
	}
	return string(t)
}
