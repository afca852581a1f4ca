package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
)

// missPenalty is the squared error charged to a run with no verdict
// (collapse before any round, or nobody alive).
const missPenalty = 1.0

// FitnessEvaluator runs simulations for a parameter vector and scores how
// far their tail hawk share lands from the target.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	target     float64
	workers    int
	logger     *slog.Logger

	mu          sync.Mutex
	lastShare   float64 // mean observed share from the most recent Evaluate
	lastMissing int     // seeds without a verdict in the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config, target float64, workers int, logger *slog.Logger) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
		workers:    workers,
		logger:     logger,
	}
}

// Last returns the mean observed share and miss count of the latest evaluation.
func (fe *FitnessEvaluator) Last() (share float64, missing int) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastShare, fe.lastMissing
}

// Evaluate computes fitness for raw parameter values (lower = better): the
// mean over seeds of the squared distance between the observed tail hawk
// share and the target.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, raw []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, raw)

	jobs := make([]game.Job, len(fe.seeds))
	for i, seed := range fe.seeds {
		jobs[i] = game.Job{Name: "calibrate", Config: cfg, Seed: seed}
	}
	results, err := game.RunBatch(ctx, jobs, fe.workers, fe.logger)
	if err != nil {
		return math.Inf(1)
	}

	var sum, shareSum float64
	var hits, missing int
	for _, res := range results {
		if res.Err != nil || res.Report.Verdict == nil {
			missing++
			sum += missPenalty
			continue
		}
		d := res.Report.Verdict.Observed - fe.target
		sum += d * d
		shareSum += res.Report.Verdict.Observed
		hits++
	}

	fe.mu.Lock()
	fe.lastMissing = missing
	fe.lastShare = math.NaN()
	if hits > 0 {
		fe.lastShare = shareSum / float64(hits)
	}
	fe.mu.Unlock()

	return sum / float64(len(results))
}
