package game

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// Job is one independent run in a batch.
type Job struct {
	Name   string
	Config *config.Config
	Seed   int64
}

// Result is the outcome of one Job. Err is a per-run failure (bad config);
// it does not stop the batch.
type Result struct {
	Job     Job
	Report  Report
	History []telemetry.RoundStats
	Err     error
}

// RunBatch runs jobs concurrently on at most workers goroutines
// (GOMAXPROCS when workers <= 0). Each run owns its population and RNG, so
// results match sequential runs with the same seeds. Results keep job order.
// Only cancellation of ctx aborts the batch.
func RunBatch(ctx context.Context, jobs []Job, workers int, logger *slog.Logger) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = runJob(ctx, job, logger.With("job", job.Name))
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}
	return results, nil
}

func runJob(ctx context.Context, job Job, logger *slog.Logger) Result {
	res := Result{Job: job}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	sim, err := New(job.Config, Options{Seed: job.Seed, Logger: logger})
	if err != nil {
		res.Err = err
		return res
	}
	defer sim.Close()

	if err := sim.Run(ctx); err != nil {
		res.Err = err
		return res
	}
	res.Report = sim.Report()
	res.History = sim.History()
	return res
}
