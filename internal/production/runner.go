package production

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthurelgindell/storyreel/internal/domain"
)

// DefaultPollInterval is the idle wait between claim attempts.
const DefaultPollInterval = 2 * time.Second

// Runner claims queued jobs and runs them until the context is canceled.
type Runner struct {
	jobs     domain.ProductionJobRepository
	producer *Producer
	logger   zerolog.Logger

	workers int
	poll    time.Duration
}

// NewRunner builds a runner with the given worker count. Each worker claims
// and runs one job at a time; the claim query serializes them.
func NewRunner(jobs domain.ProductionJobRepository, producer *Producer, workers int, logger zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		jobs:     jobs,
		producer: producer,
		logger:   logger,
		workers:  workers,
		poll:     DefaultPollInterval,
	}
}

// Run blocks until the context is canceled and returns the context error.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			return r.loop(ctx)
		})
	}
	return g.Wait()
}

func (r *Runner) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		job, err := r.jobs.ClaimQueued(ctx)
		switch {
		case err == nil:
			// Run records its own terminal state; the error here is only
			// for the log.
			if runErr := r.producer.Run(ctx, job); runErr != nil {
				r.logger.Error().Err(runErr).Str("job_id", job.ID).Msg("production: run failed")
			}
			continue
		case errors.Is(err, domain.ErrNotFound):
		default:
			r.logger.Warn().Err(err).Msg("production: claim failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.poll):
		}
	}
}
