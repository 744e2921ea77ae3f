// Package cleanup removes magic link tokens that are past their expiry plus
// a retention window. Expired tokens are already rejected on verify; this
// only keeps the table small.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/metrics"
	"github.com/ErlanBelekov/superrichie/internal/repository"
	"github.com/robfig/cron/v3"
)

const DefaultBatchSize = 500

type Reaper struct {
	tokens    repository.TokenRepository
	logger    *slog.Logger
	retention time.Duration
	batchSize int
	now       func() time.Time
}

func NewReaper(tokens repository.TokenRepository, logger *slog.Logger, retention time.Duration, batchSize int) *Reaper {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Reaper{
		tokens:    tokens,
		logger:    logger.With("component", "reaper"),
		retention: retention,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start runs Sweep on the cron spec (standard 5-field or @every descriptor)
// until ctx is cancelled. It blocks, waiting for an in-flight sweep to finish
// before returning.
func (r *Reaper) Start(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.sweepAndLog(ctx) }); err != nil {
		return fmt.Errorf("parse cleanup schedule %q: %w", spec, err)
	}

	r.logger.Info("reaper started", "schedule", spec, "retention", r.retention, "batch_size", r.batchSize)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("reaper shut down")
	return nil
}

// Sweep deletes tokens that expired before now-retention, in batches, until a
// batch comes back short. It returns the number of tokens removed.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := r.now().Add(-r.retention)
	total := 0
	for {
		n, err := r.tokens.DeleteExpired(ctx, cutoff, r.batchSize)
		total += n
		metrics.TokensSweptTotal.Add(float64(n))
		if err != nil {
			return total, fmt.Errorf("delete expired tokens: %w", err)
		}
		if n < r.batchSize {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

func (r *Reaper) sweepAndLog(ctx context.Context) {
	n, err := r.Sweep(ctx)
	if err != nil {
		r.logger.Error("reaper sweep", "deleted", n, "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("reaper removed expired tokens", "count", n)
	}
}
