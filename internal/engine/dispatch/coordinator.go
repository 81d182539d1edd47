package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/engine/progress"
	"dirsubmit/internal/engine/queue"
)

// Runner executes all unresolved directories of one claimed job.
type Runner interface {
	Run(ctx context.Context, job domain.Job) error
}

// Options tunes the coordinator loop.
type Options struct {
	Interval    time.Duration
	SelectLimit int
}

// Coordinator drives dispatch cycles on a fixed interval. Cycles never
// overlap: a cycle that is still collecting executor results makes the next
// tick a no-op, which is what prevents double-claiming.
type Coordinator struct {
	selector   *queue.Selector
	registry   *TokenRegistry
	runner     Runner
	aggregator *progress.Aggregator
	store      domain.JobStore
	logger     zerolog.Logger

	interval    time.Duration
	selectLimit int
	cycleActive atomic.Bool
}

// NewCoordinator wires the dispatch cycle dependencies.
func NewCoordinator(selector *queue.Selector, registry *TokenRegistry, runner Runner, aggregator *progress.Aggregator, store domain.JobStore, logger zerolog.Logger, opts Options) *Coordinator {
	interval := opts.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	limit := opts.SelectLimit
	if limit <= 0 {
		limit = 50
	}
	return &Coordinator{
		selector:    selector,
		registry:    registry,
		runner:      runner,
		aggregator:  aggregator,
		store:       store,
		logger:      logger.With().Str("component", "coordinator").Logger(),
		interval:    interval,
		selectLimit: limit,
	}
}

// Run ticks dispatch cycles until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.logger.Info().Dur("interval", c.interval).Msg("coordinator started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.RunCycle(ctx); err != nil {
				c.logger.Error().Err(err).Msg("dispatch cycle failed")
			}
		}
	}
}

type cycleResult struct {
	job   domain.Job
	token domain.ProcessorToken
	err   error
}

// RunCycle performs one dispatch cycle: orphan requeue, capacity check,
// priority selection, tier-capped claiming, fire-and-collect execution, and
// per-job reconciliation. Returns immediately if a previous cycle is still
// in flight.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	if !c.cycleActive.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("previous cycle still in flight, skipping")
		return nil
	}
	defer c.cycleActive.Store(false)

	claimed := c.registry.ActiveJobIDs()
	if _, err := c.aggregator.RequeueOrphans(ctx, claimed); err != nil {
		// Transient; orphans are retried on the next tick.
		c.logger.Warn().Err(err).Msg("orphan requeue failed")
	}

	available := c.registry.Available()
	if available <= 0 {
		c.logger.Debug().Msg("no free capacity")
		return nil
	}

	jobs, err := c.selector.SelectPending(ctx, c.selectLimit, claimed)
	if err != nil {
		return fmt.Errorf("select pending: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	launches := c.claim(ctx, jobs, available)
	if len(launches) == 0 {
		return nil
	}

	// Fire-and-collect: one executor's failure never cancels its siblings.
	results := make(chan cycleResult, len(launches))
	for _, l := range launches {
		go func(job domain.Job, token domain.ProcessorToken) {
			results <- cycleResult{job: job, token: token, err: c.runner.Run(ctx, job)}
		}(l.job, l.token)
	}

	for range launches {
		r := <-results
		if r.err != nil {
			c.logger.Error().Err(r.err).Str("job_id", r.job.ID).Msg("executor failed")
		}
		if _, err := c.aggregator.Reconcile(ctx, r.job.ID); err != nil {
			c.logger.Error().Err(err).Str("job_id", r.job.ID).Msg("reconcile failed")
		}
		c.registry.Release(r.token.TokenID)
	}
	return nil
}

type launch struct {
	job   domain.Job
	token domain.ProcessorToken
}

// claim validates the candidates, then walks tiers in priority order and
// issues tokens up to the global and per-tier caps. Claim order within a
// tier is the selector's FIFO order.
func (c *Coordinator) claim(ctx context.Context, jobs []domain.Job, available int) []launch {
	byTier := map[domain.PackageTier][]domain.Job{}
	for _, job := range jobs {
		if err := validateJob(job); err != nil {
			// Rejected before dispatch; consumes no capacity.
			if _, ferr := c.store.FinalizeJob(ctx, job.ID, domain.JobStatusFailed, err.Error()); ferr != nil {
				c.logger.Error().Err(ferr).Str("job_id", job.ID).Msg("finalize invalid job failed")
			}
			c.logger.Warn().Err(err).Str("job_id", job.ID).Msg("job rejected before dispatch")
			continue
		}
		byTier[job.PackageTier] = append(byTier[job.PackageTier], job)
	}

	var launches []launch
	for _, tier := range domain.TiersByPriority() {
		if available <= 0 {
			break
		}
		cfg := domain.TierConfigFor(tier)
		tierActive := c.registry.ActiveInTier(tier)
		for _, job := range byTier[tier] {
			if available <= 0 || tierActive >= cfg.MaxConcurrent {
				break
			}
			token, err := c.registry.Claim(job.ID, tier)
			if err != nil {
				if errors.Is(err, domain.ErrCapacityExhausted) {
					break
				}
				// Only this job is unclaimable; its tier siblings still get
				// their shot.
				c.logger.Warn().Err(err).Str("job_id", job.ID).Msg("claim rejected")
				continue
			}
			ok, err := c.store.MarkInProgress(ctx, job.ID)
			if err != nil || !ok {
				c.registry.Release(token.TokenID)
				if err != nil {
					// This job's cycle attempt aborts; siblings proceed.
					c.logger.Error().Err(err).Str("job_id", job.ID).Msg("claim failed")
				}
				continue
			}
			launches = append(launches, launch{job: job, token: token})
			available--
			tierActive++
		}
	}
	return launches
}

func validateJob(job domain.Job) error {
	if !domain.KnownTier(job.PackageTier) {
		return fmt.Errorf("%w: unknown package tier %q", domain.ErrValidation, job.PackageTier)
	}
	if strings.TrimSpace(job.Business.Name) == "" {
		return fmt.Errorf("%w: business profile missing name", domain.ErrValidation)
	}
	return nil
}
