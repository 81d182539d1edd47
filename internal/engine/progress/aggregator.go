// Package progress recomputes job-level counters and terminal status from
// the full set of per-directory results. Executors never touch job-level
// counters; this full recompute is what makes concurrent directory writers
// race-free and duplicate-write tolerant.
package progress

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
)

// Summary is the recomputed progress of one job.
type Summary struct {
	Requested   int
	Completed   int
	Failed      int
	Skipped     int
	Resolved    int
	ProgressPct float64
}

// Done reports whether every requested directory reached a resolved state.
func (s Summary) Done() bool {
	return s.Requested > 0 && s.Resolved == s.Requested
}

// Compute derives a summary from the result rows. It is a pure function:
// recomputing over an unchanged result set always yields the same summary.
func Compute(requested []string, results []domain.DirectoryResult) Summary {
	byDirectory := make(map[string]domain.DirectoryResult, len(results))
	for _, r := range results {
		byDirectory[r.DirectoryID] = r
	}

	s := Summary{Requested: len(requested)}
	for _, dir := range requested {
		r, ok := byDirectory[dir]
		if !ok {
			continue
		}
		if r.Status.Resolved() {
			s.Resolved++
		}
		switch {
		case r.Status.Completed():
			s.Completed++
		case r.Status == domain.ResultFailed:
			s.Failed++
		case r.Status == domain.ResultSkipped:
			s.Skipped++
		}
	}

	if s.Requested > 0 {
		s.ProgressPct = float64(s.Completed) / float64(s.Requested) * 100
		if s.ProgressPct < 0 {
			s.ProgressPct = 0
		}
		if s.ProgressPct > 100 {
			s.ProgressPct = 100
		}
	}
	return s
}

// Aggregator reconciles job progress against the store.
type Aggregator struct {
	store  domain.JobStore
	logger zerolog.Logger
}

// NewAggregator builds an aggregator over the store.
func NewAggregator(store domain.JobStore, logger zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger.With().Str("component", "aggregator").Logger()}
}

// Reconcile recomputes the job's progress and finalizes it once every
// requested directory is resolved. A job that completed nothing and failed
// at least one directory finalizes failed; everything else finalizes
// complete, with failed/skipped counts summarized in the error message.
func (a *Aggregator) Reconcile(ctx context.Context, jobID string) (Summary, error) {
	job, results, err := a.store.GetJob(ctx, jobID)
	if err != nil {
		return Summary{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	summary := Compute(job.DirectoriesRequested, results)
	if job.Status.Terminal() || !summary.Done() {
		return summary, nil
	}

	status := domain.JobStatusComplete
	if summary.Completed == 0 && summary.Failed > 0 {
		status = domain.JobStatusFailed
	}

	var message string
	if summary.Failed > 0 || summary.Skipped > 0 {
		message = fmt.Sprintf("%d of %d directories failed, %d skipped", summary.Failed, summary.Requested, summary.Skipped)
	}

	changed, err := a.store.FinalizeJob(ctx, jobID, status, message)
	if err != nil {
		return summary, fmt.Errorf("finalize job %s: %w", jobID, err)
	}
	if changed {
		a.logger.Info().
			Str("job_id", jobID).
			Str("status", string(status)).
			Int("completed", summary.Completed).
			Int("failed", summary.Failed).
			Int("skipped", summary.Skipped).
			Msg("job finalized")
	}
	return summary, nil
}

// RequeueOrphans flips processing rows back to pending for in_progress jobs
// that no longer hold a processor token, typically after the stale sweep
// reclaimed their slot mid-flight.
func (a *Aggregator) RequeueOrphans(ctx context.Context, claimedJobIDs []string) (int, error) {
	n, err := a.store.RequeueOrphanedDirectories(ctx, claimedJobIDs)
	if err != nil {
		return 0, fmt.Errorf("requeue orphaned directories: %w", err)
	}
	if n > 0 {
		a.logger.Warn().Int("directories", n).Msg("requeued orphaned directories")
	}
	return n, nil
}
