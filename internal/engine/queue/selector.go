// Package queue selects which pending jobs a dispatch cycle may claim.
package queue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
)

// Selector reads dispatchable jobs in priority order from the store.
type Selector struct {
	store  domain.JobStore
	logger zerolog.Logger
}

// NewSelector builds a selector over the store.
func NewSelector(store domain.JobStore, logger zerolog.Logger) *Selector {
	return &Selector{store: store, logger: logger.With().Str("component", "selector").Logger()}
}

// SelectPending returns up to limit dispatchable jobs ordered by
// (priorityScore asc, createdAt asc), excluding jobs already holding a
// processor token. Jobs with zero requested directories are finalized
// complete on sight and never dispatched. A store failure propagates
// without partial mutation.
func (s *Selector) SelectPending(ctx context.Context, limit int, claimedJobIDs []string) ([]domain.Job, error) {
	jobs, err := s.store.FetchPendingJobs(ctx, domain.PendingFilter{ExcludeJobIDs: claimedJobIDs}, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending jobs: %w", err)
	}

	selected := jobs[:0]
	for _, job := range jobs {
		if len(job.DirectoriesRequested) == 0 {
			if _, err := s.store.FinalizeJob(ctx, job.ID, domain.JobStatusComplete, ""); err != nil {
				s.logger.Error().Err(err).Str("job_id", job.ID).Msg("finalize empty job failed")
				continue
			}
			s.logger.Info().Str("job_id", job.ID).Msg("job had no directories, finalized complete")
			continue
		}
		selected = append(selected, job)
	}
	return selected, nil
}
