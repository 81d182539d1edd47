// Package retry decides whether a failed directory submission gets another
// attempt within its job's tier budget.
package retry

import (
	"context"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
)

// Controller re-arms failed directories for the next dispatch cycle while
// their attempt count stays within the tier's retry budget. Skips never
// reach the controller; policy blocks are terminal by definition.
type Controller struct {
	store  domain.JobStore
	logger zerolog.Logger
}

// NewController builds a retry controller over the store.
func NewController(store domain.JobStore, logger zerolog.Logger) *Controller {
	return &Controller{store: store, logger: logger.With().Str("component", "retry").Logger()}
}

// ShouldRetry reports whether a directory that just failed its
// attemptCount-th attempt may try again. The budget counts additional
// attempts beyond the first, so budget 1 permits two attempts total.
// Validation failures are never retried: a broken profile does not heal.
func (c *Controller) ShouldRetry(tier domain.TierConfig, attemptCount int, cause error) bool {
	if cause != nil && domain.IsValidation(cause) {
		return false
	}
	return attemptCount <= tier.RetryBudget
}

// ReArm returns the failed directory to pending so a later cycle picks it
// up. The attempt count is preserved; the budget check uses it next time.
func (c *Controller) ReArm(ctx context.Context, jobID, directoryID string) error {
	if err := c.store.ReArmDirectory(ctx, jobID, directoryID); err != nil {
		return err
	}
	c.logger.Info().
		Str("job_id", jobID).
		Str("directory_id", directoryID).
		Msg("directory re-armed for retry")
	return nil
}
