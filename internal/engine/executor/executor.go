// Package executor runs the per-directory submission state machine for one
// claimed job: pending -> processing -> {submitted | failed | skipped}.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/dirconfig"
	"dirsubmit/internal/domain"
	"dirsubmit/internal/engine/retry"
	"dirsubmit/internal/formfill"
)

// Executor processes every unresolved directory of a job sequentially,
// persisting each outcome immediately so a crash mid-job leaves verifiable
// partial progress.
type Executor struct {
	store    domain.JobStore
	session  automation.Session
	profiles *dirconfig.Registry
	retry    *retry.Controller
	filler   *formfill.Filler
	logger   zerolog.Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New wires an executor.
func New(store domain.JobStore, session automation.Session, profiles *dirconfig.Registry, retryCtl *retry.Controller, filler *formfill.Filler, logger zerolog.Logger) *Executor {
	return &Executor{
		store:    store,
		session:  session,
		profiles: profiles,
		retry:    retryCtl,
		filler:   filler,
		logger:   logger.With().Str("component", "executor").Logger(),
		sleep:    sleepCtx,
	}
}

// Run works through the job's unresolved directories in request order,
// pacing between attempts per the tier configuration. Per-directory
// failures are recorded and isolated; Run only errors when it cannot even
// read the job's current results.
func (e *Executor) Run(ctx context.Context, job domain.Job) error {
	cfg := domain.TierConfigFor(job.PackageTier)
	log := e.logger.With().Str("job_id", job.ID).Str("tier", string(job.PackageTier)).Logger()

	results, err := e.store.ListDirectoryResults(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("%w: list directory results: %v", domain.ErrTransientIO, err)
	}
	existing := make(map[string]domain.DirectoryResult, len(results))
	for _, r := range results {
		existing[r.DirectoryID] = r
	}

	first := true
	for _, directoryID := range job.DirectoriesRequested {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		prior := existing[directoryID]
		if prior.Status.Resolved() {
			continue
		}
		if !first {
			if err := e.sleep(ctx, cfg.PacingDelay); err != nil {
				return err
			}
		}
		first = false
		e.processDirectory(ctx, log, job, cfg, directoryID, prior.AttemptCount)
	}
	return nil
}

func (e *Executor) processDirectory(ctx context.Context, log zerolog.Logger, job domain.Job, cfg domain.TierConfig, directoryID string, attempts int) {
	log = log.With().Str("directory_id", directoryID).Logger()

	profile, ok := e.profiles.Get(directoryID)
	if !ok {
		e.recordFailure(ctx, log, job, cfg, directoryID, attempts,
			formfill.Outcome{Disposition: formfill.DispositionFailed, Reason: "no profile for directory"},
			fmt.Errorf("%w: unknown directory %s", domain.ErrValidation, directoryID))
		return
	}
	if err := profile.Validate(); err != nil {
		e.recordFailure(ctx, log, job, cfg, directoryID, attempts,
			formfill.Outcome{Disposition: formfill.DispositionFailed, Reason: err.Error()}, err)
		return
	}

	e.writeResult(ctx, log, job.ID, directoryID, domain.ResultProcessing, attempts, nil)

	page, err := e.session.OpenPage(ctx, profile.SubmissionURL)
	if err != nil {
		if errors.Is(err, automation.ErrBackendUnavailable) {
			// Transient outage, not a submission failure: the row stays
			// processing with its attempt count intact and the orphan
			// pass requeues it for the next cycle.
			log.Warn().Err(err).Msg("automation backend unavailable")
			return
		}
		attempts++
		e.recordFailure(ctx, log, job, cfg, directoryID, attempts,
			formfill.Outcome{Disposition: formfill.DispositionFailed, Reason: "open page: " + err.Error()},
			fmt.Errorf("%w: open page: %v", domain.ErrAutomation, err))
		return
	}
	defer func() {
		if cerr := page.Close(ctx); cerr != nil {
			log.Debug().Err(cerr).Msg("page close failed")
		}
	}()

	outcome, err := e.filler.Submit(ctx, page, profile, job.Business)
	raw := mustMarshal(outcome)

	switch {
	case err == nil:
		attempts++
		e.writeResult(ctx, log, job.ID, directoryID, domain.ResultSubmitted, attempts, raw)
		log.Info().Int("attempts", attempts).Msg("directory submitted")
	case domain.IsPolicyBlock(err):
		// Skips do not consume retry budget; attempt count stays put.
		e.writeResult(ctx, log, job.ID, directoryID, domain.ResultSkipped, attempts, raw)
		log.Info().Msg("directory skipped")
	case errors.Is(err, automation.ErrBackendUnavailable):
		// Same treatment as a pre-open outage: no budget consumed.
		log.Warn().Err(err).Msg("automation backend lost mid-attempt")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Leave the row processing; the orphan pass requeues it.
		log.Warn().Msg("attempt cancelled mid-flight")
	default:
		attempts++
		e.recordFailure(ctx, log, job, cfg, directoryID, attempts, outcome, err)
	}
}

// recordFailure persists the failed outcome and consults the retry
// controller for a re-arm within the tier budget.
func (e *Executor) recordFailure(ctx context.Context, log zerolog.Logger, job domain.Job, cfg domain.TierConfig, directoryID string, attempts int, outcome formfill.Outcome, cause error) {
	outcome.Disposition = formfill.DispositionFailed
	if outcome.Reason == "" && cause != nil {
		outcome.Reason = cause.Error()
	}
	e.writeResult(ctx, log, job.ID, directoryID, domain.ResultFailed, attempts, mustMarshal(outcome))
	log.Warn().Err(cause).Int("attempts", attempts).Msg("directory failed")

	if e.retry.ShouldRetry(cfg, attempts, cause) {
		if err := e.retry.ReArm(ctx, job.ID, directoryID); err != nil {
			log.Error().Err(err).Msg("re-arm failed")
		}
	}
}

func (e *Executor) writeResult(ctx context.Context, log zerolog.Logger, jobID, directoryID string, status domain.ResultStatus, attempts int, responseLog json.RawMessage) {
	if err := e.store.UpsertDirectoryResult(ctx, jobID, directoryID, status, attempts, responseLog); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("result write failed")
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetSleep overrides the pacing sleep. Test hook.
func (e *Executor) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	if fn != nil {
		e.sleep = fn
	}
}
