package domain

import (
	"context"
	"encoding/json"
	"time"
)

// PendingFilter narrows the job selection query. ExcludeJobIDs carries the
// jobs currently holding a processor token so an orphaned in_progress job
// can be re-dispatched without ever moving its status backward.
type PendingFilter struct {
	ExcludeJobIDs []string
}

// ProgressRow is one line of the staff-dashboard progress snapshot.
type ProgressRow struct {
	JobID       string     `json:"job_id"`
	CustomerID  string     `json:"customer_id"`
	PackageTier string     `json:"package_tier"`
	Status      string     `json:"status"`
	Requested   int        `json:"directories_requested"`
	Completed   int        `json:"directories_completed"`
	Failed      int        `json:"directories_failed"`
	Skipped     int        `json:"directories_skipped"`
	ProgressPct float64    `json:"progress_percentage"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobStore is the persistence boundary for jobs and per-directory results.
// The record store is the single source of truth; the engine keeps no
// durable state of its own.
type JobStore interface {
	// FetchPendingJobs returns dispatchable jobs ordered by priority score
	// ascending, then createdAt ascending, capped at limit.
	FetchPendingJobs(ctx context.Context, filter PendingFilter, limit int) ([]Job, error)

	// MarkInProgress claims the job. Returns false when the job is already
	// terminal and must not be dispatched.
	MarkInProgress(ctx context.Context, jobID string) (bool, error)

	// GetJob loads a single job with its directory results.
	GetJob(ctx context.Context, jobID string) (*Job, []DirectoryResult, error)

	// UpsertDirectoryResult writes one directory outcome row keyed by
	// (jobID, directoryID). Writes are immediate, never batched.
	UpsertDirectoryResult(ctx context.Context, jobID, directoryID string, status ResultStatus, attemptCount int, responseLog json.RawMessage) error

	// ReArmDirectory returns a failed directory to pending for the next
	// dispatch cycle, preserving its attempt count.
	ReArmDirectory(ctx context.Context, jobID, directoryID string) error

	// ListDirectoryResults returns every result row for the job.
	ListDirectoryResults(ctx context.Context, jobID string) ([]DirectoryResult, error)

	// RequeueOrphanedDirectories flips processing rows back to pending for
	// in_progress jobs not present in claimedJobIDs. Returns rows changed.
	RequeueOrphanedDirectories(ctx context.Context, claimedJobIDs []string) (int, error)

	// FinalizeJob moves the job to a terminal status. Returns false when
	// the job was already terminal (the transition is monotonic).
	FinalizeJob(ctx context.Context, jobID string, status JobStatus, errorMessage string) (bool, error)

	// FetchJobProgressSnapshot returns per-job progress for reporting.
	FetchJobProgressSnapshot(ctx context.Context) ([]ProgressRow, error)
}
