// Package repo implements the domain persistence interfaces on PostgreSQL.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/infra"
	"dirsubmit/internal/sqlinline"
)

// JobStorePG implements domain.JobStore using PostgreSQL.
type JobStorePG struct {
	runner *infra.SQLRunner
}

// NewJobStore constructs the PostgreSQL job store.
func NewJobStore(runner *infra.SQLRunner) *JobStorePG {
	return &JobStorePG{runner: runner}
}

func (s *JobStorePG) FetchPendingJobs(ctx context.Context, filter domain.PendingFilter, limit int) ([]domain.Job, error) {
	exclude := filter.ExcludeJobIDs
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := s.runner.Query(ctx, sqlinline.QSelectPendingJobs, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch pending jobs: %v", domain.ErrTransientIO, err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch pending jobs: %v", domain.ErrTransientIO, err)
	}
	return jobs, nil
}

func scanJob(scan func(dest ...any) error) (domain.Job, error) {
	var (
		job     domain.Job
		payload []byte
	)
	if err := scan(
		&job.ID,
		&job.CustomerID,
		&job.PackageTier,
		&job.PriorityScore,
		&job.Status,
		&job.DirectoriesRequested,
		&payload,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	); err != nil {
		return domain.Job{}, fmt.Errorf("scan job: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &job.Business); err != nil {
			return domain.Job{}, fmt.Errorf("decode business profile for job %s: %w", job.ID, err)
		}
	}
	return job, nil
}

func (s *JobStorePG) MarkInProgress(ctx context.Context, jobID string) (bool, error) {
	var id string
	err := s.runner.QueryRow(ctx, sqlinline.QMarkJobInProgress, jobID).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: mark in progress: %v", domain.ErrTransientIO, err)
	}
	return true, nil
}

func (s *JobStorePG) GetJob(ctx context.Context, jobID string) (*domain.Job, []domain.DirectoryResult, error) {
	row := s.runner.QueryRow(ctx, sqlinline.QSelectJob, jobID)
	job, err := scanJob(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil, domain.ErrJobNotFound
		}
		return nil, nil, fmt.Errorf("%w: get job: %v", domain.ErrTransientIO, err)
	}
	results, err := s.ListDirectoryResults(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	return &job, results, nil
}

func (s *JobStorePG) UpsertDirectoryResult(ctx context.Context, jobID, directoryID string, status domain.ResultStatus, attemptCount int, responseLog json.RawMessage) error {
	var log any
	if len(responseLog) > 0 {
		log = []byte(responseLog)
	}
	if _, err := s.runner.Exec(ctx, sqlinline.QUpsertDirectoryResult, jobID, directoryID, string(status), attemptCount, log); err != nil {
		return fmt.Errorf("%w: upsert directory result: %v", domain.ErrTransientIO, err)
	}
	return nil
}

func (s *JobStorePG) ReArmDirectory(ctx context.Context, jobID, directoryID string) error {
	if _, err := s.runner.Exec(ctx, sqlinline.QReArmDirectory, jobID, directoryID); err != nil {
		return fmt.Errorf("%w: re-arm directory: %v", domain.ErrTransientIO, err)
	}
	return nil
}

func (s *JobStorePG) ListDirectoryResults(ctx context.Context, jobID string) ([]domain.DirectoryResult, error) {
	rows, err := s.runner.Query(ctx, sqlinline.QListDirectoryResults, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list directory results: %v", domain.ErrTransientIO, err)
	}
	defer rows.Close()

	var results []domain.DirectoryResult
	for rows.Next() {
		var r domain.DirectoryResult
		if err := rows.Scan(&r.JobID, &r.DirectoryID, &r.Status, &r.AttemptCount, &r.ResponseLog, &r.SubmittedAt, &r.FailedAt); err != nil {
			return nil, fmt.Errorf("scan directory result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list directory results: %v", domain.ErrTransientIO, err)
	}
	return results, nil
}

func (s *JobStorePG) RequeueOrphanedDirectories(ctx context.Context, claimedJobIDs []string) (int, error) {
	claimed := claimedJobIDs
	if claimed == nil {
		claimed = []string{}
	}
	tag, err := s.runner.Exec(ctx, sqlinline.QRequeueOrphanedDirectories, claimed)
	if err != nil {
		return 0, fmt.Errorf("%w: requeue orphans: %v", domain.ErrTransientIO, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *JobStorePG) FinalizeJob(ctx context.Context, jobID string, status domain.JobStatus, errorMessage string) (bool, error) {
	var id string
	err := s.runner.QueryRow(ctx, sqlinline.QFinalizeJob, jobID, string(status), errorMessage).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: finalize job: %v", domain.ErrTransientIO, err)
	}
	return true, nil
}

func (s *JobStorePG) FetchJobProgressSnapshot(ctx context.Context) ([]domain.ProgressRow, error) {
	rows, err := s.runner.Query(ctx, sqlinline.QJobProgressSnapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: progress snapshot: %v", domain.ErrTransientIO, err)
	}
	defer rows.Close()

	var snapshot []domain.ProgressRow
	for rows.Next() {
		var r domain.ProgressRow
		if err := rows.Scan(&r.JobID, &r.CustomerID, &r.PackageTier, &r.Status, &r.Requested, &r.Completed, &r.Failed, &r.Skipped, &r.CreatedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		if r.Requested > 0 {
			r.ProgressPct = float64(r.Completed) / float64(r.Requested) * 100
			if r.ProgressPct > 100 {
				r.ProgressPct = 100
			}
		}
		snapshot = append(snapshot, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: progress snapshot: %v", domain.ErrTransientIO, err)
	}
	return snapshot, nil
}

var _ domain.JobStore = (*JobStorePG)(nil)
