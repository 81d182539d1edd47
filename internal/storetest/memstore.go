// Package storetest provides an in-memory domain.JobStore for exercising
// the scheduling pipeline without PostgreSQL.
package storetest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"dirsubmit/internal/domain"
)

// MemStore is a mutex-guarded in-memory JobStore. Query semantics mirror
// the SQL implementation: priority-then-FIFO selection, monotonic job
// finalization, null-preserving response logs.
type MemStore struct {
	mu      sync.Mutex
	jobs    map[string]*domain.Job
	results map[string]map[string]*domain.DirectoryResult

	// FailFetch forces FetchPendingJobs to return this error, for
	// transient-store scenarios.
	FailFetch error
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		jobs:    map[string]*domain.Job{},
		results: map[string]map[string]*domain.DirectoryResult{},
	}
}

// PutJob seeds a job.
func (m *MemStore) PutJob(job domain.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := job
	m.jobs[job.ID] = &j
	if _, ok := m.results[job.ID]; !ok {
		m.results[job.ID] = map[string]*domain.DirectoryResult{}
	}
}

// Job returns a copy of the stored job.
func (m *MemStore) Job(jobID string) (domain.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return domain.Job{}, false
	}
	return *j, true
}

// Result returns a copy of one directory result row.
func (m *MemStore) Result(jobID, directoryID string) (domain.DirectoryResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[jobID][directoryID]
	if !ok {
		return domain.DirectoryResult{}, false
	}
	return *r, true
}

func (m *MemStore) FetchPendingJobs(_ context.Context, filter domain.PendingFilter, limit int) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFetch != nil {
		return nil, m.FailFetch
	}

	excluded := map[string]bool{}
	for _, id := range filter.ExcludeJobIDs {
		excluded[id] = true
	}

	var out []domain.Job
	for _, j := range m.jobs {
		if excluded[j.ID] {
			continue
		}
		switch j.Status {
		case domain.JobStatusPending:
			out = append(out, *j)
		case domain.JobStatusInProgress:
			for _, r := range m.results[j.ID] {
				if r.Status == domain.ResultPending {
					out = append(out, *j)
					break
				}
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].PriorityScore != out[b].PriorityScore {
			return out[a].PriorityScore < out[b].PriorityScore
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) MarkInProgress(_ context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return false, domain.ErrJobNotFound
	}
	if j.Status.Terminal() {
		return false, nil
	}
	if j.Status == domain.JobStatusPending {
		j.Status = domain.JobStatusInProgress
		now := time.Now()
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
	}
	return true, nil
}

func (m *MemStore) GetJob(_ context.Context, jobID string) (*domain.Job, []domain.DirectoryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, nil, domain.ErrJobNotFound
	}
	job := *j
	return &job, m.listLocked(jobID), nil
}

func (m *MemStore) listLocked(jobID string) []domain.DirectoryResult {
	rows := m.results[jobID]
	out := make([]domain.DirectoryResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].DirectoryID < out[b].DirectoryID })
	return out
}

func (m *MemStore) UpsertDirectoryResult(_ context.Context, jobID, directoryID string, status domain.ResultStatus, attemptCount int, responseLog json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.results[jobID]
	if !ok {
		rows = map[string]*domain.DirectoryResult{}
		m.results[jobID] = rows
	}
	r, ok := rows[directoryID]
	if !ok {
		r = &domain.DirectoryResult{JobID: jobID, DirectoryID: directoryID}
		rows[directoryID] = r
	}
	r.Status = status
	r.AttemptCount = attemptCount
	if len(responseLog) > 0 {
		r.ResponseLog = append(json.RawMessage(nil), responseLog...)
	}
	now := time.Now()
	switch status {
	case domain.ResultSubmitted:
		if r.SubmittedAt == nil {
			r.SubmittedAt = &now
		}
	case domain.ResultFailed:
		r.FailedAt = &now
	}
	return nil
}

func (m *MemStore) ReArmDirectory(_ context.Context, jobID, directoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[jobID][directoryID]
	if !ok {
		return domain.ErrDirectoryNotFound
	}
	if r.Status == domain.ResultFailed {
		r.Status = domain.ResultPending
	}
	return nil
}

func (m *MemStore) ListDirectoryResults(_ context.Context, jobID string) ([]domain.DirectoryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(jobID), nil
}

func (m *MemStore) RequeueOrphanedDirectories(_ context.Context, claimedJobIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claimed := map[string]bool{}
	for _, id := range claimedJobIDs {
		claimed[id] = true
	}
	n := 0
	for jobID, rows := range m.results {
		j, ok := m.jobs[jobID]
		if !ok || j.Status != domain.JobStatusInProgress || claimed[jobID] {
			continue
		}
		for _, r := range rows {
			if r.Status == domain.ResultProcessing {
				r.Status = domain.ResultPending
				n++
			}
		}
	}
	return n, nil
}

func (m *MemStore) FinalizeJob(_ context.Context, jobID string, status domain.JobStatus, errorMessage string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return false, domain.ErrJobNotFound
	}
	if j.Status.Terminal() {
		return false, nil
	}
	j.Status = status
	j.ErrorMessage = errorMessage
	now := time.Now()
	j.CompletedAt = &now
	return true, nil
}

func (m *MemStore) FetchJobProgressSnapshot(_ context.Context) ([]domain.ProgressRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProgressRow
	for _, j := range m.jobs {
		row := domain.ProgressRow{
			JobID:       j.ID,
			CustomerID:  j.CustomerID,
			PackageTier: string(j.PackageTier),
			Status:      string(j.Status),
			Requested:   len(j.DirectoriesRequested),
			CreatedAt:   j.CreatedAt,
			CompletedAt: j.CompletedAt,
		}
		for _, r := range m.results[j.ID] {
			switch {
			case r.Status.Completed():
				row.Completed++
			case r.Status == domain.ResultFailed:
				row.Failed++
			case r.Status == domain.ResultSkipped:
				row.Skipped++
			}
		}
		if row.Requested > 0 {
			row.ProgressPct = float64(row.Completed) / float64(row.Requested) * 100
		}
		out = append(out, row)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

var _ domain.JobStore = (*MemStore)(nil)
