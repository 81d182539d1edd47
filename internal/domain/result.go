package domain

import (
	"encoding/json"
	"time"
)

// ResultStatus enumerates the per-directory submission states.
type ResultStatus string

const (
	ResultPending    ResultStatus = "pending"
	ResultProcessing ResultStatus = "processing"
	ResultSubmitted  ResultStatus = "submitted"
	ResultApproved   ResultStatus = "approved"
	ResultRejected   ResultStatus = "rejected"
	ResultFailed     ResultStatus = "failed"
	ResultSkipped    ResultStatus = "skipped"
)

// Resolved reports whether the status needs no further engine work.
// Approved and rejected are review states applied to already-submitted
// results by staff or by the target directory itself.
func (s ResultStatus) Resolved() bool {
	switch s {
	case ResultSubmitted, ResultApproved, ResultRejected, ResultFailed, ResultSkipped:
		return true
	}
	return false
}

// Completed reports whether the status counts toward job completion.
func (s ResultStatus) Completed() bool {
	return s == ResultSubmitted || s == ResultApproved
}

// DirectoryResult records the outcome of submission attempts for one
// directory within one job. The (JobID, DirectoryID) pair is the key.
type DirectoryResult struct {
	JobID        string
	DirectoryID  string
	Status       ResultStatus
	AttemptCount int
	ResponseLog  json.RawMessage
	SubmittedAt  *time.Time
	FailedAt     *time.Time
}
