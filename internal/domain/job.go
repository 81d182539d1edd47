package domain

import "time"

// PackageTier enumerates the customer package levels sold by the platform.
type PackageTier string

const (
	TierStarter      PackageTier = "starter"
	TierGrowth       PackageTier = "growth"
	TierProfessional PackageTier = "professional"
	TierEnterprise   PackageTier = "enterprise"
)

// JobStatus enumerates submission job lifecycle states. Transitions are
// monotonic: pending -> in_progress -> {complete, failed}.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status allows no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// BusinessProfile is the customer payload submitted to each directory.
type BusinessProfile struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Job is one customer's directory submission order.
type Job struct {
	ID                   string
	CustomerID           string
	PackageTier          PackageTier
	PriorityScore        int
	Status               JobStatus
	DirectoriesRequested []string
	Business             BusinessProfile
	ErrorMessage         string
	CreatedAt            time.Time
	StartedAt            *time.Time
	CompletedAt          *time.Time
}

// RetryBudget returns the tier-derived maximum number of additional attempts
// permitted for a single directory within this job.
func (j *Job) RetryBudget() int {
	return TierConfigFor(j.PackageTier).RetryBudget
}
