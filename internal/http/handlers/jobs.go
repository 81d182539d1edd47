package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/engine/progress"
)

type directoryResultView struct {
	DirectoryID  string `json:"directory_id"`
	Status       string `json:"status"`
	AttemptCount int    `json:"attempt_count"`
	ResponseLog  any    `json:"response_log,omitempty"`
}

// JobDetail returns one job with its per-directory results and recomputed
// progress.
func (a *App) JobDetail(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, results, err := a.Store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.jsonError(w, http.StatusNotFound, "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("job detail failed")
		a.jsonError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	summary := progress.Compute(job.DirectoriesRequested, results)
	views := make([]directoryResultView, 0, len(results))
	for _, res := range results {
		view := directoryResultView{
			DirectoryID:  res.DirectoryID,
			Status:       string(res.Status),
			AttemptCount: res.AttemptCount,
		}
		if len(res.ResponseLog) > 0 {
			view.ResponseLog = res.ResponseLog
		}
		views = append(views, view)
	}

	a.json(w, http.StatusOK, map[string]any{
		"job_id":              job.ID,
		"customer_id":         job.CustomerID,
		"package_tier":        string(job.PackageTier),
		"status":              string(job.Status),
		"error_message":       job.ErrorMessage,
		"progress_percentage": summary.ProgressPct,
		"completed":           summary.Completed,
		"failed":              summary.Failed,
		"skipped":             summary.Skipped,
		"requested":           summary.Requested,
		"directories":         views,
	})
}
