package handlers

import "net/http"

// Progress returns the per-job progress snapshot for staff dashboards.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	rows, err := a.Reporting.Snapshot(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("progress snapshot failed")
		a.jsonError(w, http.StatusServiceUnavailable, "snapshot unavailable")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"jobs":  rows,
		"count": len(rows),
	})
}
