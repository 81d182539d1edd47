// Package handlers exposes the staff-facing reporting API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
	"dirsubmit/internal/reporting"
)

// App bundles the dependencies the reporting handlers need.
type App struct {
	Store     domain.JobStore
	Reporting *reporting.Service
	Logger    zerolog.Logger
}

// NewApp constructs the handler container.
func NewApp(store domain.JobStore, reporting *reporting.Service, logger zerolog.Logger) *App {
	return &App{Store: store, Reporting: reporting, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) jsonError(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
