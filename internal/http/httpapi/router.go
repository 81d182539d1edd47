package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dirsubmit/internal/http/handlers"
	"dirsubmit/internal/middleware"
)

// NewRouter assembles the reporting API routes.
func NewRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/progress", app.Progress)
	r.Get("/v1/jobs/{id}", app.JobDetail)

	return r
}
