package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the ops routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)
	r.Get("/healthz", app.healthHandler)
	r.Get("/catalog", app.catalogHandler)
	r.Get("/catalog/{id}", app.itemHandler)
	r.Get("/debug/stats", app.statsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return r
}
