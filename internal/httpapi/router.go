package httpapi

import "net/http"

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/series/{id}", app.seriesHandler)
	mux.HandleFunc("GET /api/metrics/{kind}", app.metricHandler)
	mux.HandleFunc("GET /api/snapshot", app.snapshotHandler)
	mux.HandleFunc("GET /api/equivalent", app.equivalentHandler)
	mux.HandleFunc("GET /api/history", app.historyHandler)
	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/cache", app.cacheHandler)
	return WithRequestID(WithLogging(mux))
}
