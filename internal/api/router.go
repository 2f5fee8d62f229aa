package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the status, metrics and signal endpoints
func NewRouter(session SessionView) *mux.Router {
	handler := NewSignalHandler(session)
	router := mux.NewRouter()

	// API v1 routes
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/signals", handler.ListSignals).Methods("GET")
	v1.HandleFunc("/stats", handler.GetStats).Methods("GET")
	v1.HandleFunc("/symbols/{symbol}", handler.GetSymbol).Methods("GET")

	// Health check endpoints
	router.HandleFunc("/health", handler.Health).Methods("GET")
	router.HandleFunc("/ready", handler.Ready).Methods("GET")
	router.HandleFunc("/live", handler.Live).Methods("GET")

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	router.Use(mux.MiddlewareFunc(MetricsMiddleware()))

	return router
}

// NewHandler returns the router wrapped in the standard middleware chain
func NewHandler(session SessionView) http.Handler {
	middlewares := ChainMiddleware(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		CORSMiddleware(),
		LoggingMiddleware(),
	)
	return middlewares(NewRouter(session))
}
