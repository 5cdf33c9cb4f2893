package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. backfillSvc may be nil.
func NewServer(port string, handler *Handler, backfillSvc BackfillService) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewRouter(handler, backfillSvc),
		},
	}
}

// NewRouter builds the route table. CORS wraps the router so preflight
// requests are answered before route matching.
func NewRouter(handler *Handler, backfillSvc BackfillService) http.Handler {
	backfillHandler := NewBackfillHandler(backfillSvc)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Seasons
	api.HandleFunc("/seasons", handler.GetSeasons).Methods("GET")
	api.HandleFunc("/seasons/{season}/champion", handler.GetChampion).Methods("GET")
	api.HandleFunc("/seasons/{season}/leaders", handler.GetLeaders).Methods("GET")

	// Games
	api.HandleFunc("/games", handler.GetGames).Methods("GET")
	api.HandleFunc("/games/{gameID}", handler.GetGame).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/resolve", handler.ResolveTeam).Methods("GET")
	api.HandleFunc("/teams/{abbr}/report", handler.GetTeamReport).Methods("GET")

	// Players
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/{name}/report", handler.GetPlayerReport).Methods("GET")

	// Metrics and predictions
	api.HandleFunc("/metrics", handler.GetMetrics).Methods("GET")
	api.HandleFunc("/predictions", handler.GetPredictions).Methods("GET")
	api.HandleFunc("/predictions/next", handler.GetNextPrediction).Methods("GET")

	// Backfill operations
	api.HandleFunc("/backfill", backfillHandler.HandleBackfillRequest).Methods("POST")
	api.HandleFunc("/backfill/status", backfillHandler.HandleBackfillStatus).Methods("GET")
	api.HandleFunc("/backfill/jobs/{jobID}", backfillHandler.HandleBackfillJob).Methods("GET")

	return CORSMiddleware(router)
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
