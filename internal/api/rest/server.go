package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/cache"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/scheduler"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. redisCache and orchestrator may be
// nil; the corresponding endpoints degrade gracefully.
func NewServer(port string, db *store.Database, redisCache *cache.RedisCache, orchestrator *scheduler.Orchestrator) *Server {
	handler := NewHandler(db, redisCache, orchestrator)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Pipeline triggers
	api.HandleFunc("/pipeline/run", handler.TriggerFullRun).Methods("POST")
	api.HandleFunc("/pipeline/ingest", handler.TriggerIngest).Methods("POST")
	api.HandleFunc("/pipeline/process", handler.TriggerProcess).Methods("POST")
	api.HandleFunc("/pipeline/stats", handler.TriggerStats).Methods("POST")
	api.HandleFunc("/pipeline/status", handler.PipelineStatus).Methods("GET")

	// Teams and stats
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID}", handler.GetTeam).Methods("GET")
	api.HandleFunc("/teams/{teamID}/stats/latest", handler.GetLatestTeamStats).Methods("GET")
	api.HandleFunc("/teams/{teamID}/stats/history", handler.GetTeamStatsHistory).Methods("GET")
	api.HandleFunc("/teams/{teamID}/games", handler.GetTeamGames).Methods("GET")

	// Games
	api.HandleFunc("/games", handler.GetGamesByDate).Methods("GET")

	// Season summaries
	api.HandleFunc("/summaries/games", handler.GetGameSummaries).Methods("GET")
	api.HandleFunc("/summaries/stats", handler.GetStatsSummaries).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
