package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/cache"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/etl"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/ingest/nba"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/scheduler"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store/repository"
)

const statsCacheTTL = 5 * time.Minute

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db           *store.Database
	cache        *cache.RedisCache
	orchestrator *scheduler.Orchestrator
	ingester     *nba.Ingester
	pipeline     *etl.Pipeline
	teams        *repository.TeamRepository
	games        *repository.GameRepository
	teamStats    *repository.TeamStatsRepository
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, redisCache *cache.RedisCache, orchestrator *scheduler.Orchestrator) *Handler {
	return &Handler{
		db:           db,
		cache:        redisCache,
		orchestrator: orchestrator,
		ingester:     nba.NewIngester(db),
		pipeline: etl.NewPipeline(
			repository.NewRawGameRepository(db),
			repository.NewGameRepository(db),
			repository.NewTeamStatsRepository(db),
			0,
		),
		teams:     repository.NewTeamRepository(db),
		games:     repository.NewGameRepository(db),
		teamStats: repository.NewTeamStatsRepository(db),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "nba-data-pipeline",
		"version": "1.0.0",
	})
}

// TriggerFullRun runs ingest, process and stats in sequence
func (h *Handler) TriggerFullRun(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not configured", nil)
		return
	}

	if err := h.orchestrator.RunOnce(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "Pipeline run failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Pipeline run complete"})
}

// TriggerIngest fetches recent games into the raw tables
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	daysBack := 3
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 365 {
			respondError(w, http.StatusBadRequest, "Invalid days parameter (1-365)", err)
			return
		}
		daysBack = parsed
	}

	result, err := h.ingester.IngestRecentGames(r.Context(), daysBack)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Ingestion failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TriggerProcess normalizes raw games into canonical games
func (h *Handler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.ProcessRawGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Processing failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TriggerStats rebuilds the team stat snapshots. An optional season query
// parameter limits the rebuild to one season.
func (h *Handler) TriggerStats(w http.ResponseWriter, r *http.Request) {
	var result *etl.StatsResult
	var err error

	if season := r.URL.Query().Get("season"); season != "" {
		result, err = h.pipeline.CalculateSeasonStats(r.Context(), season)
	} else {
		result, err = h.pipeline.CalculateTeamStats(r.Context())
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Stats calculation failed", err)
		return
	}

	if h.cache != nil {
		// Stale entries expire on TTL anyway, so a failed invalidation is
		// not fatal
		_ = h.cache.InvalidatePrefix(r.Context(), "teamstats:")
	}

	respondJSON(w, http.StatusOK, result)
}

// PipelineStatus returns the scheduler configuration
func (h *Handler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not configured", nil)
		return
	}

	respondJSON(w, http.StatusOK, h.orchestrator.GetStatus())
}

// GetTeams returns all active teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams, "count": len(teams)})
}

// GetTeam returns a specific team by ID
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseTeamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	team, err := h.teams.GetByID(r.Context(), teamID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found", err)
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// GetLatestTeamStats returns a team's most recent stat snapshot
func (h *Handler) GetLatestTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseTeamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	season := r.URL.Query().Get("season")

	cacheKey := fmt.Sprintf("teamstats:latest:%d:%s", teamID, season)
	if h.cache != nil {
		var cached store.TeamStatSnapshot
		if err := h.cache.GetJSON(r.Context(), cacheKey, &cached); err == nil {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	snap, err := h.teamStats.GetLatestForTeam(r.Context(), teamID, season)
	if err != nil {
		respondError(w, http.StatusNotFound, "No stats for team", err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cacheKey, snap, statsCacheTTL)
	}

	respondJSON(w, http.StatusOK, snap)
}

// GetTeamStatsHistory returns a team's snapshot history, newest first
func (h *Handler) GetTeamStatsHistory(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseTeamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	season := r.URL.Query().Get("season")
	limit := parseLimit(r, 30)

	history, err := h.teamStats.GetTeamHistory(r.Context(), teamID, season, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stat history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"snapshots": history, "count": len(history)})
}

// GetTeamGames returns a team's recent canonical games
func (h *Handler) GetTeamGames(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseTeamID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	season := r.URL.Query().Get("season")
	if season == "" {
		respondError(w, http.StatusBadRequest, "season query parameter is required", nil)
		return
	}
	limit := parseLimit(r, 10)

	games, err := h.games.GetByTeam(r.Context(), teamID, season, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games, "count": len(games)})
}

// GetGamesByDate returns all canonical games on a specific date
func (h *Handler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	games, err := h.games.GetByDate(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games, "count": len(games)})
}

// GetGameSummaries returns per-season game aggregates
func (h *Handler) GetGameSummaries(w http.ResponseWriter, r *http.Request) {
	cacheKey := "teamstats:summary:games"
	if h.cache != nil {
		var cached []repository.SeasonGamesSummary
		if err := h.cache.GetJSON(r.Context(), cacheKey, &cached); err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": cached})
			return
		}
	}

	summaries, err := h.games.SeasonSummaries(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch game summaries", err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cacheKey, summaries, statsCacheTTL)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": summaries})
}

// GetStatsSummaries returns per-season snapshot aggregates
func (h *Handler) GetStatsSummaries(w http.ResponseWriter, r *http.Request) {
	cacheKey := "teamstats:summary:stats"
	if h.cache != nil {
		var cached []repository.SeasonStatsSummary
		if err := h.cache.GetJSON(r.Context(), cacheKey, &cached); err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": cached})
			return
		}
	}

	summaries, err := h.teamStats.SeasonSummaries(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats summaries", err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cacheKey, summaries, statsCacheTTL)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": summaries})
}

func parseTeamID(r *http.Request) (int, error) {
	vars := mux.Vars(r)
	return strconv.Atoi(vars["teamID"])
}

func parseLimit(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
		return l
	}
	return fallback
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
