package nba

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store/repository"
)

// Ingester pulls game and dashboard data from the stats API into the raw
// tables. It never touches the canonical tables; that is the pipeline's job.
// With DryRun set, everything is fetched and parsed but nothing is written.
type Ingester struct {
	client   *Client
	rawGames *repository.RawGameRepository
	rawStats *repository.RawTeamStatRepository
	seasons  *repository.SeasonRepository
	teams    *repository.TeamRepository

	DryRun bool
}

// IngestResult reports one ingestion run
type IngestResult struct {
	Success         bool    `json:"success"`
	GamesIngested   int     `json:"games_ingested"`
	StatsIngested   int     `json:"stats_ingested"`
	Skipped         int     `json:"skipped"`
	Seasons         int     `json:"seasons"`
	DurationSeconds float64 `json:"duration_seconds"`
	Error           string  `json:"error,omitempty"`
}

// NewIngester creates an ingester using the default API base
func NewIngester(db *store.Database) *Ingester {
	return NewIngesterWithBaseURL(db, "")
}

// NewIngesterWithBaseURL creates an ingester overriding the stats API base URL
func NewIngesterWithBaseURL(db *store.Database, baseURL string) *Ingester {
	return &Ingester{
		client:   New(baseURL),
		rawGames: repository.NewRawGameRepository(db),
		rawStats: repository.NewRawTeamStatRepository(db),
		seasons:  repository.NewSeasonRepository(db),
		teams:    repository.NewTeamRepository(db),
	}
}

// IngestRecentGames fetches games from the last daysBack days for the current
// season. This is the scheduled daily path.
func (i *Ingester) IngestRecentGames(ctx context.Context, daysBack int) (*IngestResult, error) {
	season, err := i.seasons.GetCurrent(ctx)
	if err != nil {
		return failedIngest(err), err
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -daysBack)
	return i.IngestDateRange(ctx, season.Label, from, to)
}

// IngestDateRange fetches games for one season within a date window. Zero
// bounds fetch the whole season.
func (i *Ingester) IngestDateRange(ctx context.Context, season string, from, to time.Time) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{Seasons: 1}

	log.Printf("[ingest] Fetching games for %s (%s to %s)",
		season, formatBound(from), formatBound(to))

	resp, err := i.client.FetchLeagueGames(ctx, season, from, to)
	if err != nil {
		return failedIngest(err), fmt.Errorf("fetching league games: %w", err)
	}

	games, skipped, err := ParseGameRows(resp)
	if err != nil {
		return failedIngest(err), fmt.Errorf("parsing game rows: %w", err)
	}
	result.Skipped = skipped

	if i.DryRun {
		result.GamesIngested = len(games)
		result.Success = true
		result.DurationSeconds = time.Since(start).Seconds()
		log.Printf("[ingest] ✓ Dry run: would ingest %d games for %s (%d skipped)",
			len(games), season, skipped)
		return result, nil
	}

	ingested, err := i.rawGames.UpsertBatch(ctx, games)
	if err != nil {
		result.GamesIngested = ingested
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("storing raw games: %w", err)
	}

	result.GamesIngested = ingested
	result.Success = true
	result.DurationSeconds = time.Since(start).Seconds()

	log.Printf("[ingest] ✓ Ingested %d games for %s (%d skipped) in %.1fs",
		result.GamesIngested, season, result.Skipped, result.DurationSeconds)

	return result, nil
}

// IngestSeasons fetches the full schedule for each season label in turn.
// Used for historical backfills; one season's failure aborts the run so a
// partial backfill is visible rather than silent.
func (i *Ingester) IngestSeasons(ctx context.Context, labels []string) (*IngestResult, error) {
	start := time.Now()
	combined := &IngestResult{}

	for _, label := range labels {
		season, err := i.seasons.GetByLabel(ctx, label)
		if err != nil {
			combined.Error = err.Error()
			combined.DurationSeconds = time.Since(start).Seconds()
			return combined, err
		}

		result, err := i.IngestDateRange(ctx, season.Label, season.StartDate, season.EndDate)
		if result != nil {
			combined.GamesIngested += result.GamesIngested
			combined.Skipped += result.Skipped
		}
		if err != nil {
			combined.Error = err.Error()
			combined.DurationSeconds = time.Since(start).Seconds()
			return combined, fmt.Errorf("ingesting season %s: %w", label, err)
		}
		combined.Seasons++
	}

	combined.Success = true
	combined.DurationSeconds = time.Since(start).Seconds()

	log.Printf("[ingest] ✓ Backfilled %d seasons, %d games total in %.1fs",
		combined.Seasons, combined.GamesIngested, combined.DurationSeconds)

	return combined, nil
}

// IngestTeamStats captures the current league dashboard row per team
func (i *Ingester) IngestTeamStats(ctx context.Context, season string) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{Seasons: 1}

	if season == "" {
		current, err := i.seasons.GetCurrent(ctx)
		if err != nil {
			return failedIngest(err), err
		}
		season = current.Label
	}

	log.Printf("[ingest] Fetching team dashboard for %s", season)

	resp, err := i.client.FetchTeamStats(ctx, season)
	if err != nil {
		return failedIngest(err), fmt.Errorf("fetching team stats: %w", err)
	}

	stats, err := ParseTeamStatsRows(resp, time.Now().UTC())
	if err != nil {
		return failedIngest(err), fmt.Errorf("parsing team stats: %w", err)
	}

	stats, dropped, err := i.filterKnownTeams(ctx, stats)
	if err != nil {
		return failedIngest(err), err
	}
	if dropped > 0 {
		log.Printf("[ingest] ⚠ Dropped %d dashboard rows for unknown teams", dropped)
	}

	if i.DryRun {
		result.StatsIngested = len(stats)
		result.Success = true
		result.DurationSeconds = time.Since(start).Seconds()
		log.Printf("[ingest] ✓ Dry run: would capture %d dashboard rows for %s", len(stats), season)
		return result, nil
	}

	ingested, err := i.rawStats.InsertBatch(ctx, stats)
	if err != nil {
		result.StatsIngested = ingested
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("storing team stats: %w", err)
	}

	result.StatsIngested = ingested
	result.Success = true
	result.DurationSeconds = time.Since(start).Seconds()

	log.Printf("[ingest] ✓ Captured %d dashboard rows for %s", result.StatsIngested, season)

	return result, nil
}

// filterKnownTeams drops dashboard rows whose team id is not seeded; the
// raw_team_stats table has a foreign key on teams
func (i *Ingester) filterKnownTeams(ctx context.Context, stats []*store.RawTeamStat) ([]*store.RawTeamStat, int, error) {
	ids, err := i.teams.ListActiveIDs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("loading team ids: %w", err)
	}

	known := make(map[int]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	kept := stats[:0]
	dropped := 0
	for _, stat := range stats {
		if known[stat.TeamID] {
			kept = append(kept, stat)
		} else {
			dropped++
		}
	}

	return kept, dropped, nil
}

func failedIngest(err error) *IngestResult {
	return &IngestResult{Error: err.Error()}
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format("2006-01-02")
}
