package etl

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store/repository"
)

const defaultWorkers = 8

// Pipeline orchestrates the two transformation stages: normalizing raw games
// into canonical games, and rebuilding the team stat snapshot set from them.
type Pipeline struct {
	rawGames  *repository.RawGameRepository
	games     *repository.GameRepository
	teamStats *repository.TeamStatsRepository
	workers   int
}

// NewPipeline creates a pipeline over the given repositories. workers bounds
// the number of partitions aggregated concurrently; zero or negative selects
// the default.
func NewPipeline(rawGames *repository.RawGameRepository, games *repository.GameRepository, teamStats *repository.TeamStatsRepository, workers int) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pipeline{
		rawGames:  rawGames,
		games:     games,
		teamStats: teamStats,
		workers:   workers,
	}
}

// ProcessResult reports one normalization run
type ProcessResult struct {
	Success         bool                            `json:"success"`
	RawGames        int                             `json:"raw_games"`
	Processed       int                             `json:"processed"`
	Excluded        int                             `json:"excluded"`
	DurationSeconds float64                         `json:"duration_seconds"`
	SeasonBreakdown []repository.SeasonGamesSummary `json:"season_breakdown,omitempty"`
	Error           string                          `json:"error,omitempty"`
}

// StatsResult reports one snapshot rebuild run
type StatsResult struct {
	Success         bool                            `json:"success"`
	Games           int                             `json:"games"`
	Partitions      int                             `json:"partitions"`
	Snapshots       int                             `json:"snapshots"`
	DurationSeconds float64                         `json:"duration_seconds"`
	SeasonBreakdown []repository.SeasonStatsSummary `json:"season_breakdown,omitempty"`
	Error           string                          `json:"error,omitempty"`
}

// ProcessRawGames normalizes every eligible raw game into the canonical games
// table. Re-running on unchanged input produces the same rows, so the
// operation is safe to schedule repeatedly.
func (p *Pipeline) ProcessRawGames(ctx context.Context) (*ProcessResult, error) {
	start := time.Now()
	result := &ProcessResult{}

	log.Println("[pipeline] Processing raw games...")

	raws, err := p.rawGames.ListFinalScored(ctx)
	if err != nil {
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("listing raw games: %w", err)
	}
	result.RawGames = len(raws)

	excluded, err := p.rawGames.CountExcluded(ctx)
	if err != nil {
		log.Printf("[pipeline] ⚠ Could not count excluded raw games: %v", err)
	} else {
		result.Excluded = excluded
	}

	games := NormalizeRawGames(raws)

	processed, err := p.games.UpsertBatch(ctx, games)
	if err != nil {
		result.Processed = processed
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("upserting canonical games: %w", err)
	}

	result.Processed = processed

	breakdown, err := p.games.SeasonSummaries(ctx)
	if err != nil {
		log.Printf("[pipeline] ⚠ Could not build season breakdown: %v", err)
	} else {
		result.SeasonBreakdown = breakdown
	}

	result.Success = true
	result.DurationSeconds = time.Since(start).Seconds()

	log.Printf("[pipeline] ✓ Processed %d games (%d excluded) in %.1fs",
		result.Processed, result.Excluded, result.DurationSeconds)

	return result, nil
}

// CalculateTeamStats rebuilds the entire team stat snapshot set from the
// canonical games table. Partitions are independent, so they aggregate on a
// bounded worker pool; the write is a single transactional swap.
func (p *Pipeline) CalculateTeamStats(ctx context.Context) (*StatsResult, error) {
	return p.calculateStats(ctx, "")
}

// CalculateSeasonStats rebuilds the snapshot set for a single season only
func (p *Pipeline) CalculateSeasonStats(ctx context.Context, season string) (*StatsResult, error) {
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}
	return p.calculateStats(ctx, season)
}

func (p *Pipeline) calculateStats(ctx context.Context, season string) (*StatsResult, error) {
	start := time.Now()
	result := &StatsResult{}

	if season == "" {
		log.Println("[pipeline] Calculating team stats for all seasons...")
	} else {
		log.Printf("[pipeline] Calculating team stats for season %s...", season)
	}

	games, err := p.games.ListCompleted(ctx)
	if err != nil {
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("listing canonical games: %w", err)
	}

	if season != "" {
		filtered := games[:0]
		for _, game := range games {
			if game.Season == season {
				filtered = append(filtered, game)
			}
		}
		games = filtered
	}
	result.Games = len(games)

	partitions := ExtractEvents(games)
	result.Partitions = len(partitions)

	snapshots, err := p.aggregateAll(ctx, partitions)
	if err != nil {
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, err
	}

	// Stable write order keeps runs byte-for-byte comparable
	sort.Slice(snapshots, func(i, j int) bool {
		a, b := snapshots[i], snapshots[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		return a.StatDate.Before(b.StatDate)
	})

	var written int
	if season == "" {
		written, err = p.teamStats.ReplaceAll(ctx, snapshots)
	} else {
		written, err = p.teamStats.ReplaceSeason(ctx, season, snapshots)
	}
	if err != nil {
		result.Error = err.Error()
		result.DurationSeconds = time.Since(start).Seconds()
		return result, fmt.Errorf("replacing team stats: %w", err)
	}
	result.Snapshots = written

	breakdown, err := p.teamStats.SeasonSummaries(ctx)
	if err != nil {
		log.Printf("[pipeline] ⚠ Could not build season breakdown: %v", err)
	} else {
		result.SeasonBreakdown = breakdown
	}

	result.Success = true
	result.DurationSeconds = time.Since(start).Seconds()

	log.Printf("[pipeline] ✓ Wrote %d snapshots across %d partitions in %.1fs",
		result.Snapshots, result.Partitions, result.DurationSeconds)

	return result, nil
}

// aggregateAll fans the partitions out over the worker pool and collects the
// emitted snapshots
func (p *Pipeline) aggregateAll(ctx context.Context, partitions map[PartitionKey][]TeamGameEvent) ([]*store.TeamStatSnapshot, error) {
	jobs := make(chan []TeamGameEvent, len(partitions))
	for _, events := range partitions {
		jobs <- events
	}
	close(jobs)

	var (
		mu        sync.Mutex
		snapshots []*store.TeamStatSnapshot
		wg        sync.WaitGroup
	)

	workers := p.workers
	if workers > len(partitions) && len(partitions) > 0 {
		workers = len(partitions)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for events := range jobs {
				if ctx.Err() != nil {
					return
				}
				partial := AggregatePartition(events)
				mu.Lock()
				snapshots = append(snapshots, partial...)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}

	return snapshots, nil
}
