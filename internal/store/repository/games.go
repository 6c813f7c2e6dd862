package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// gameBatchSize bounds the number of rows per multi-row INSERT
const gameBatchSize = 100

// GameRepository handles canonical game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// UpsertBatch inserts or updates canonical games keyed on game_id. Re-running
// the normalizer on unchanged input rewrites identical values, so the
// operation is idempotent.
func (r *GameRepository) UpsertBatch(ctx context.Context, games []*store.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	total := 0
	for start := 0; start < len(games); start += gameBatchSize {
		end := start + gameBatchSize
		if end > len(games) {
			end = len(games)
		}

		batch := games[start:end]
		if err := r.upsertChunk(ctx, batch); err != nil {
			return total, fmt.Errorf("upserting games batch at %d: %w", start, err)
		}
		total += len(batch)
	}

	return total, nil
}

func (r *GameRepository) upsertChunk(ctx context.Context, games []*store.Game) error {
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO games (
			game_id, game_date, season, home_team_id, away_team_id,
			home_score, away_score, winner_id, point_differential,
			total_score, game_status
		) VALUES `)

	args := make([]interface{}, 0, len(games)*11)
	for i, game := range games {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 11
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11)
		args = append(args,
			game.GameID, game.GameDate, game.Season, game.HomeTeamID, game.AwayTeamID,
			game.HomeScore, game.AwayScore, game.WinnerID, game.PointDifferential,
			game.TotalScore, game.GameStatus,
		)
	}

	sb.WriteString(`
		ON CONFLICT (game_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			winner_id = EXCLUDED.winner_id,
			point_differential = EXCLUDED.point_differential,
			total_score = EXCLUDED.total_score,
			processed_at = NOW()`)

	_, err := r.db.DB().ExecContext(ctx, sb.String(), args...)
	return err
}

// ListCompleted returns all canonical games ordered by season, date and
// game id. The ordering is the backbone of the rolling stats computation and
// must stay deterministic.
func (r *GameRepository) ListCompleted(ctx context.Context) ([]*store.Game, error) {
	query := `
		SELECT game_id, game_date, season, home_team_id, away_team_id,
			home_score, away_score, winner_id, point_differential,
			total_score, game_status, processed_at
		FROM games
		WHERE game_status = 'final'
		ORDER BY season, game_date, game_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByDate returns all canonical games on a specific date
func (r *GameRepository) GetByDate(ctx context.Context, date time.Time) ([]*store.Game, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	query := `
		SELECT game_id, game_date, season, home_team_id, away_team_id,
			home_score, away_score, winner_id, point_differential,
			total_score, game_status, processed_at
		FROM games
		WHERE game_date >= $1 AND game_date < $2
		ORDER BY game_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, startOfDay, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("querying games by date: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByTeam returns a team's most recent canonical games in a season
func (r *GameRepository) GetByTeam(ctx context.Context, teamID int, season string, limit int) ([]*store.Game, error) {
	query := `
		SELECT game_id, game_date, season, home_team_id, away_team_id,
			home_score, away_score, winner_id, point_differential,
			total_score, game_status, processed_at
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
			AND season = $2
		ORDER BY game_date DESC, game_id DESC
		LIMIT $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying team games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// SeasonGamesSummary aggregates the canonical game table for one season
type SeasonGamesSummary struct {
	Season        string  `json:"season"`
	Games         int     `json:"games"`
	AvgTotalScore float64 `json:"avg_total_score"`
	AvgMargin     float64 `json:"avg_margin"`
}

// SeasonSummaries returns per-season game counts and league scoring averages
func (r *GameRepository) SeasonSummaries(ctx context.Context) ([]SeasonGamesSummary, error) {
	query := `
		SELECT season,
			COUNT(*) as game_count,
			COALESCE(AVG(total_score), 0) as avg_total_score,
			COALESCE(AVG(point_differential), 0) as avg_margin
		FROM games
		GROUP BY season
		ORDER BY season
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying season summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SeasonGamesSummary
	for rows.Next() {
		var s SeasonGamesSummary
		if err := rows.Scan(&s.Season, &s.Games, &s.AvgTotalScore, &s.AvgMargin); err != nil {
			return nil, fmt.Errorf("scanning season summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// scanGames scans multiple game rows
func (r *GameRepository) scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		game := &store.Game{}
		err := rows.Scan(
			&game.GameID, &game.GameDate, &game.Season, &game.HomeTeamID, &game.AwayTeamID,
			&game.HomeScore, &game.AwayScore, &game.WinnerID, &game.PointDifferential,
			&game.TotalScore, &game.GameStatus, &game.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
