package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// snapshotBatchSize bounds the number of rows per multi-row INSERT
const snapshotBatchSize = 100

// TeamStatsRepository handles team stat snapshot data access
type TeamStatsRepository struct {
	db *store.Database
}

// NewTeamStatsRepository creates a new team stats repository
func NewTeamStatsRepository(db *store.Database) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

// ReplaceAll swaps the entire team_stats table for the freshly computed
// snapshot set in a single transaction. Readers never observe a partially
// replaced set, and a failed run leaves the previous set untouched.
func (r *TeamStatsRepository) ReplaceAll(ctx context.Context, snapshots []*store.TeamStatSnapshot) (int, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning team stats transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM team_stats"); err != nil {
		return 0, fmt.Errorf("clearing team stats: %w", err)
	}

	inserted, err := r.insertSnapshots(ctx, tx, snapshots)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing team stats: %w", err)
	}

	return inserted, nil
}

// ReplaceSeason swaps the snapshot set for a single season, leaving the
// other seasons' rows intact. Used when a single-season recompute is
// requested.
func (r *TeamStatsRepository) ReplaceSeason(ctx context.Context, season string, snapshots []*store.TeamStatSnapshot) (int, error) {
	for _, snap := range snapshots {
		if snap.Season != season {
			return 0, fmt.Errorf("snapshot for team %d dated %s belongs to season %s, not %s",
				snap.TeamID, snap.StatDate.Format("2006-01-02"), snap.Season, season)
		}
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning team stats transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM team_stats WHERE season = $1", season); err != nil {
		return 0, fmt.Errorf("clearing team stats for season %s: %w", season, err)
	}

	inserted, err := r.insertSnapshots(ctx, tx, snapshots)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing team stats: %w", err)
	}

	return inserted, nil
}

func (r *TeamStatsRepository) insertSnapshots(ctx context.Context, tx *sql.Tx, snapshots []*store.TeamStatSnapshot) (int, error) {
	total := 0
	for start := 0; start < len(snapshots); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(snapshots) {
			end = len(snapshots)
		}

		batch := snapshots[start:end]
		if err := r.insertChunk(ctx, tx, batch); err != nil {
			return total, fmt.Errorf("inserting snapshots batch at %d: %w", start, err)
		}
		total += len(batch)
	}

	return total, nil
}

func (r *TeamStatsRepository) insertChunk(ctx context.Context, tx *sql.Tx, snapshots []*store.TeamStatSnapshot) error {
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO team_stats (
			team_id, stat_date, season, games_played, wins, losses,
			win_pct, avg_points, avg_opp_points, point_diff,
			home_record, away_record, last_5_record
		) VALUES `)

	args := make([]interface{}, 0, len(snapshots)*13)
	for i, snap := range snapshots {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 13
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13)
		args = append(args,
			snap.TeamID, snap.StatDate, snap.Season, snap.GamesPlayed, snap.Wins, snap.Losses,
			snap.WinPct, snap.AvgPoints, snap.AvgOppPoints, snap.PointDiff,
			snap.HomeRecord, snap.AwayRecord, snap.Last5Record,
		)
	}

	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetLatestForTeam returns a team's most recent snapshot, optionally scoped
// to a season
func (r *TeamStatsRepository) GetLatestForTeam(ctx context.Context, teamID int, season string) (*store.TeamStatSnapshot, error) {
	query := `
		SELECT team_id, stat_date, season, games_played, wins, losses,
			win_pct, avg_points, avg_opp_points, point_diff,
			home_record, away_record, last_5_record, calculated_at
		FROM team_stats
		WHERE team_id = $1 AND ($2 = '' OR season = $2)
		ORDER BY stat_date DESC
		LIMIT 1
	`

	snap := &store.TeamStatSnapshot{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID, season).Scan(
		&snap.TeamID, &snap.StatDate, &snap.Season, &snap.GamesPlayed, &snap.Wins, &snap.Losses,
		&snap.WinPct, &snap.AvgPoints, &snap.AvgOppPoints, &snap.PointDiff,
		&snap.HomeRecord, &snap.AwayRecord, &snap.Last5Record, &snap.CalculatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no stats found for team %d", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest team stats: %w", err)
	}

	return snap, nil
}

// GetTeamHistory returns a team's snapshots in a season, newest first
func (r *TeamStatsRepository) GetTeamHistory(ctx context.Context, teamID int, season string, limit int) ([]*store.TeamStatSnapshot, error) {
	query := `
		SELECT team_id, stat_date, season, games_played, wins, losses,
			win_pct, avg_points, avg_opp_points, point_diff,
			home_record, away_record, last_5_record, calculated_at
		FROM team_stats
		WHERE team_id = $1 AND ($2 = '' OR season = $2)
		ORDER BY stat_date DESC
		LIMIT $3
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying team stat history: %w", err)
	}
	defer rows.Close()

	var snapshots []*store.TeamStatSnapshot
	for rows.Next() {
		snap := &store.TeamStatSnapshot{}
		err := rows.Scan(
			&snap.TeamID, &snap.StatDate, &snap.Season, &snap.GamesPlayed, &snap.Wins, &snap.Losses,
			&snap.WinPct, &snap.AvgPoints, &snap.AvgOppPoints, &snap.PointDiff,
			&snap.HomeRecord, &snap.AwayRecord, &snap.Last5Record, &snap.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team stats: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// SeasonStatsSummary aggregates the snapshot table for one season
type SeasonStatsSummary struct {
	Season          string  `json:"season"`
	Teams           int     `json:"teams"`
	Records         int     `json:"records"`
	AvgGamesPerTeam float64 `json:"avg_games_per_team"`
	LeagueAvgPoints float64 `json:"league_avg_points"`
}

// SeasonSummaries returns per-season snapshot counts and league averages
// for run observability
func (r *TeamStatsRepository) SeasonSummaries(ctx context.Context) ([]SeasonStatsSummary, error) {
	query := `
		SELECT season,
			COUNT(DISTINCT team_id) as teams,
			COUNT(*) as total_records,
			COALESCE(AVG(games_played), 0) as avg_games_per_team,
			COALESCE(AVG(avg_points), 0) as league_avg_points
		FROM team_stats
		GROUP BY season
		ORDER BY season
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying stats season summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SeasonStatsSummary
	for rows.Next() {
		var s SeasonStatsSummary
		if err := rows.Scan(&s.Season, &s.Teams, &s.Records, &s.AvgGamesPerTeam, &s.LeagueAvgPoints); err != nil {
			return nil, fmt.Errorf("scanning stats season summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
