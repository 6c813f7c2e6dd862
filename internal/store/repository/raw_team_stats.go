package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

const rawTeamStatBatchSize = 100

// RawTeamStatRepository handles league dashboard stat rows
type RawTeamStatRepository struct {
	db *store.Database
}

// NewRawTeamStatRepository creates a new raw team stat repository
func NewRawTeamStatRepository(db *store.Database) *RawTeamStatRepository {
	return &RawTeamStatRepository{db: db}
}

// InsertBatch appends dashboard stat rows. The table is append-only; each
// ingestion pass captures a fresh point-in-time row per team.
func (r *RawTeamStatRepository) InsertBatch(ctx context.Context, stats []*store.RawTeamStat) (int, error) {
	if len(stats) == 0 {
		log.Println("[raw-team-stats] No stats to insert")
		return 0, nil
	}

	total := 0
	for start := 0; start < len(stats); start += rawTeamStatBatchSize {
		end := start + rawTeamStatBatchSize
		if end > len(stats) {
			end = len(stats)
		}

		batch := stats[start:end]
		if err := r.insertChunk(ctx, batch); err != nil {
			return total, fmt.Errorf("inserting raw team stats batch at %d: %w", start, err)
		}
		total += len(batch)
	}

	log.Printf("[raw-team-stats] Inserted %d dashboard rows", total)
	return total, nil
}

func (r *RawTeamStatRepository) insertChunk(ctx context.Context, stats []*store.RawTeamStat) error {
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO raw_team_stats (
			team_id, game_id, stat_date, wins, losses, win_pct,
			points_per_game, opp_points_per_game, field_goal_pct,
			three_point_pct, free_throw_pct, rebounds_per_game,
			assists_per_game, raw_data
		) VALUES `)

	args := make([]interface{}, 0, len(stats)*14)
	for i, stat := range stats {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 14
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13, base+14)
		args = append(args,
			stat.TeamID, stat.GameID, stat.StatDate, stat.Wins, stat.Losses, stat.WinPct,
			stat.PointsPerGame, stat.OppPointsPerGame, stat.FieldGoalPct,
			stat.ThreePointPct, stat.FreeThrowPct, stat.ReboundsPerGame,
			stat.AssistsPerGame, stat.RawData,
		)
	}

	_, err := r.db.DB().ExecContext(ctx, sb.String(), args...)
	return err
}
