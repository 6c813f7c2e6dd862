package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// rawGameBatchSize bounds the number of rows per multi-row INSERT
const rawGameBatchSize = 100

// RawGameRepository handles raw game data access
type RawGameRepository struct {
	db *store.Database
}

// NewRawGameRepository creates a new raw game repository
func NewRawGameRepository(db *store.Database) *RawGameRepository {
	return &RawGameRepository{db: db}
}

// UpsertBatch inserts or updates raw games in batches, keyed on game_id.
// Re-ingesting the same game overwrites scores, status and payload so a
// scheduled game naturally transitions to final on the next fetch.
func (r *RawGameRepository) UpsertBatch(ctx context.Context, games []*store.RawGame) (int, error) {
	if len(games) == 0 {
		log.Println("[raw-games] No games to insert")
		return 0, nil
	}

	total := 0
	for start := 0; start < len(games); start += rawGameBatchSize {
		end := start + rawGameBatchSize
		if end > len(games) {
			end = len(games)
		}

		batch := games[start:end]
		if err := r.upsertChunk(ctx, batch); err != nil {
			return total, fmt.Errorf("upserting raw games batch at %d: %w", start, err)
		}
		total += len(batch)

		if start > 0 && start%500 == 0 {
			log.Printf("[raw-games] Progress: %d/%d games processed", start, len(games))
		}
	}

	log.Printf("[raw-games] Inserted/updated %d raw games", total)
	return total, nil
}

func (r *RawGameRepository) upsertChunk(ctx context.Context, games []*store.RawGame) error {
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO raw_games (
			game_id, game_date, season, home_team_id, away_team_id,
			home_team_score, away_team_score, game_status, raw_data
		) VALUES `)

	args := make([]interface{}, 0, len(games)*9)
	for i, game := range games {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args,
			game.GameID, game.GameDate, game.Season, game.HomeTeamID, game.AwayTeamID,
			game.HomeTeamScore, game.AwayTeamScore, game.GameStatus, game.RawData,
		)
	}

	sb.WriteString(`
		ON CONFLICT (game_id) DO UPDATE SET
			home_team_score = EXCLUDED.home_team_score,
			away_team_score = EXCLUDED.away_team_score,
			game_status = EXCLUDED.game_status,
			raw_data = EXCLUDED.raw_data,
			ingested_at = NOW()`)

	_, err := r.db.DB().ExecContext(ctx, sb.String(), args...)
	return err
}

// ListFinalScored returns all raw games that are final with both scores
// present, ordered by date then game id. Rows failing either condition are
// excluded here rather than surfaced as errors.
func (r *RawGameRepository) ListFinalScored(ctx context.Context) ([]*store.RawGame, error) {
	query := `
		SELECT game_id, game_date, season, home_team_id, away_team_id,
			home_team_score, away_team_score, game_status, raw_data, ingested_at
		FROM raw_games
		WHERE game_status = 'final'
			AND home_team_score IS NOT NULL
			AND away_team_score IS NOT NULL
		ORDER BY game_date, game_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying raw games: %w", err)
	}
	defer rows.Close()

	var games []*store.RawGame
	for rows.Next() {
		game := &store.RawGame{}
		err := rows.Scan(
			&game.GameID, &game.GameDate, &game.Season, &game.HomeTeamID, &game.AwayTeamID,
			&game.HomeTeamScore, &game.AwayTeamScore, &game.GameStatus, &game.RawData, &game.IngestedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning raw game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// CountExcluded returns the number of raw games currently ineligible for
// normalization (non-final or missing a score), for data-quality reporting.
func (r *RawGameRepository) CountExcluded(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM raw_games
		WHERE game_status != 'final'
			OR home_team_score IS NULL
			OR away_team_score IS NULL
	`

	var count int
	if err := r.db.DB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting excluded raw games: %w", err)
	}

	return count, nil
}
