package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// SeasonRepository handles season metadata access
type SeasonRepository struct {
	db *store.Database
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(db *store.Database) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// GetCurrent returns the season flagged as current
func (r *SeasonRepository) GetCurrent(ctx context.Context) (*store.Season, error) {
	query := `
		SELECT label, start_date, end_date, is_current
		FROM seasons
		WHERE is_current = true
		LIMIT 1
	`

	season := &store.Season{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&season.Label, &season.StartDate, &season.EndDate, &season.IsCurrent,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no current season configured")
	}
	if err != nil {
		return nil, fmt.Errorf("querying current season: %w", err)
	}

	return season, nil
}

// GetByLabel returns the season with the given label, e.g. "2024-25"
func (r *SeasonRepository) GetByLabel(ctx context.Context, label string) (*store.Season, error) {
	query := `
		SELECT label, start_date, end_date, is_current
		FROM seasons
		WHERE label = $1
	`

	season := &store.Season{}
	err := r.db.DB().QueryRowContext(ctx, query, label).Scan(
		&season.Label, &season.StartDate, &season.EndDate, &season.IsCurrent,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("season %s not found", label)
	}
	if err != nil {
		return nil, fmt.Errorf("querying season: %w", err)
	}

	return season, nil
}

// GetAll returns all configured seasons, oldest first
func (r *SeasonRepository) GetAll(ctx context.Context) ([]*store.Season, error) {
	query := `
		SELECT label, start_date, end_date, is_current
		FROM seasons
		ORDER BY start_date
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*store.Season
	for rows.Next() {
		season := &store.Season{}
		if err := rows.Scan(&season.Label, &season.StartDate, &season.EndDate, &season.IsCurrent); err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		seasons = append(seasons, season)
	}

	return seasons, rows.Err()
}
