package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns all active teams
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT team_id, team_name, abbreviation, conference, division, is_active, created_at
		FROM teams
		WHERE is_active = true
		ORDER BY team_name
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		err := rows.Scan(
			&team.TeamID, &team.TeamName, &team.Abbreviation,
			&team.Conference, &team.Division, &team.IsActive, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByID returns a single team by its id
func (r *TeamRepository) GetByID(ctx context.Context, teamID int) (*store.Team, error) {
	query := `
		SELECT team_id, team_name, abbreviation, conference, division, is_active, created_at
		FROM teams
		WHERE team_id = $1
	`

	team := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&team.TeamID, &team.TeamName, &team.Abbreviation,
		&team.Conference, &team.Division, &team.IsActive, &team.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d not found", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}

// ListActiveIDs returns the ids of all active teams
func (r *TeamRepository) ListActiveIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.DB().QueryContext(ctx, "SELECT team_id FROM teams WHERE is_active = true ORDER BY team_id")
	if err != nil {
		return nil, fmt.Errorf("querying team ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning team id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
