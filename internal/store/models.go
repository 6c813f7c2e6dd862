package store

import (
	"database/sql"
	"time"
)

// RawGame is one externally reported game exactly as the stats API returned
// it. Rows may arrive with missing scores (scheduled games) and are re-fetched
// on every ingestion pass, so the table is upsert-only keyed on game_id.
type RawGame struct {
	GameID        string         `json:"game_id" db:"game_id"`
	GameDate      time.Time      `json:"game_date" db:"game_date"`
	Season        string         `json:"season" db:"season"`
	HomeTeamID    int            `json:"home_team_id" db:"home_team_id"`
	AwayTeamID    int            `json:"away_team_id" db:"away_team_id"`
	HomeTeamScore sql.NullInt32  `json:"home_team_score,omitempty" db:"home_team_score"`
	AwayTeamScore sql.NullInt32  `json:"away_team_score,omitempty" db:"away_team_score"`
	GameStatus    string         `json:"game_status" db:"game_status"`
	RawData       sql.NullString `json:"raw_data,omitempty" db:"raw_data"`
	IngestedAt    time.Time      `json:"ingested_at" db:"ingested_at"`
}

// Game is the canonical, analysis-ready record derived from a final RawGame
// with both scores present. WinnerID is null only when the scores are equal.
type Game struct {
	GameID            string        `json:"game_id" db:"game_id"`
	GameDate          time.Time     `json:"game_date" db:"game_date"`
	Season            string        `json:"season" db:"season"`
	HomeTeamID        int           `json:"home_team_id" db:"home_team_id"`
	AwayTeamID        int           `json:"away_team_id" db:"away_team_id"`
	HomeScore         int           `json:"home_score" db:"home_score"`
	AwayScore         int           `json:"away_score" db:"away_score"`
	WinnerID          sql.NullInt32 `json:"winner_id,omitempty" db:"winner_id"`
	PointDifferential int           `json:"point_differential" db:"point_differential"`
	TotalScore        int           `json:"total_score" db:"total_score"`
	GameStatus        string        `json:"game_status" db:"game_status"`
	ProcessedAt       time.Time     `json:"processed_at" db:"processed_at"`
}

// TeamStatSnapshot is a team's cumulative and rolling state as of the last
// game it played on StatDate. One row per (team_id, stat_date); the whole
// set is rebuilt from scratch on every stats run.
type TeamStatSnapshot struct {
	TeamID       int       `json:"team_id" db:"team_id"`
	StatDate     time.Time `json:"stat_date" db:"stat_date"`
	Season       string    `json:"season" db:"season"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	WinPct       float64   `json:"win_pct" db:"win_pct"`
	AvgPoints    float64   `json:"avg_points" db:"avg_points"`
	AvgOppPoints float64   `json:"avg_opp_points" db:"avg_opp_points"`
	PointDiff    float64   `json:"point_diff" db:"point_diff"`
	HomeRecord   string    `json:"home_record" db:"home_record"`
	AwayRecord   string    `json:"away_record" db:"away_record"`
	Last5Record  string    `json:"last_5_record" db:"last_5_record"`
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// RawTeamStat is a point-in-time league dashboard row for one team, captured
// alongside game ingestion for later comparison against computed snapshots.
type RawTeamStat struct {
	ID               int             `json:"id" db:"id"`
	TeamID           int             `json:"team_id" db:"team_id"`
	GameID           sql.NullString  `json:"game_id,omitempty" db:"game_id"`
	StatDate         time.Time       `json:"stat_date" db:"stat_date"`
	Wins             sql.NullInt32   `json:"wins,omitempty" db:"wins"`
	Losses           sql.NullInt32   `json:"losses,omitempty" db:"losses"`
	WinPct           sql.NullFloat64 `json:"win_pct,omitempty" db:"win_pct"`
	PointsPerGame    sql.NullFloat64 `json:"points_per_game,omitempty" db:"points_per_game"`
	OppPointsPerGame sql.NullFloat64 `json:"opp_points_per_game,omitempty" db:"opp_points_per_game"`
	FieldGoalPct     sql.NullFloat64 `json:"field_goal_pct,omitempty" db:"field_goal_pct"`
	ThreePointPct    sql.NullFloat64 `json:"three_point_pct,omitempty" db:"three_point_pct"`
	FreeThrowPct     sql.NullFloat64 `json:"free_throw_pct,omitempty" db:"free_throw_pct"`
	ReboundsPerGame  sql.NullFloat64 `json:"rebounds_per_game,omitempty" db:"rebounds_per_game"`
	AssistsPerGame   sql.NullFloat64 `json:"assists_per_game,omitempty" db:"assists_per_game"`
	RawData          sql.NullString  `json:"raw_data,omitempty" db:"raw_data"`
	IngestedAt       time.Time       `json:"ingested_at" db:"ingested_at"`
}

// Team represents an NBA franchise
type Team struct {
	TeamID       int            `json:"team_id" db:"team_id"`
	TeamName     string         `json:"team_name" db:"team_name"`
	Abbreviation string         `json:"abbreviation" db:"abbreviation"`
	Conference   sql.NullString `json:"conference,omitempty" db:"conference"`
	Division     sql.NullString `json:"division,omitempty" db:"division"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Season represents an NBA regular season and its date window
type Season struct {
	Label     string    `json:"label" db:"label"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	IsCurrent bool      `json:"is_current" db:"is_current"`
}

// Game status values as reported by the stats API
const (
	GameStatusScheduled = "scheduled"
	GameStatusFinal     = "final"
)
