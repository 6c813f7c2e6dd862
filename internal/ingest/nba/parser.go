package nba

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// teamGameRow is one side of a game as leaguegamefinder reports it
type teamGameRow struct {
	SeasonID string `json:"season_id"`
	TeamID   int    `json:"team_id"`
	GameID   string `json:"game_id"`
	GameDate string `json:"game_date"`
	Matchup  string `json:"matchup"`
	WinLoss  string `json:"wl"`
	Points   int    `json:"pts"`
	HasScore bool   `json:"-"`
}

// ParseGameRows pairs the per-team rows of a leaguegamefinder response into
// raw games. The away team is the one whose MATCHUP carries the '@' marker.
// Rows that never find their pair are dropped and counted, not fatal.
func ParseGameRows(resp *statsResponse) ([]*store.RawGame, int, error) {
	rs, err := resp.findResultSet("LeagueGameFinderResults")
	if err != nil {
		// Older responses name the set differently; fall back to the first
		rs, err = resp.findResultSet("")
		if err != nil {
			return nil, 0, err
		}
	}

	idx := columnIndex(rs.Headers)

	rowsByGame := make(map[string][]teamGameRow)
	var order []string
	for _, raw := range rs.RowSet {
		row, err := parseTeamGameRow(raw, idx)
		if err != nil {
			log.Printf("[nba-parser] ⚠ Skipping malformed row: %v", err)
			continue
		}
		if _, seen := rowsByGame[row.GameID]; !seen {
			order = append(order, row.GameID)
		}
		rowsByGame[row.GameID] = append(rowsByGame[row.GameID], row)
	}

	var games []*store.RawGame
	skipped := 0
	for _, gameID := range order {
		pair := rowsByGame[gameID]
		if len(pair) != 2 {
			skipped++
			continue
		}

		game, err := pairToRawGame(pair[0], pair[1])
		if err != nil {
			log.Printf("[nba-parser] ⚠ Skipping game %s: %v", gameID, err)
			skipped++
			continue
		}
		games = append(games, game)
	}

	return games, skipped, nil
}

func parseTeamGameRow(raw []interface{}, idx map[string]int) (teamGameRow, error) {
	row := teamGameRow{
		SeasonID: cellString(raw, idx, "SEASON_ID"),
		GameID:   cellString(raw, idx, "GAME_ID"),
		GameDate: cellString(raw, idx, "GAME_DATE"),
		Matchup:  cellString(raw, idx, "MATCHUP"),
		WinLoss:  cellString(raw, idx, "WL"),
	}

	teamID, ok := cellInt(raw, idx, "TEAM_ID")
	if !ok {
		return row, fmt.Errorf("missing TEAM_ID")
	}
	row.TeamID = teamID

	if row.GameID == "" {
		return row, fmt.Errorf("missing GAME_ID")
	}
	if row.GameDate == "" {
		return row, fmt.Errorf("missing GAME_DATE")
	}

	if pts, ok := cellInt(raw, idx, "PTS"); ok {
		row.Points = pts
		row.HasScore = true
	}

	return row, nil
}

func pairToRawGame(a, b teamGameRow) (*store.RawGame, error) {
	var home, away teamGameRow
	switch {
	case strings.Contains(a.Matchup, "@") && !strings.Contains(b.Matchup, "@"):
		away, home = a, b
	case strings.Contains(b.Matchup, "@") && !strings.Contains(a.Matchup, "@"):
		away, home = b, a
	default:
		return nil, fmt.Errorf("cannot determine home team from matchups %q and %q", a.Matchup, b.Matchup)
	}

	gameDate, err := time.Parse("2006-01-02", home.GameDate)
	if err != nil {
		return nil, fmt.Errorf("parsing game date %q: %w", home.GameDate, err)
	}

	game := &store.RawGame{
		GameID:     home.GameID,
		GameDate:   gameDate,
		Season:     seasonLabel(home.SeasonID),
		HomeTeamID: home.TeamID,
		AwayTeamID: away.TeamID,
		GameStatus: store.GameStatusScheduled,
	}

	if home.HasScore && away.HasScore {
		game.HomeTeamScore = sql.NullInt32{Int32: int32(home.Points), Valid: true}
		game.AwayTeamScore = sql.NullInt32{Int32: int32(away.Points), Valid: true}
		game.GameStatus = store.GameStatusFinal
	}

	if payload, err := json.Marshal([]teamGameRow{home, away}); err == nil {
		game.RawData = sql.NullString{String: string(payload), Valid: true}
	}

	return game, nil
}

// seasonLabel converts a stats API season id like "22024" into the
// conventional "2024-25" label. The leading digit is the season type.
func seasonLabel(seasonID string) string {
	if len(seasonID) < 5 {
		return seasonID
	}
	year := seasonID[len(seasonID)-4:]
	var start int
	if _, err := fmt.Sscanf(year, "%d", &start); err != nil {
		return seasonID
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// ParseTeamStatsRows converts a leaguedashteamstats response into dashboard
// stat rows. Opponent points come from PLUS_MINUS since the Base measure
// does not report them directly.
func ParseTeamStatsRows(resp *statsResponse, statDate time.Time) ([]*store.RawTeamStat, error) {
	rs, err := resp.findResultSet("LeagueDashTeamStats")
	if err != nil {
		rs, err = resp.findResultSet("")
		if err != nil {
			return nil, err
		}
	}

	idx := columnIndex(rs.Headers)

	var stats []*store.RawTeamStat
	for _, raw := range rs.RowSet {
		teamID, ok := cellInt(raw, idx, "TEAM_ID")
		if !ok {
			log.Printf("[nba-parser] ⚠ Skipping dashboard row without TEAM_ID")
			continue
		}

		stat := &store.RawTeamStat{
			TeamID:   teamID,
			StatDate: statDate,
		}

		if v, ok := cellInt(raw, idx, "W"); ok {
			stat.Wins = sql.NullInt32{Int32: int32(v), Valid: true}
		}
		if v, ok := cellInt(raw, idx, "L"); ok {
			stat.Losses = sql.NullInt32{Int32: int32(v), Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "W_PCT"); ok {
			stat.WinPct = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "PTS"); ok {
			stat.PointsPerGame = sql.NullFloat64{Float64: v, Valid: true}
			if pm, ok := cellFloat(raw, idx, "PLUS_MINUS"); ok {
				stat.OppPointsPerGame = sql.NullFloat64{Float64: v - pm, Valid: true}
			}
		}
		if v, ok := cellFloat(raw, idx, "FG_PCT"); ok {
			stat.FieldGoalPct = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "FG3_PCT"); ok {
			stat.ThreePointPct = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "FT_PCT"); ok {
			stat.FreeThrowPct = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "REB"); ok {
			stat.ReboundsPerGame = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := cellFloat(raw, idx, "AST"); ok {
			stat.AssistsPerGame = sql.NullFloat64{Float64: v, Valid: true}
		}

		if payload, err := json.Marshal(raw); err == nil {
			stat.RawData = sql.NullString{String: string(payload), Valid: true}
		}

		stats = append(stats, stat)
	}

	return stats, nil
}
