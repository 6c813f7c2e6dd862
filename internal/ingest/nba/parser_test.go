package nba

import (
	"testing"
	"time"
)

func gameFinderResponse(rows [][]interface{}) *statsResponse {
	return &statsResponse{
		ResultSets: []resultSet{{
			Name:    "LeagueGameFinderResults",
			Headers: []string{"SEASON_ID", "TEAM_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "WL", "PTS"},
			RowSet:  rows,
		}},
	}
}

func TestParseGameRowsPairsByMatchup(t *testing.T) {
	resp := gameFinderResponse([][]interface{}{
		{"22024", float64(1610612747), "0022400500", "2025-01-15", "LAL vs. BOS", "W", float64(115)},
		{"22024", float64(1610612738), "0022400500", "2025-01-15", "BOS @ LAL", "L", float64(110)},
	})

	games, skipped, err := ParseGameRows(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	game := games[0]
	if game.HomeTeamID != 1610612747 {
		t.Errorf("home team = %d, want 1610612747 (no @ in matchup)", game.HomeTeamID)
	}
	if game.AwayTeamID != 1610612738 {
		t.Errorf("away team = %d, want 1610612738 (@ in matchup)", game.AwayTeamID)
	}
	if !game.HomeTeamScore.Valid || game.HomeTeamScore.Int32 != 115 {
		t.Errorf("home score = %v, want 115", game.HomeTeamScore)
	}
	if !game.AwayTeamScore.Valid || game.AwayTeamScore.Int32 != 110 {
		t.Errorf("away score = %v, want 110", game.AwayTeamScore)
	}
	if game.GameStatus != "final" {
		t.Errorf("status = %s, want final", game.GameStatus)
	}
	if game.Season != "2024-25" {
		t.Errorf("season = %s, want 2024-25", game.Season)
	}
	if !game.GameDate.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("game date = %s, want 2025-01-15", game.GameDate.Format("2006-01-02"))
	}
}

func TestParseGameRowsScheduledWithoutScores(t *testing.T) {
	resp := gameFinderResponse([][]interface{}{
		{"22024", float64(1), "0022400501", "2025-01-16", "AAA vs. BBB", nil, nil},
		{"22024", float64(2), "0022400501", "2025-01-16", "BBB @ AAA", nil, nil},
	})

	games, _, err := ParseGameRows(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	game := games[0]
	if game.GameStatus != "scheduled" {
		t.Errorf("status = %s, want scheduled", game.GameStatus)
	}
	if game.HomeTeamScore.Valid || game.AwayTeamScore.Valid {
		t.Errorf("expected null scores, got %v / %v", game.HomeTeamScore, game.AwayTeamScore)
	}
}

func TestParseGameRowsSkipsUnpaired(t *testing.T) {
	resp := gameFinderResponse([][]interface{}{
		{"22024", float64(1), "0022400502", "2025-01-17", "AAA vs. BBB", "W", float64(100)},
		// Second row of 502 missing; 503 is complete
		{"22024", float64(3), "0022400503", "2025-01-17", "CCC vs. DDD", "W", float64(105)},
		{"22024", float64(4), "0022400503", "2025-01-17", "DDD @ CCC", "L", float64(99)},
	})

	games, skipped, err := ParseGameRows(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(games) != 1 || games[0].GameID != "0022400503" {
		t.Fatalf("expected only game 0022400503, got %d games", len(games))
	}
}

func TestParseGameRowsAmbiguousMatchup(t *testing.T) {
	resp := gameFinderResponse([][]interface{}{
		{"22024", float64(1), "0022400504", "2025-01-18", "AAA vs. BBB", "W", float64(100)},
		{"22024", float64(2), "0022400504", "2025-01-18", "BBB vs. AAA", "L", float64(90)},
	})

	games, skipped, err := ParseGameRows(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 0 || skipped != 1 {
		t.Errorf("got %d games, %d skipped; want 0 games, 1 skipped", len(games), skipped)
	}
}

func TestSeasonLabel(t *testing.T) {
	tests := []struct {
		seasonID string
		want     string
	}{
		{"22024", "2024-25"},
		{"22023", "2023-24"},
		{"21999", "1999-00"},
		{"bogus", "bogus"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := seasonLabel(tt.seasonID); got != tt.want {
			t.Errorf("seasonLabel(%q) = %q, want %q", tt.seasonID, got, tt.want)
		}
	}
}

func TestParseTeamStatsRows(t *testing.T) {
	resp := &statsResponse{
		ResultSets: []resultSet{{
			Name:    "LeagueDashTeamStats",
			Headers: []string{"TEAM_ID", "W", "L", "W_PCT", "PTS", "PLUS_MINUS", "FG_PCT", "FG3_PCT", "FT_PCT", "REB", "AST"},
			RowSet: [][]interface{}{
				{float64(1610612747), float64(30), float64(15), 0.667, 114.5, 3.2, 0.478, 0.365, 0.781, 44.1, 26.8},
			},
		}},
	}

	statDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	stats, err := ParseTeamStatsRows(resp, statDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d rows, want 1", len(stats))
	}

	stat := stats[0]
	if stat.TeamID != 1610612747 {
		t.Errorf("team id = %d, want 1610612747", stat.TeamID)
	}
	if !stat.Wins.Valid || stat.Wins.Int32 != 30 {
		t.Errorf("wins = %v, want 30", stat.Wins)
	}
	if !stat.PointsPerGame.Valid || stat.PointsPerGame.Float64 != 114.5 {
		t.Errorf("points per game = %v, want 114.5", stat.PointsPerGame)
	}
	// Opponent points derived from plus/minus
	if !stat.OppPointsPerGame.Valid || stat.OppPointsPerGame.Float64 != 114.5-3.2 {
		t.Errorf("opp points per game = %v, want %.1f", stat.OppPointsPerGame, 114.5-3.2)
	}
	if !stat.StatDate.Equal(statDate) {
		t.Errorf("stat date = %s, want %s", stat.StatDate, statDate)
	}
}
