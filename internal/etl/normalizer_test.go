package etl

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

func rawGame(id string, home, away int, homeScore, awayScore int32) *store.RawGame {
	return &store.RawGame{
		GameID:        id,
		GameDate:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Season:        "2024-25",
		HomeTeamID:    home,
		AwayTeamID:    away,
		HomeTeamScore: sql.NullInt32{Int32: homeScore, Valid: true},
		AwayTeamScore: sql.NullInt32{Int32: awayScore, Valid: true},
		GameStatus:    "final",
	}
}

func TestNormalizeRawGame(t *testing.T) {
	tests := []struct {
		name       string
		homeScore  int32
		awayScore  int32
		wantWinner int32
		wantTie    bool
		wantDiff   int
		wantTotal  int
	}{
		{"home win", 110, 102, 1, false, 8, 212},
		{"away win", 95, 108, 2, false, 13, 203},
		{"tie has no winner", 100, 100, 0, true, 0, 200},
		{"one point game", 99, 100, 2, false, 1, 199},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawGame("0022400001", 1, 2, tt.homeScore, tt.awayScore)
			game := NormalizeRawGame(raw)

			if tt.wantTie {
				if game.WinnerID.Valid {
					t.Errorf("expected null winner for tie, got %d", game.WinnerID.Int32)
				}
			} else {
				if !game.WinnerID.Valid || game.WinnerID.Int32 != tt.wantWinner {
					t.Errorf("winner = %v, want %d", game.WinnerID, tt.wantWinner)
				}
			}

			if game.PointDifferential != tt.wantDiff {
				t.Errorf("point differential = %d, want %d", game.PointDifferential, tt.wantDiff)
			}
			if game.TotalScore != tt.wantTotal {
				t.Errorf("total score = %d, want %d", game.TotalScore, tt.wantTotal)
			}
			if game.GameStatus != "final" {
				t.Errorf("game status = %s, want final", game.GameStatus)
			}
		})
	}
}

func TestNormalizeRawGameDeterministic(t *testing.T) {
	raw := rawGame("0022400002", 3, 4, 112, 107)

	first := NormalizeRawGame(raw)
	second := NormalizeRawGame(raw)

	if *first != *second {
		t.Errorf("normalizing the same raw game twice produced different results:\n%+v\n%+v", first, second)
	}
}

func TestNormalizeRawGamesPreservesOrder(t *testing.T) {
	raws := []*store.RawGame{
		rawGame("0022400003", 1, 2, 100, 90),
		rawGame("0022400004", 3, 4, 88, 95),
		rawGame("0022400005", 5, 6, 120, 118),
	}

	games := NormalizeRawGames(raws)

	if len(games) != len(raws) {
		t.Fatalf("got %d games, want %d", len(games), len(raws))
	}
	for i, game := range games {
		if game.GameID != raws[i].GameID {
			t.Errorf("game %d id = %s, want %s", i, game.GameID, raws[i].GameID)
		}
	}
}
