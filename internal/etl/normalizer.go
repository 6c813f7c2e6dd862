package etl

import (
	"database/sql"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// NormalizeRawGame converts one raw game into its canonical form. The caller
// guarantees both scores are present; ListFinalScored enforces that at the
// query level.
func NormalizeRawGame(raw *store.RawGame) *store.Game {
	homeScore := int(raw.HomeTeamScore.Int32)
	awayScore := int(raw.AwayTeamScore.Int32)

	var winnerID sql.NullInt32
	switch {
	case homeScore > awayScore:
		winnerID = sql.NullInt32{Int32: int32(raw.HomeTeamID), Valid: true}
	case awayScore > homeScore:
		winnerID = sql.NullInt32{Int32: int32(raw.AwayTeamID), Valid: true}
	}

	diff := homeScore - awayScore
	if diff < 0 {
		diff = -diff
	}

	return &store.Game{
		GameID:            raw.GameID,
		GameDate:          raw.GameDate,
		Season:            raw.Season,
		HomeTeamID:        raw.HomeTeamID,
		AwayTeamID:        raw.AwayTeamID,
		HomeScore:         homeScore,
		AwayScore:         awayScore,
		WinnerID:          winnerID,
		PointDifferential: diff,
		TotalScore:        homeScore + awayScore,
		GameStatus:        store.GameStatusFinal,
	}
}

// NormalizeRawGames converts a batch of raw games
func NormalizeRawGames(raws []*store.RawGame) []*store.Game {
	games := make([]*store.Game, 0, len(raws))
	for _, raw := range raws {
		games = append(games, NormalizeRawGame(raw))
	}
	return games
}
