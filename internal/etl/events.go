package etl

import (
	"sort"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

// Game results from a single team's perspective
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultTie  = "tie"
)

// TeamGameEvent is one canonical game seen from one team's side. Every game
// yields exactly two events, one per participant.
type TeamGameEvent struct {
	TeamID    int
	GameID    string
	Season    string
	GameDate  time.Time
	Points    int
	OppPoints int
	Result    string
	IsHome    bool
}

// PartitionKey identifies one team's run of games within a season. Rolling
// stats never cross partition boundaries.
type PartitionKey struct {
	TeamID int
	Season string
}

// ExtractEvents expands canonical games into per-team events grouped by
// (team, season). Within each partition events are ordered by game date, with
// game id breaking ties so same-day pairs replay in a stable order.
func ExtractEvents(games []*store.Game) map[PartitionKey][]TeamGameEvent {
	partitions := make(map[PartitionKey][]TeamGameEvent)

	for _, game := range games {
		homeResult, awayResult := resultsFor(game)

		home := TeamGameEvent{
			TeamID:    game.HomeTeamID,
			GameID:    game.GameID,
			Season:    game.Season,
			GameDate:  game.GameDate,
			Points:    game.HomeScore,
			OppPoints: game.AwayScore,
			Result:    homeResult,
			IsHome:    true,
		}
		away := TeamGameEvent{
			TeamID:    game.AwayTeamID,
			GameID:    game.GameID,
			Season:    game.Season,
			GameDate:  game.GameDate,
			Points:    game.AwayScore,
			OppPoints: game.HomeScore,
			Result:    awayResult,
			IsHome:    false,
		}

		homeKey := PartitionKey{TeamID: game.HomeTeamID, Season: game.Season}
		awayKey := PartitionKey{TeamID: game.AwayTeamID, Season: game.Season}
		partitions[homeKey] = append(partitions[homeKey], home)
		partitions[awayKey] = append(partitions[awayKey], away)
	}

	for key := range partitions {
		events := partitions[key]
		sort.SliceStable(events, func(i, j int) bool {
			if !events[i].GameDate.Equal(events[j].GameDate) {
				return events[i].GameDate.Before(events[j].GameDate)
			}
			return events[i].GameID < events[j].GameID
		})
	}

	return partitions
}

func resultsFor(game *store.Game) (home, away string) {
	switch {
	case game.HomeScore > game.AwayScore:
		return ResultWin, ResultLoss
	case game.AwayScore > game.HomeScore:
		return ResultLoss, ResultWin
	default:
		return ResultTie, ResultTie
	}
}
