package etl

import (
	"testing"
	"time"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func finalGame(id, date, season string, home, away, homeScore, awayScore int) *store.Game {
	return &store.Game{
		GameID:     id,
		GameDate:   day(date),
		Season:     season,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		GameStatus: store.GameStatusFinal,
	}
}

func TestExtractEventsTwoPerGame(t *testing.T) {
	games := []*store.Game{
		finalGame("g1", "2025-01-10", "2024-25", 1, 2, 110, 100),
	}

	partitions := ExtractEvents(games)

	if len(partitions) != 2 {
		t.Fatalf("got %d partitions, want 2", len(partitions))
	}

	home := partitions[PartitionKey{TeamID: 1, Season: "2024-25"}]
	away := partitions[PartitionKey{TeamID: 2, Season: "2024-25"}]

	if len(home) != 1 || len(away) != 1 {
		t.Fatalf("got %d home and %d away events, want 1 each", len(home), len(away))
	}

	if home[0].Result != ResultWin || !home[0].IsHome {
		t.Errorf("home event = %+v, want home win", home[0])
	}
	if home[0].Points != 110 || home[0].OppPoints != 100 {
		t.Errorf("home event scores = %d/%d, want 110/100", home[0].Points, home[0].OppPoints)
	}

	if away[0].Result != ResultLoss || away[0].IsHome {
		t.Errorf("away event = %+v, want away loss", away[0])
	}
	if away[0].Points != 100 || away[0].OppPoints != 110 {
		t.Errorf("away event scores = %d/%d, want 100/110", away[0].Points, away[0].OppPoints)
	}
}

func TestExtractEventsTie(t *testing.T) {
	games := []*store.Game{
		finalGame("g1", "2025-01-10", "2024-25", 1, 2, 100, 100),
	}

	partitions := ExtractEvents(games)
	for key, events := range partitions {
		if events[0].Result != ResultTie {
			t.Errorf("partition %v result = %s, want tie", key, events[0].Result)
		}
	}
}

func TestExtractEventsOrdering(t *testing.T) {
	// Input deliberately out of order; same-day pair breaks the tie on game id
	games := []*store.Game{
		finalGame("g3", "2025-01-12", "2024-25", 1, 4, 100, 90),
		finalGame("g1", "2025-01-10", "2024-25", 1, 2, 100, 90),
		finalGame("g2b", "2025-01-11", "2024-25", 1, 3, 100, 90),
		finalGame("g2a", "2025-01-11", "2024-25", 3, 1, 90, 100),
	}

	partitions := ExtractEvents(games)
	events := partitions[PartitionKey{TeamID: 1, Season: "2024-25"}]

	wantOrder := []string{"g1", "g2a", "g2b", "g3"}
	if len(events) != len(wantOrder) {
		t.Fatalf("got %d events, want %d", len(events), len(wantOrder))
	}
	for i, id := range wantOrder {
		if events[i].GameID != id {
			t.Errorf("event %d = %s, want %s", i, events[i].GameID, id)
		}
	}
}

func TestExtractEventsSeasonIsolation(t *testing.T) {
	games := []*store.Game{
		finalGame("g1", "2024-04-10", "2023-24", 1, 2, 100, 90),
		finalGame("g2", "2024-10-25", "2024-25", 1, 2, 100, 90),
	}

	partitions := ExtractEvents(games)

	if len(partitions) != 4 {
		t.Fatalf("got %d partitions, want 4 (two teams, two seasons)", len(partitions))
	}

	old := partitions[PartitionKey{TeamID: 1, Season: "2023-24"}]
	current := partitions[PartitionKey{TeamID: 1, Season: "2024-25"}]
	if len(old) != 1 || len(current) != 1 {
		t.Errorf("seasons not isolated: %d and %d events", len(old), len(current))
	}
}
