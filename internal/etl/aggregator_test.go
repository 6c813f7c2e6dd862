package etl

import (
	"fmt"
	"math"
	"testing"
)

const eps = 0.0001

func event(teamID int, date string, points, oppPoints int, result string, isHome bool) TeamGameEvent {
	return TeamGameEvent{
		TeamID:    teamID,
		GameID:    fmt.Sprintf("g-%s", date),
		Season:    "2024-25",
		GameDate:  day(date),
		Points:    points,
		OppPoints: oppPoints,
		Result:    result,
		IsHome:    isHome,
	}
}

func TestAggregatePartitionThreeGames(t *testing.T) {
	// Two home wins then a road loss: 105-95, 110-100, 90-100
	events := []TeamGameEvent{
		event(1, "2025-01-10", 105, 95, ResultWin, true),
		event(1, "2025-01-12", 110, 100, ResultWin, true),
		event(1, "2025-01-14", 90, 100, ResultLoss, false),
	}

	snapshots := AggregatePartition(events)

	if len(snapshots) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snapshots))
	}

	last := snapshots[2]
	if last.GamesPlayed != 3 || last.Wins != 2 || last.Losses != 1 {
		t.Errorf("record = %d GP %d-%d, want 3 GP 2-1", last.GamesPlayed, last.Wins, last.Losses)
	}
	if math.Abs(last.WinPct-0.667) > eps {
		t.Errorf("win pct = %.3f, want 0.667", last.WinPct)
	}
	if math.Abs(last.AvgPoints-101.7) > eps {
		t.Errorf("avg points = %.1f, want 101.7", last.AvgPoints)
	}
	if math.Abs(last.AvgOppPoints-98.3) > eps {
		t.Errorf("avg opp points = %.1f, want 98.3", last.AvgOppPoints)
	}
	if math.Abs(last.PointDiff-3.3) > eps {
		t.Errorf("point diff = %.1f, want 3.3", last.PointDiff)
	}
	if last.HomeRecord != "2-0" {
		t.Errorf("home record = %s, want 2-0", last.HomeRecord)
	}
	if last.AwayRecord != "0-1" {
		t.Errorf("away record = %s, want 0-1", last.AwayRecord)
	}
	if last.Last5Record != "2-1" {
		t.Errorf("last 5 record = %s, want 2-1", last.Last5Record)
	}
}

func TestAggregatePartitionFirstSnapshot(t *testing.T) {
	events := []TeamGameEvent{
		event(1, "2025-01-10", 105, 95, ResultWin, true),
	}

	snapshots := AggregatePartition(events)
	first := snapshots[0]

	if first.GamesPlayed != 1 || first.Wins != 1 || first.Losses != 0 {
		t.Errorf("first snapshot record = %d GP %d-%d, want 1 GP 1-0", first.GamesPlayed, first.Wins, first.Losses)
	}
	if math.Abs(first.WinPct-1.0) > eps {
		t.Errorf("win pct = %.3f, want 1.000", first.WinPct)
	}
	if math.Abs(first.AvgPoints-105.0) > eps {
		t.Errorf("avg points = %.1f, want 105.0", first.AvgPoints)
	}
}

func TestAggregatePartitionScoringWindowSlides(t *testing.T) {
	// Two 200-point outliers followed by ten 100-point games. After game
	// twelve both outliers have left the ten-game window.
	var events []TeamGameEvent
	for i := 0; i < 12; i++ {
		points := 100
		if i < 2 {
			points = 200
		}
		date := day("2025-01-01").AddDate(0, 0, i).Format("2006-01-02")
		events = append(events, event(1, date, points, 90, ResultWin, true))
	}

	snapshots := AggregatePartition(events)
	last := snapshots[len(snapshots)-1]

	if math.Abs(last.AvgPoints-100.0) > eps {
		t.Errorf("avg points after window slid = %.1f, want 100.0", last.AvgPoints)
	}
	// Cumulative counters never slide
	if last.GamesPlayed != 12 || last.Wins != 12 {
		t.Errorf("cumulative record = %d GP %d W, want 12 GP 12 W", last.GamesPlayed, last.Wins)
	}
}

func TestAggregatePartitionLastFiveWindow(t *testing.T) {
	// W W W then four losses: the last five are W L L L L
	results := []string{ResultWin, ResultWin, ResultWin, ResultLoss, ResultLoss, ResultLoss, ResultLoss}

	var events []TeamGameEvent
	for i, res := range results {
		points, opp := 100, 90
		if res == ResultLoss {
			points, opp = 90, 100
		}
		date := day("2025-01-01").AddDate(0, 0, i).Format("2006-01-02")
		events = append(events, event(1, date, points, opp, res, true))
	}

	snapshots := AggregatePartition(events)
	last := snapshots[len(snapshots)-1]

	if last.Last5Record != "1-4" {
		t.Errorf("last 5 record = %s, want 1-4", last.Last5Record)
	}
	if last.Wins != 3 || last.Losses != 4 {
		t.Errorf("cumulative record = %d-%d, want 3-4", last.Wins, last.Losses)
	}
}

func TestAggregatePartitionGamesPlayedMonotonic(t *testing.T) {
	var events []TeamGameEvent
	for i := 0; i < 20; i++ {
		date := day("2025-01-01").AddDate(0, 0, i).Format("2006-01-02")
		events = append(events, event(1, date, 100, 98, ResultWin, i%2 == 0))
	}

	snapshots := AggregatePartition(events)

	prev := 0
	for i, snap := range snapshots {
		if snap.GamesPlayed <= prev {
			t.Errorf("snapshot %d games played = %d, not greater than %d", i, snap.GamesPlayed, prev)
		}
		if snap.GamesPlayed < snap.Wins+snap.Losses {
			t.Errorf("snapshot %d: games played %d < wins+losses %d", i, snap.GamesPlayed, snap.Wins+snap.Losses)
		}
		prev = snap.GamesPlayed
	}
}

func TestAggregatePartitionSameDayCollapses(t *testing.T) {
	// Doubleheader on the 11th: one row for the date, reflecting both games
	events := []TeamGameEvent{
		event(1, "2025-01-10", 100, 90, ResultWin, true),
		{TeamID: 1, GameID: "g-early", Season: "2024-25", GameDate: day("2025-01-11"), Points: 95, OppPoints: 100, Result: ResultLoss, IsHome: true},
		{TeamID: 1, GameID: "g-late", Season: "2024-25", GameDate: day("2025-01-11"), Points: 102, OppPoints: 99, Result: ResultWin, IsHome: false},
	}

	snapshots := AggregatePartition(events)

	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2 (same-day games collapse)", len(snapshots))
	}

	collapsed := snapshots[1]
	if !collapsed.StatDate.Equal(day("2025-01-11")) {
		t.Errorf("collapsed date = %s, want 2025-01-11", collapsed.StatDate.Format("2006-01-02"))
	}
	if collapsed.GamesPlayed != 3 || collapsed.Wins != 2 || collapsed.Losses != 1 {
		t.Errorf("collapsed record = %d GP %d-%d, want 3 GP 2-1", collapsed.GamesPlayed, collapsed.Wins, collapsed.Losses)
	}
}

func TestAggregatePartitionTies(t *testing.T) {
	events := []TeamGameEvent{
		event(1, "2025-01-10", 100, 100, ResultTie, true),
		event(1, "2025-01-12", 110, 100, ResultWin, true),
	}

	snapshots := AggregatePartition(events)

	first := snapshots[0]
	if first.GamesPlayed != 1 || first.Wins != 0 || first.Losses != 0 {
		t.Errorf("tie snapshot = %d GP %d-%d, want 1 GP 0-0", first.GamesPlayed, first.Wins, first.Losses)
	}
	if math.Abs(first.WinPct) > eps {
		t.Errorf("win pct after tie = %.3f, want 0.000", first.WinPct)
	}
	if first.HomeRecord != "0-0" || first.Last5Record != "0-0" {
		t.Errorf("tie records = home %s last5 %s, want 0-0 each", first.HomeRecord, first.Last5Record)
	}

	// Tie still dilutes win pct: one win in two games played
	second := snapshots[1]
	if math.Abs(second.WinPct-0.5) > eps {
		t.Errorf("win pct = %.3f, want 0.500", second.WinPct)
	}
}

func TestAggregatePartitionEmpty(t *testing.T) {
	if snapshots := AggregatePartition(nil); snapshots != nil {
		t.Errorf("expected no snapshots for empty partition, got %d", len(snapshots))
	}
}

func TestAggregatePartitionDeterministic(t *testing.T) {
	events := []TeamGameEvent{
		event(1, "2025-01-10", 105, 95, ResultWin, true),
		event(1, "2025-01-12", 110, 100, ResultWin, true),
		event(1, "2025-01-14", 90, 100, ResultLoss, false),
	}

	first := AggregatePartition(events)
	second := AggregatePartition(events)

	if len(first) != len(second) {
		t.Fatalf("snapshot counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("snapshot %d differs between runs:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}
