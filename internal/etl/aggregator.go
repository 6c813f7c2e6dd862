package etl

import (
	"fmt"
	"math"

	"github.com/Daniel-Tietie/nba-data-pipeline-analytics/internal/store"
)

const (
	scoringWindowSize = 10
	formWindowSize    = 5
)

// rollingState carries one partition's cumulative and windowed counters as its
// events replay in order. Scoring averages slide over the last ten games via a
// ring buffer with running sums, so each event is O(1).
type rollingState struct {
	gamesPlayed int
	wins        int
	losses      int
	homeWins    int
	homeLosses  int
	awayWins    int
	awayLosses  int

	points     [scoringWindowSize]int
	oppPoints  [scoringWindowSize]int
	scoringLen int
	scoringPos int
	pointSum   int
	oppSum     int

	form    [formWindowSize]string
	formLen int
	formPos int
}

func (s *rollingState) apply(ev TeamGameEvent) {
	s.gamesPlayed++

	switch ev.Result {
	case ResultWin:
		s.wins++
		if ev.IsHome {
			s.homeWins++
		} else {
			s.awayWins++
		}
	case ResultLoss:
		s.losses++
		if ev.IsHome {
			s.homeLosses++
		} else {
			s.awayLosses++
		}
	}

	if s.scoringLen == scoringWindowSize {
		s.pointSum -= s.points[s.scoringPos]
		s.oppSum -= s.oppPoints[s.scoringPos]
	} else {
		s.scoringLen++
	}
	s.points[s.scoringPos] = ev.Points
	s.oppPoints[s.scoringPos] = ev.OppPoints
	s.pointSum += ev.Points
	s.oppSum += ev.OppPoints
	s.scoringPos = (s.scoringPos + 1) % scoringWindowSize

	if s.formLen < formWindowSize {
		s.formLen++
	}
	s.form[s.formPos] = ev.Result
	s.formPos = (s.formPos + 1) % formWindowSize
}

// snapshot renders the state after the event just applied
func (s *rollingState) snapshot(ev TeamGameEvent) *store.TeamStatSnapshot {
	avgPoints := float64(s.pointSum) / float64(s.scoringLen)
	avgOpp := float64(s.oppSum) / float64(s.scoringLen)

	winPct := 0.0
	if s.gamesPlayed > 0 {
		winPct = float64(s.wins) / float64(s.gamesPlayed)
	}

	formWins, formLosses := 0, 0
	for i := 0; i < s.formLen; i++ {
		switch s.form[i] {
		case ResultWin:
			formWins++
		case ResultLoss:
			formLosses++
		}
	}

	return &store.TeamStatSnapshot{
		TeamID:       ev.TeamID,
		StatDate:     ev.GameDate,
		Season:       ev.Season,
		GamesPlayed:  s.gamesPlayed,
		Wins:         s.wins,
		Losses:       s.losses,
		WinPct:       roundTo(winPct, 3),
		AvgPoints:    roundTo(avgPoints, 1),
		AvgOppPoints: roundTo(avgOpp, 1),
		// Diff comes from the unrounded means so it does not pick up two
		// rounding errors
		PointDiff:   roundTo(avgPoints-avgOpp, 1),
		HomeRecord:  fmt.Sprintf("%d-%d", s.homeWins, s.homeLosses),
		AwayRecord:  fmt.Sprintf("%d-%d", s.awayWins, s.awayLosses),
		Last5Record: fmt.Sprintf("%d-%d", formWins, formLosses),
	}
}

// AggregatePartition replays one partition's ordered events and returns one
// snapshot per distinct stat date. When a team plays twice on the same date
// the later event's snapshot wins, so the row reflects the state after the
// final game of the day.
func AggregatePartition(events []TeamGameEvent) []*store.TeamStatSnapshot {
	if len(events) == 0 {
		return nil
	}

	state := &rollingState{}
	var snapshots []*store.TeamStatSnapshot

	for _, ev := range events {
		state.apply(ev)
		snap := state.snapshot(ev)

		if n := len(snapshots); n > 0 && snapshots[n-1].StatDate.Equal(snap.StatDate) {
			snapshots[n-1] = snap
		} else {
			snapshots = append(snapshots, snap)
		}
	}

	return snapshots
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
