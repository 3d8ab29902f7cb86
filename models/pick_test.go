package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testMatchup(start time.Time) *Matchup {
	return &Matchup{
		ID:        "nfl-401547403",
		Sport:     "nfl",
		HomeTeam:  Team{Name: "Kansas City Chiefs", Abbr: "KC"},
		AwayTeam:  Team{Name: "Buffalo Bills", Abbr: "BUF"},
		Venue:     "Arrowhead Stadium",
		StartTime: start,
		Status:    MatchupStatusScheduled,
		Origin:    OriginLive,
	}
}

func TestPickStateDerivation(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	day := NewCalendarDay(now)
	pick := NewPick(testMatchup(now.Add(3*time.Hour)), SideHome, day, now)

	assert.Equal(t, PickStatePicked, pick.State(now))
	assert.Equal(t, PickStateAwaitingResolution, pick.State(now.Add(4*time.Hour)))

	pick.Resolution.Status = ResolutionResolved
	assert.Equal(t, PickStateLocked, pick.State(now.Add(8*time.Hour)))

	pick.Resolution.Status = ResolutionExhausted
	assert.Equal(t, PickStateLocked, pick.State(now.Add(8*time.Hour)))

	var none *Pick
	assert.Equal(t, PickStateNone, none.State(now))
}

func TestPickIsCorrect(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	day := NewCalendarDay(now)
	pick := NewPick(testMatchup(now.Add(time.Hour)), SideHome, day, now)

	assert.True(t, pick.IsCorrect(&GameResult{WinnerSide: SideHome}))
	assert.False(t, pick.IsCorrect(&GameResult{WinnerSide: SideAway}))
	// A tie is always correct regardless of the selected side
	assert.True(t, pick.IsCorrect(&GameResult{WinnerSide: SideTie}))

	pick.SelectedSide = SideAway
	assert.True(t, pick.IsCorrect(&GameResult{WinnerSide: SideTie}))
}

func TestWinnerFromScores(t *testing.T) {
	assert.Equal(t, SideHome, WinnerFromScores(24, 17))
	assert.Equal(t, SideAway, WinnerFromScores(17, 24))
	assert.Equal(t, SideTie, WinnerFromScores(21, 21))
}

func TestFinalScoreFormat(t *testing.T) {
	result := &GameResult{HomeScore: 24, AwayScore: 17}
	// Away score leads the rendered string
	assert.Equal(t, "17-24", result.FinalScore())
}

func TestNewPickSnapshotsMatchupFields(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	day := NewCalendarDay(now)
	matchup := testMatchup(now.Add(2 * time.Hour))

	pick := NewPick(matchup, SideAway, day, now)

	assert.Equal(t, matchup.ID, pick.MatchupID)
	assert.Equal(t, OriginLive, pick.Origin)
	assert.Equal(t, "nfl", pick.Sport)
	assert.Equal(t, day.ID, pick.Day)
	assert.Equal(t, matchup.StartTime, pick.GameStartTime)
	assert.Equal(t, ResolutionScheduled, pick.Resolution.Status)
	assert.Equal(t, 0, pick.Resolution.Attempts)
}
