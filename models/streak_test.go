package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	state := NewUserStreakState("user:1", time.Time{})
	assert.Equal(t, 0.0, state.Accuracy())

	state.TotalPicks = 4
	state.CorrectPicks = 3
	assert.Equal(t, 0.75, state.Accuracy())
}

func TestRolloverDayClearsStalePick(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	yesterday := NewCalendarDay(now.AddDate(0, 0, -1))
	today := NewCalendarDay(now)

	state := NewUserStreakState("user:1", today.WeekStart)
	state.LastPickDate = yesterday.ID
	state.TodaysPick = &Pick{MatchupID: "sim-nfl-001", Day: yesterday.ID}

	assert.True(t, state.RolloverDay(today))
	assert.Nil(t, state.TodaysPick)

	// Same day is a no-op
	state.LastPickDate = today.ID
	state.TodaysPick = &Pick{MatchupID: "sim-nfl-002", Day: today.ID}
	assert.False(t, state.RolloverDay(today))
	assert.NotNil(t, state.TodaysPick)
}

func TestRolloverWeekResetsCounters(t *testing.T) {
	lastMonday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	thisMonday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	state := NewUserStreakState("user:1", lastMonday)
	state.Weekly.Picks = 5
	state.Weekly.Correct = 3

	assert.True(t, state.RolloverWeek(thisMonday))
	assert.Equal(t, 0, state.Weekly.Picks)
	assert.Equal(t, 0, state.Weekly.Correct)
	assert.Equal(t, thisMonday, state.Weekly.WeekStart)

	assert.False(t, state.RolloverWeek(thisMonday))
}

func TestPushHistoryEvictsOldest(t *testing.T) {
	state := NewUserStreakState("user:1", time.Time{})

	for i := 0; i < HistoryCapacity+3; i++ {
		state.PushHistory(ResultHistoryEntry{GameID: fmt.Sprintf("game-%d", i)})
	}

	assert.Len(t, state.History, HistoryCapacity)
	// The three oldest entries were evicted
	assert.Equal(t, "game-3", state.History[0].GameID)
	assert.Equal(t, fmt.Sprintf("game-%d", HistoryCapacity+2), state.History[HistoryCapacity-1].GameID)
}

func TestHasUnresolvedPick(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	day := NewCalendarDay(now)

	state := NewUserStreakState("user:1", day.WeekStart)
	assert.False(t, state.HasUnresolvedPick(day))

	state.TodaysPick = &Pick{MatchupID: "sim-nfl-001", Day: day.ID}
	assert.True(t, state.HasUnresolvedPick(day))

	state.TodaysPick.Resolution.Status = ResolutionResolved
	assert.False(t, state.HasUnresolvedPick(day))

	// A pick from another day never counts as unresolved for today
	state.TodaysPick = &Pick{MatchupID: "sim-nfl-001", Day: "2025-06-15"}
	assert.False(t, state.HasUnresolvedPick(day))
}

func TestCloneSharesNoMutableMemory(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	day := NewCalendarDay(now)

	state := NewUserStreakState("user:1", day.WeekStart)
	state.CurrentStreak = 3
	state.TodaysPick = &Pick{
		MatchupID:  "sim-nfl-001",
		Day:        day.ID,
		Resolution: Resolution{Status: ResolutionScheduled},
	}
	state.PushHistory(ResultHistoryEntry{GameID: "game-1"})

	clone := state.Clone()

	state.CurrentStreak = 0
	state.TodaysPick.Resolution.Status = ResolutionResolved
	state.History[0].GameID = "mutated"

	assert.Equal(t, 3, clone.CurrentStreak)
	assert.Equal(t, ResolutionScheduled, clone.TodaysPick.Resolution.Status)
	assert.Equal(t, "game-1", clone.History[0].GameID)
}
