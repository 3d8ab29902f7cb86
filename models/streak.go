package models

import (
	"time"
)

// HistoryCapacity bounds the result-history ring buffer
const HistoryCapacity = 10

// WeeklyStats tracks picks within the week anchored at WeekStart (Monday UTC)
type WeeklyStats struct {
	Picks     int       `json:"picks" bson:"picks"`
	Correct   int       `json:"correct" bson:"correct"`
	WeekStart time.Time `json:"weekStart" bson:"weekStart"`
}

// ResultHistoryEntry records one resolved pick for the recent-results view
type ResultHistoryEntry struct {
	GameID           string    `json:"gameId" bson:"gameId"`
	UserSelectedSide Side      `json:"userSelectedSide" bson:"userSelectedSide"`
	ActualWinner     Side      `json:"actualWinner" bson:"actualWinner"`
	IsCorrect        bool      `json:"isCorrect" bson:"isCorrect"`
	FinalScore       string    `json:"finalScore" bson:"finalScore"`
	ResolvedAt       time.Time `json:"resolvedAt" bson:"resolvedAt"`
	GameDate         string    `json:"gameDate" bson:"gameDate"`
}

// UserStreakState is the single per-user record driving streaks, accuracy and
// weekly counters. Created with zeroed defaults on first access; every
// mutation is a pure function of prior state plus one event.
type UserStreakState struct {
	UserKey       string               `json:"userKey" bson:"_id"`
	DisplayName   string               `json:"displayName" bson:"displayName"`
	CurrentStreak int                  `json:"currentStreak" bson:"currentStreak"`
	BestStreak    int                  `json:"bestStreak" bson:"bestStreak"`
	TotalPicks    int                  `json:"totalPicks" bson:"totalPicks"`
	CorrectPicks  int                  `json:"correctPicks" bson:"correctPicks"`
	TodaysPick    *Pick                `json:"todaysPick,omitempty" bson:"todaysPick,omitempty"`
	LastPickDate  string               `json:"lastPickDate" bson:"lastPickDate"`
	Weekly        WeeklyStats          `json:"weeklyStats" bson:"weeklyStats"`
	History       []ResultHistoryEntry `json:"history" bson:"history"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// NewUserStreakState returns the zeroed default record for a user key
func NewUserStreakState(userKey string, weekStart time.Time) *UserStreakState {
	return &UserStreakState{
		UserKey: userKey,
		Weekly:  WeeklyStats{WeekStart: weekStart},
	}
}

// Accuracy returns the fraction of correct picks, 0 when no picks were made
func (s *UserStreakState) Accuracy() float64 {
	if s.TotalPicks == 0 {
		return 0
	}
	return float64(s.CorrectPicks) / float64(s.TotalPicks)
}

// RolloverDay clears todaysPick when the stored pick belongs to a previous
// calendar day. Returns true if anything changed.
func (s *UserStreakState) RolloverDay(day CalendarDay) bool {
	if s.LastPickDate == day.ID {
		return false
	}
	if s.TodaysPick == nil {
		return false
	}
	s.TodaysPick = nil
	return true
}

// RolloverWeek resets weekly counters when the stored week anchor no longer
// matches the canonical Monday marker. Returns true if a reset happened.
func (s *UserStreakState) RolloverWeek(weekStart time.Time) bool {
	if s.Weekly.WeekStart.Equal(weekStart) {
		return false
	}
	s.Weekly = WeeklyStats{WeekStart: weekStart}
	return true
}

// PushHistory appends a history entry, evicting the oldest beyond capacity
func (s *UserStreakState) PushHistory(entry ResultHistoryEntry) {
	s.History = append(s.History, entry)
	if len(s.History) > HistoryCapacity {
		s.History = s.History[len(s.History)-HistoryCapacity:]
	}
}

// Clone returns a deep copy that shares no mutable memory with the original.
// Stores and background writers take clones so they never read a state that
// another goroutine is still mutating.
func (s *UserStreakState) Clone() *UserStreakState {
	dup := *s
	if s.TodaysPick != nil {
		pick := *s.TodaysPick
		dup.TodaysPick = &pick
	}
	dup.History = make([]ResultHistoryEntry, len(s.History))
	copy(dup.History, s.History)
	return &dup
}

// HasUnresolvedPick reports whether todaysPick still needs an outcome for the
// given day. Used by session start to re-arm the resolution machine.
func (s *UserStreakState) HasUnresolvedPick(day CalendarDay) bool {
	return s.TodaysPick != nil &&
		s.TodaysPick.Day == day.ID &&
		!s.TodaysPick.Resolution.IsTerminal()
}
