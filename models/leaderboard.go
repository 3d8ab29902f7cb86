package models

import (
	"time"
)

// LeaderboardEntry is the shared, eventually-consistent projection of a
// user's streak state. Derived, never separately owned.
type LeaderboardEntry struct {
	ID            string    `json:"id" bson:"id"` // anonymized, not the user key
	DisplayName   string    `json:"displayName" bson:"displayName"`
	CurrentStreak int       `json:"currentStreak" bson:"currentStreak"`
	BestStreak    int       `json:"bestStreak" bson:"bestStreak"`
	TotalPicks    int       `json:"totalPicks" bson:"totalPicks"`
	CorrectPicks  int       `json:"correctPicks" bson:"correctPicks"`
	Accuracy      float64   `json:"accuracy" bson:"accuracy"`
	WeeklyWins    int       `json:"weeklyWins" bson:"weeklyWins"`
	LastActive    time.Time `json:"lastActive" bson:"lastActive"`
}

// ProjectLeaderboardEntry builds the shared projection from a streak state.
// The anonymized id is supplied by the caller so the raw user key never
// leaves the local store.
func ProjectLeaderboardEntry(anonID string, state *UserStreakState, now time.Time) LeaderboardEntry {
	return LeaderboardEntry{
		ID:            anonID,
		DisplayName:   state.DisplayName,
		CurrentStreak: state.CurrentStreak,
		BestStreak:    state.BestStreak,
		TotalPicks:    state.TotalPicks,
		CorrectPicks:  state.CorrectPicks,
		Accuracy:      state.Accuracy(),
		WeeklyWins:    state.Weekly.Correct,
		LastActive:    now,
	}
}
