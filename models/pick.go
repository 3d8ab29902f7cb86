package models

import (
	"time"
)

// PickState tracks where a user's daily pick sits in its lifecycle
type PickState string

const (
	// PickStateNone means no pick exists for the current day
	PickStateNone PickState = "no_pick"
	// PickStatePicked means a pick is committed and the game has not started
	PickStatePicked PickState = "picked"
	// PickStateLocked means the pick reached a terminal resolution
	PickStateLocked PickState = "locked"
	// PickStateAwaitingResolution means the game started and an outcome
	// check is pending
	PickStateAwaitingResolution PickState = "awaiting_resolution"
)

// ResolutionStatus is the state of the outcome-resolution machine for a pick
type ResolutionStatus string

const (
	ResolutionScheduled ResolutionStatus = "scheduled"
	ResolutionChecking  ResolutionStatus = "checking"
	ResolutionResolved  ResolutionStatus = "resolved"
	ResolutionExhausted ResolutionStatus = "exhausted"
)

// Resolution carries the persisted fields of the outcome-resolution state
// machine. Keeping attempts and next-due explicit (instead of burying them in
// a timer closure) lets a restarted session re-arm an unresolved pick.
type Resolution struct {
	Status   ResolutionStatus `json:"status" bson:"status"`
	Attempts int              `json:"attempts" bson:"attempts"`
	NextDue  time.Time        `json:"nextDue,omitempty" bson:"nextDue,omitempty"`
}

// IsTerminal reports whether the resolution machine has emitted its outcome
func (r *Resolution) IsTerminal() bool {
	return r.Status == ResolutionResolved || r.Status == ResolutionExhausted
}

// Pick is a user's committed side-selection for the day's matchup.
// Exactly one live Pick per user per calendar day.
type Pick struct {
	MatchupID     string        `json:"matchupId" bson:"matchupId"`
	Origin        MatchupOrigin `json:"origin" bson:"origin"`
	Sport         string        `json:"sport" bson:"sport"`
	SelectedSide  Side          `json:"selectedSide" bson:"selectedSide"`
	CommittedAt   time.Time     `json:"committedAt" bson:"committedAt"`
	Day           string        `json:"day" bson:"day"` // owning CalendarDay id
	GameStartTime time.Time     `json:"gameStartTime" bson:"gameStartTime"`
	Resolution    Resolution    `json:"resolution" bson:"resolution"`
}

// NewPick commits a side-selection against a selected matchup
func NewPick(matchup *Matchup, side Side, day CalendarDay, now time.Time) *Pick {
	return &Pick{
		MatchupID:     matchup.ID,
		Origin:        matchup.Origin,
		Sport:         matchup.Sport,
		SelectedSide:  side,
		CommittedAt:   now,
		Day:           day.ID,
		GameStartTime: matchup.StartTime,
		Resolution:    Resolution{Status: ResolutionScheduled},
	}
}

// State derives the lifecycle state of the pick at a given instant
func (p *Pick) State(now time.Time) PickState {
	if p == nil {
		return PickStateNone
	}
	if p.Resolution.IsTerminal() {
		return PickStateLocked
	}
	if now.Before(p.GameStartTime) {
		return PickStatePicked
	}
	return PickStateAwaitingResolution
}

// IsResolved reports whether an outcome was applied for this pick
func (p *Pick) IsResolved() bool {
	return p != nil && p.Resolution.Status == ResolutionResolved
}

// IsCorrect classifies a final result against the selected side.
// A tie always counts as correct: unresolvable pushes never penalize the
// streak.
func (p *Pick) IsCorrect(result *GameResult) bool {
	if result.WinnerSide == SideTie {
		return true
	}
	return p.SelectedSide == result.WinnerSide
}
