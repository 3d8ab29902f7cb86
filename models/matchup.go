package models

import (
	"fmt"
	"time"
)

// MatchupStatus represents the current state of a matchup
type MatchupStatus string

const (
	MatchupStatusScheduled MatchupStatus = "scheduled"
	MatchupStatusInPlay    MatchupStatus = "in_play"
	MatchupStatusCompleted MatchupStatus = "completed"
	MatchupStatusPostponed MatchupStatus = "postponed"
)

// MatchupOrigin tags which source tier produced a matchup. Carried explicitly
// through the pipeline so downstream code never has to infer it from id
// conventions.
type MatchupOrigin string

const (
	OriginLive      MatchupOrigin = "live"
	OriginSimulated MatchupOrigin = "simulated"
	OriginEmergency MatchupOrigin = "emergency"
)

// Side identifies one side of a matchup, or a tie in a final result
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideTie  Side = "tie"
)

// IsValid returns true for a side a user may actually pick
func (s Side) IsValid() bool {
	return s == SideHome || s == SideAway
}

// Team represents one side of a matchup
type Team struct {
	Name   string    `json:"name" bson:"name"`
	Abbr   string    `json:"abbr" bson:"abbr"`
	Symbol string    `json:"symbol" bson:"symbol"` // sport-logo glyph, e.g. "🏈"
	Colors [2]string `json:"colors" bson:"colors"` // ordered display color pair
}

// Matchup is the single game presented for a calendar day.
// Immutable once selected for a day.
type Matchup struct {
	ID        string        `json:"id" bson:"id"` // stable, source-specific
	Sport     string        `json:"sport" bson:"sport"`
	HomeTeam  Team          `json:"homeTeam" bson:"homeTeam"`
	AwayTeam  Team          `json:"awayTeam" bson:"awayTeam"`
	Venue     string        `json:"venue" bson:"venue"`
	StartTime time.Time     `json:"startTime" bson:"startTime"`
	Status    MatchupStatus `json:"status" bson:"status"`
	Origin    MatchupOrigin `json:"origin" bson:"origin"`
}

// HasStarted reports whether the matchup has started as of now
func (m *Matchup) HasStarted(now time.Time) bool {
	return !now.Before(m.StartTime)
}

// IsLive returns true if the matchup came from the live feed tier.
// Live picks go through the real result-resolution pipeline; fallback picks
// take the synthetic-outcome path.
func (m *Matchup) IsLive() bool {
	return m.Origin == OriginLive
}

// Description returns a short "AWY @ HOM" label
func (m *Matchup) Description() string {
	return m.AwayTeam.Abbr + " @ " + m.HomeTeam.Abbr
}

// GameResult is the final outcome of a matchup
type GameResult struct {
	GameID      string    `json:"gameId" bson:"gameId"`
	HomeScore   int       `json:"homeScore" bson:"homeScore"`
	AwayScore   int       `json:"awayScore" bson:"awayScore"`
	WinnerSide  Side      `json:"winnerSide" bson:"winnerSide"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
}

// WinnerFromScores derives the winning side from a final score
func WinnerFromScores(homeScore, awayScore int) Side {
	switch {
	case homeScore > awayScore:
		return SideHome
	case awayScore > homeScore:
		return SideAway
	default:
		return SideTie
	}
}

// FinalScore returns the result formatted as "away-home", matching the
// away-first convention used in matchup descriptions
func (r *GameResult) FinalScore() string {
	return fmt.Sprintf("%d-%d", r.AwayScore, r.HomeScore)
}
