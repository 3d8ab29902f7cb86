package services

import (
	"time"
)

// SportInfo describes a supported league: its feed path, the type-of-game
// glyph shown next to teams, and the fixed duration used to estimate when a
// game should be over.
type SportInfo struct {
	Code     string
	FeedPath string // scoreboard path segment, e.g. "football/nfl"
	Symbol   string
	Duration time.Duration
}

// defaultGameDuration is used for sports missing from the table
const defaultGameDuration = 3 * time.Hour

var sportTable = map[string]SportInfo{
	"nfl": {Code: "nfl", FeedPath: "football/nfl", Symbol: "🏈", Duration: 3*time.Hour + 15*time.Minute},
	"nba": {Code: "nba", FeedPath: "basketball/nba", Symbol: "🏀", Duration: 2*time.Hour + 30*time.Minute},
	"mlb": {Code: "mlb", FeedPath: "baseball/mlb", Symbol: "⚾", Duration: 3 * time.Hour},
	"nhl": {Code: "nhl", FeedPath: "hockey/nhl", Symbol: "🏒", Duration: 2*time.Hour + 45*time.Minute},
}

// SportByCode looks up a sport; ok is false for unknown codes
func SportByCode(code string) (SportInfo, bool) {
	info, ok := sportTable[code]
	return info, ok
}

// GameDurationFor returns the estimated duration for a sport, falling back to
// the 3-hour default for unknown codes
func GameDurationFor(sport string) time.Duration {
	if info, ok := sportTable[sport]; ok {
		return info.Duration
	}
	return defaultGameDuration
}

// SportForMonth maps a calendar month to the sport in season. Drives which
// slice of the simulated pool backs a fallback day.
func SportForMonth(month int) string {
	switch {
	case month >= 9 || month <= 1: // September through January
		return "nfl"
	case month >= 2 && month <= 6: // February through June
		return "nba"
	default: // July, August
		return "mlb"
	}
}

// SupportedSports lists the league codes polled by the live feed tier, in a
// stable order
func SupportedSports() []string {
	return []string{"nfl", "nba", "mlb", "nhl"}
}
