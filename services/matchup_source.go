package services

import (
	"fmt"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// LiveFeed is the external scoreboard dependency of the matchup source
type LiveFeed interface {
	FetchDay(day models.CalendarDay) ([]models.Matchup, error)
}

// MatchupSource produces the single matchup for a calendar day through a
// tiered fallback: live feed, deterministic simulated pool, then a static
// emergency matchup. Every tier feeds the same selection formula, so a day
// reproduces its matchup within whichever tier served it. The source never
// fails outright: the emergency tier always yields a matchup.
type MatchupSource struct {
	feed   LiveFeed
	now    func() time.Time
	logger *logging.Logger
}

// NewMatchupSource creates a matchup source. feed may be nil when the live
// tier is disabled; a nil clock uses wall time.
func NewMatchupSource(feed LiveFeed, now func() time.Time) *MatchupSource {
	if now == nil {
		now = time.Now
	}
	return &MatchupSource{
		feed:   feed,
		now:    now,
		logger: logging.WithPrefix("MatchupSource"),
	}
}

// MatchupForDay resolves the day's matchup through the fallback tiers
func (s *MatchupSource) MatchupForDay(day models.CalendarDay) models.Matchup {
	if s.feed != nil {
		candidates, err := s.liveCandidates(day)
		if err != nil {
			s.logger.Warnf("Live tier unavailable for %s: %v", day.ID, err)
		} else if matchup, err := SelectMatchup(day, candidates); err == nil {
			s.logger.Infof("Selected live matchup %s (%s) for %s", matchup.ID, matchup.Description(), day.ID)
			return matchup
		} else {
			s.logger.Warnf("Live tier yielded no valid candidates for %s", day.ID)
		}
	}

	if matchup, err := SelectMatchup(day, SimulatedPool(day, s.now())); err == nil {
		s.logger.Infof("Selected simulated matchup %s (%s) for %s", matchup.ID, matchup.Description(), day.ID)
		return matchup
	}

	// Both tiers empty: last-resort static matchup, never fails
	matchup := s.emergencyMatchup()
	s.logger.Errorf("All matchup tiers exhausted for %s, using emergency matchup %s", day.ID, matchup.ID)
	return matchup
}

// liveCandidates fetches and validates the live tier's raw entries
func (s *MatchupSource) liveCandidates(day models.CalendarDay) ([]models.Matchup, error) {
	raw, err := s.feed.FetchDay(day)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var valid []models.Matchup
	for _, candidate := range raw {
		if err := ValidateCandidate(&candidate, now); err != nil {
			s.logger.Debugf("Rejected candidate %s: %v", candidate.ID, err)
			continue
		}
		valid = append(valid, candidate)
	}
	return valid, nil
}

// ValidateCandidate checks that a raw feed entry is complete and pickable.
// A candidate whose game has already started is rejected even if otherwise
// well-formed.
func ValidateCandidate(candidate *models.Matchup, now time.Time) error {
	if candidate.HomeTeam.Name == "" || candidate.AwayTeam.Name == "" {
		return fmt.Errorf("missing team names")
	}
	if candidate.Venue == "" {
		return fmt.Errorf("missing venue")
	}
	if candidate.StartTime.IsZero() {
		return fmt.Errorf("missing start time")
	}
	if !now.Before(candidate.StartTime) {
		return fmt.Errorf("game already started at %s", candidate.StartTime.Format(time.RFC3339))
	}
	return nil
}

// SimulatedPool returns the deterministic fallback candidates for a day,
// filtered to the sport in season for the calendar month. If the month's
// sport has no pool entries the full pool is used. Start times sit two hours
// past the evaluation instant, spaced so the pool's fixed order survives the
// time-sorted selection and the same day reproduces the same matchup.
func SimulatedPool(day models.CalendarDay, now time.Time) []models.Matchup {
	sport := SportForMonth(day.Month)

	var filtered []models.Matchup
	for _, entry := range simulatedPoolEntries {
		if entry.Sport == sport {
			filtered = append(filtered, entry)
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, simulatedPoolEntries...)
	}

	anchor := now.Add(2 * time.Hour)
	out := make([]models.Matchup, len(filtered))
	for i, entry := range filtered {
		entry.StartTime = anchor.Add(time.Duration(i) * 15 * time.Minute)
		out[i] = entry
	}
	return out
}

// emergencyMatchup is the hardcoded last resort with a synthetic start time
// two hours from the evaluation instant
func (s *MatchupSource) emergencyMatchup() models.Matchup {
	return models.Matchup{
		ID:    "emergency-001",
		Sport: "nfl",
		HomeTeam: models.Team{
			Name: "Green Bay Packers", Abbr: "GB", Symbol: "🏈",
			Colors: [2]string{"#203731", "#FFB612"},
		},
		AwayTeam: models.Team{
			Name: "Chicago Bears", Abbr: "CHI", Symbol: "🏈",
			Colors: [2]string{"#0B162A", "#C83803"},
		},
		Venue:     "Lambeau Field",
		StartTime: s.now().Add(2 * time.Hour),
		Status:    models.MatchupStatusScheduled,
		Origin:    models.OriginEmergency,
	}
}

// simulatedPoolEntries is the static fallback pool. Ids are stable; start
// times are assigned per evaluation day by SimulatedPool.
var simulatedPoolEntries = []models.Matchup{
	{
		ID: "sim-nfl-001", Sport: "nfl", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Arrowhead Stadium",
		HomeTeam: models.Team{Name: "Kansas City Chiefs", Abbr: "KC", Symbol: "🏈", Colors: [2]string{"#E31837", "#FFB81C"}},
		AwayTeam: models.Team{Name: "Buffalo Bills", Abbr: "BUF", Symbol: "🏈", Colors: [2]string{"#00338D", "#C60C30"}},
	},
	{
		ID: "sim-nfl-002", Sport: "nfl", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Lincoln Financial Field",
		HomeTeam: models.Team{Name: "Philadelphia Eagles", Abbr: "PHI", Symbol: "🏈", Colors: [2]string{"#004C54", "#A5ACAF"}},
		AwayTeam: models.Team{Name: "Dallas Cowboys", Abbr: "DAL", Symbol: "🏈", Colors: [2]string{"#003594", "#869397"}},
	},
	{
		ID: "sim-nfl-003", Sport: "nfl", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Levi's Stadium",
		HomeTeam: models.Team{Name: "San Francisco 49ers", Abbr: "SF", Symbol: "🏈", Colors: [2]string{"#AA0000", "#B3995D"}},
		AwayTeam: models.Team{Name: "Seattle Seahawks", Abbr: "SEA", Symbol: "🏈", Colors: [2]string{"#002244", "#69BE28"}},
	},
	{
		ID: "sim-nba-001", Sport: "nba", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "TD Garden",
		HomeTeam: models.Team{Name: "Boston Celtics", Abbr: "BOS", Symbol: "🏀", Colors: [2]string{"#007A33", "#BA9653"}},
		AwayTeam: models.Team{Name: "Los Angeles Lakers", Abbr: "LAL", Symbol: "🏀", Colors: [2]string{"#552583", "#FDB927"}},
	},
	{
		ID: "sim-nba-002", Sport: "nba", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Chase Center",
		HomeTeam: models.Team{Name: "Golden State Warriors", Abbr: "GSW", Symbol: "🏀", Colors: [2]string{"#1D428A", "#FFC72C"}},
		AwayTeam: models.Team{Name: "Phoenix Suns", Abbr: "PHX", Symbol: "🏀", Colors: [2]string{"#1D1160", "#E56020"}},
	},
	{
		ID: "sim-nba-003", Sport: "nba", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Madison Square Garden",
		HomeTeam: models.Team{Name: "New York Knicks", Abbr: "NYK", Symbol: "🏀", Colors: [2]string{"#006BB6", "#F58426"}},
		AwayTeam: models.Team{Name: "Miami Heat", Abbr: "MIA", Symbol: "🏀", Colors: [2]string{"#98002E", "#F9A01B"}},
	},
	{
		ID: "sim-mlb-001", Sport: "mlb", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Yankee Stadium",
		HomeTeam: models.Team{Name: "New York Yankees", Abbr: "NYY", Symbol: "⚾", Colors: [2]string{"#003087", "#E4002C"}},
		AwayTeam: models.Team{Name: "Boston Red Sox", Abbr: "BOS", Symbol: "⚾", Colors: [2]string{"#BD3039", "#0C2340"}},
	},
	{
		ID: "sim-mlb-002", Sport: "mlb", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Dodger Stadium",
		HomeTeam: models.Team{Name: "Los Angeles Dodgers", Abbr: "LAD", Symbol: "⚾", Colors: [2]string{"#005A9C", "#A5ACAF"}},
		AwayTeam: models.Team{Name: "San Francisco Giants", Abbr: "SFG", Symbol: "⚾", Colors: [2]string{"#FD5A1E", "#27251F"}},
	},
	{
		ID: "sim-mlb-003", Sport: "mlb", Origin: models.OriginSimulated,
		Status:   models.MatchupStatusScheduled,
		Venue:    "Wrigley Field",
		HomeTeam: models.Team{Name: "Chicago Cubs", Abbr: "CHC", Symbol: "⚾", Colors: [2]string{"#0E3386", "#CC3433"}},
		AwayTeam: models.Team{Name: "St. Louis Cardinals", Abbr: "STL", Symbol: "⚾", Colors: [2]string{"#C41E3A", "#0C2340"}},
	},
}
