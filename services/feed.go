package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// FeedService fetches scoreboards and final results from the external sports
// data API. It is the live tier of the matchup source and the engine's
// ResultSource.
type FeedService struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
	logger  *logging.Logger
}

// NewFeedService creates a feed client against the given scoreboard API base
// URL (e.g. "https://site.api.espn.com/apis/site/v2/sports")
func NewFeedService(baseURL string) *FeedService {
	return &FeedService{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		logger:  logging.WithPrefix("Feed"),
	}
}

// Feed API response structures

type feedResponse struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Status       feedStatus        `json:"status"`
	Competitions []feedCompetition `json:"competitions"`
}

type feedStatus struct {
	Type feedStatusType `json:"type"`
}

type feedStatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type feedCompetition struct {
	Competitors []feedCompetitor `json:"competitors"`
	Venue       feedVenue        `json:"venue"`
}

type feedCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     feedTeam `json:"team"`
}

type feedTeam struct {
	Abbreviation   string `json:"abbreviation"`
	DisplayName    string `json:"displayName"`
	Color          string `json:"color"`
	AlternateColor string `json:"alternateColor"`
}

type feedVenue struct {
	FullName string `json:"fullName"`
}

type summaryResponse struct {
	Header summaryHeader `json:"header"`
}

type summaryHeader struct {
	Competitions []summaryCompetition `json:"competitions"`
}

type summaryCompetition struct {
	Status      feedStatus       `json:"status"`
	Competitors []feedCompetitor `json:"competitors"`
}

// FetchDay fetches the scoreboard for one calendar day across all supported
// leagues and converts the events into matchup candidates. A league whose
// request fails is skipped; an error is returned only when every league
// request failed, which sends the caller to the next fallback tier.
func (f *FeedService) FetchDay(day models.CalendarDay) ([]models.Matchup, error) {
	dateParam := fmt.Sprintf("%04d%02d%02d", day.Year, day.Month, day.Day)

	var matchups []models.Matchup
	var failures int
	leagues := SupportedSports()

	for _, code := range leagues {
		info, ok := SportByCode(code)
		if !ok {
			continue
		}

		url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", f.baseURL, info.FeedPath, dateParam)
		events, err := f.fetchScoreboard(url)
		if err != nil {
			f.logger.Warnf("Scoreboard fetch failed for %s: %v", code, err)
			failures++
			continue
		}

		for _, event := range events {
			matchups = append(matchups, f.convertEvent(event, info))
		}
	}

	if failures == len(leagues) {
		return nil, fmt.Errorf("all %d league scoreboard requests failed", failures)
	}

	f.logger.Debugf("Fetched %d candidate matchups for %s", len(matchups), day.ID)
	return matchups, nil
}

func (f *FeedService) fetchScoreboard(url string) ([]feedEvent, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard API returned status %d", resp.StatusCode)
	}

	var feedResp feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard response: %w", err)
	}

	return feedResp.Events, nil
}

// convertEvent converts a single feed event to a matchup candidate
func (f *FeedService) convertEvent(event feedEvent, info SportInfo) models.Matchup {
	matchup := models.Matchup{
		ID:     info.Code + "-" + event.ID,
		Sport:  info.Code,
		Status: convertState(event.Status),
		Origin: models.OriginLive,
	}

	matchup.StartTime = f.parseEventDate(event.ID, event.Date)

	if len(event.Competitions) == 0 {
		return matchup
	}
	competition := event.Competitions[0]
	matchup.Venue = competition.Venue.FullName

	for _, competitor := range competition.Competitors {
		team := models.Team{
			Name:   competitor.Team.DisplayName,
			Abbr:   competitor.Team.Abbreviation,
			Symbol: info.Symbol,
			Colors: [2]string{hexColor(competitor.Team.Color), hexColor(competitor.Team.AlternateColor)},
		}
		if competitor.HomeAway == "home" {
			matchup.HomeTeam = team
		} else {
			matchup.AwayTeam = team
		}
	}

	return matchup
}

// parseEventDate parses the feed timestamp, which arrives with or without
// seconds. A malformed date is not fatal: the start time is synthesized one
// hour ahead so the matchup stays pickable.
func (f *FeedService) parseEventDate(eventID, raw string) time.Time {
	if t, err := time.Parse("2006-01-02T15:04Z", raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	f.logger.Warnf("Failed to parse date %q for event %s, synthesizing start time", raw, eventID)
	return f.now().Add(1 * time.Hour)
}

// FetchResult fetches the final result for a game. Returns (nil, nil) when
// the game is not yet final, which the resolution scheduler treats as a
// retryable condition distinct from a transport error.
func (f *FeedService) FetchResult(gameID, sport string) (*models.GameResult, error) {
	info, ok := SportByCode(sport)
	if !ok {
		return nil, fmt.Errorf("unknown sport %q for result lookup", sport)
	}

	// Feed ids are stored as "<sport>-<eventID>"
	eventID := strings.TrimPrefix(gameID, sport+"-")
	url := fmt.Sprintf("%s/%s/summary?event=%s", f.baseURL, info.FeedPath, eventID)

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary API returned status %d", resp.StatusCode)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary response: %w", err)
	}

	if len(summary.Header.Competitions) == 0 {
		return nil, nil
	}
	competition := summary.Header.Competitions[0]

	if !competition.Status.Type.Completed {
		f.logger.Debugf("Game %s not yet final (state=%s)", gameID, competition.Status.Type.State)
		return nil, nil
	}

	var homeScore, awayScore int
	for _, competitor := range competition.Competitors {
		score, _ := strconv.Atoi(competitor.Score)
		if competitor.HomeAway == "home" {
			homeScore = score
		} else {
			awayScore = score
		}
	}

	return &models.GameResult{
		GameID:      gameID,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		WinnerSide:  models.WinnerFromScores(homeScore, awayScore),
		CompletedAt: f.now(),
	}, nil
}

// HealthCheck verifies the feed API is reachable
func (f *FeedService) HealthCheck() bool {
	info, _ := SportByCode("nfl")
	req, err := http.NewRequest("HEAD", f.baseURL+"/"+info.FeedPath+"/scoreboard", nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// convertState converts the feed status to our matchup status
func convertState(status feedStatus) models.MatchupStatus {
	switch strings.ToLower(status.Type.State) {
	case "pre":
		return models.MatchupStatusScheduled
	case "in":
		return models.MatchupStatusInPlay
	case "post":
		return models.MatchupStatusCompleted
	default:
		return models.MatchupStatusScheduled
	}
}

func hexColor(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "#") {
		return raw
	}
	return "#" + raw
}
