package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streakpick-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `{
	"events": [{
		"id": "401547403",
		"date": "2025-06-16T23:00Z",
		"status": {"type": {"name": "STATUS_SCHEDULED", "state": "pre", "completed": false}},
		"competitions": [{
			"venue": {"fullName": "Arrowhead Stadium"},
			"competitors": [
				{"homeAway": "home", "score": "", "team": {"abbreviation": "KC", "displayName": "Kansas City Chiefs", "color": "e31837", "alternateColor": "ffb81c"}},
				{"homeAway": "away", "score": "", "team": {"abbreviation": "BUF", "displayName": "Buffalo Bills", "color": "00338d", "alternateColor": "c60c30"}}
			]
		}]
	}]
}`

func TestFetchDayConvertsEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/football/nfl/scoreboard" {
			assert.Equal(t, "20250616", r.URL.Query().Get("dates"))
			fmt.Fprint(w, scoreboardFixture)
			return
		}
		fmt.Fprint(w, `{"events": []}`)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	day := models.NewCalendarDay(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC))

	matchups, err := feed.FetchDay(day)
	require.NoError(t, err)
	require.Len(t, matchups, 1)

	m := matchups[0]
	assert.Equal(t, "nfl-401547403", m.ID)
	assert.Equal(t, "nfl", m.Sport)
	assert.Equal(t, models.OriginLive, m.Origin)
	assert.Equal(t, models.MatchupStatusScheduled, m.Status)
	assert.Equal(t, "Arrowhead Stadium", m.Venue)
	assert.Equal(t, "Kansas City Chiefs", m.HomeTeam.Name)
	assert.Equal(t, "BUF", m.AwayTeam.Abbr)
	assert.Equal(t, "#e31837", m.HomeTeam.Colors[0])
	assert.Equal(t, time.Date(2025, 6, 16, 23, 0, 0, 0, time.UTC), m.StartTime)
}

func TestFetchDaySkipsFailedLeagues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/football/nfl/scoreboard" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"events": []}`)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	day := models.NewCalendarDay(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC))

	// One failed league is tolerated
	matchups, err := feed.FetchDay(day)
	assert.NoError(t, err)
	assert.Empty(t, matchups)
}

func TestFetchDayFailsWhenAllLeaguesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	day := models.NewCalendarDay(time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC))

	_, err := feed.FetchDay(day)
	assert.Error(t, err)
}

func TestFetchResultCompletedGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/football/nfl/summary", r.URL.Path)
		assert.Equal(t, "401547403", r.URL.Query().Get("event"))
		fmt.Fprint(w, `{
			"header": {"competitions": [{
				"status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
				"competitors": [
					{"homeAway": "home", "score": "27"},
					{"homeAway": "away", "score": "20"}
				]
			}]}
		}`)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	result, err := feed.FetchResult("nfl-401547403", "nfl")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 27, result.HomeScore)
	assert.Equal(t, 20, result.AwayScore)
	assert.Equal(t, models.SideHome, result.WinnerSide)
	assert.Equal(t, "20-27", result.FinalScore())
}

func TestFetchResultNotYetFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"header": {"competitions": [{
				"status": {"type": {"name": "STATUS_IN_PROGRESS", "state": "in", "completed": false}},
				"competitors": [
					{"homeAway": "home", "score": "14"},
					{"homeAway": "away", "score": "10"}
				]
			}]}
		}`)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	result, err := feed.FetchResult("nfl-401547403", "nfl")

	// Not-yet-final is a retryable non-result, not an error
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestFetchResultTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	feed := NewFeedService(server.URL)
	_, err := feed.FetchResult("nfl-401547403", "nfl")
	assert.Error(t, err)
}

func TestParseEventDateFormats(t *testing.T) {
	feed := NewFeedService("http://example.invalid")

	minute := feed.parseEventDate("1", "2025-06-16T23:00Z")
	assert.Equal(t, time.Date(2025, 6, 16, 23, 0, 0, 0, time.UTC), minute)

	seconds := feed.parseEventDate("2", "2025-06-16T23:00:00Z")
	assert.Equal(t, time.Date(2025, 6, 16, 23, 0, 0, 0, time.UTC), seconds)

	// Malformed dates synthesize a future start so the matchup stays pickable
	synthesized := feed.parseEventDate("3", "not-a-date")
	assert.True(t, synthesized.After(time.Now()))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#e31837", hexColor("e31837"))
	assert.Equal(t, "#e31837", hexColor("#e31837"))
	assert.Equal(t, "", hexColor(""))
}
