package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streakpick-go/database"
	"streakpick-go/middleware"
	"streakpick-go/models"
	"streakpick-go/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *SessionManager) {
	t.Helper()

	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	calendar := services.NewCalendarService(func() time.Time { return now })
	deps := services.SessionDeps{
		Calendar:    calendar,
		Source:      services.NewMatchupSource(nil, calendar.Now),
		Store:       database.NewMemoryStateRepository(),
		Leaderboard: services.NoopLeaderboard{},
		Outcomes:    services.NewSeededOutcomeProvider("test"),
	}

	manager := NewSessionManager(deps, nil)
	t.Cleanup(manager.Shutdown)

	gameHandler := NewGameHandler(manager, services.NoopLeaderboard{})
	authMw := middleware.NewAuthMiddleware(nil, false)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMw.WithIdentity)
	api.HandleFunc("/today", gameHandler.Today).Methods("GET")
	api.HandleFunc("/picks", gameHandler.SubmitPick).Methods("POST")
	api.HandleFunc("/me/stats", gameHandler.Stats).Methods("GET")
	api.HandleFunc("/me/history", gameHandler.History).Methods("GET")
	api.HandleFunc("/leaderboard", gameHandler.Leaderboard).Methods("GET")

	return r, manager
}

// guestCookie extracts the minted guest identity so follow-up requests reuse it
func guestCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "guest_id" {
			return cookie
		}
	}
	t.Fatal("no guest cookie issued")
	return nil
}

func TestTodayMintsGuestAndReturnsMatchup(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/today", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, guestCookie(t, rec))

	var body struct {
		Day       string         `json:"day"`
		Matchup   models.Matchup `json:"matchup"`
		PickState string         `json:"pickState"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-16", body.Day)
	assert.NotEmpty(t, body.Matchup.ID)
	assert.Equal(t, string(models.PickStateNone), body.PickState)
}

func TestSubmitPickFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	// First request establishes the guest identity
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/today", nil))
	cookie := guestCookie(t, rec)

	submit := func(side string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/picks", strings.NewReader(`{"side":"`+side+`"}`))
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := submit("home")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	var pick models.Pick
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &pick))
	assert.Equal(t, models.SideHome, pick.SelectedSide)

	// One pick per day
	second := submit("away")
	assert.Equal(t, http.StatusConflict, second.Code)

	// Invalid side
	bad := submit("both")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	// Stats reflect the committed pick
	statsReq := httptest.NewRequest("GET", "/api/me/stats", nil)
	statsReq.AddCookie(cookie)
	statsRec := httptest.NewRecorder()
	router.ServeHTTP(statsRec, statsReq)
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats struct {
		TotalPicks int `json:"totalPicks"`
	}
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalPicks)
}

func TestHistoryStartsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/me/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.ResultHistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Empty(t, history)
}

func TestLeaderboardEmptyBoard(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/leaderboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSeparateGuestsGetSeparateSessions(t *testing.T) {
	router, _ := newTestRouter(t)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("GET", "/api/today", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("GET", "/api/today", nil))

	assert.NotEqual(t, guestCookie(t, first).Value, guestCookie(t, second).Value)
}
