package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streakpick-go/logging"
	"streakpick-go/middleware"
	"streakpick-go/models"
	"streakpick-go/services"
)

// GameHandler serves the daily-game API: today's matchup, pick submission,
// stats, history and the leaderboard
type GameHandler struct {
	sessions    *SessionManager
	leaderboard services.LeaderboardReader
	logger      *logging.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessions *SessionManager, leaderboard services.LeaderboardReader) *GameHandler {
	return &GameHandler{
		sessions:    sessions,
		leaderboard: leaderboard,
		logger:      logging.WithPrefix("GameHandler"),
	}
}

// session resolves the request identity and returns its live session
func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	identity := middleware.IdentityFromContext(r)
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "No identity")
		return nil, false
	}

	session, err := h.sessions.Get(r.Context(), identity.UserKey, identity.DisplayName)
	if err != nil {
		h.logger.Errorf("Failed to start session for %s: %v", identity.UserKey, err)
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return nil, false
	}
	return session, true
}

// Today returns the day's matchup, the countdown and the caller's pick state
func (h *GameHandler) Today(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":              snap.Day.ID,
		"matchup":          snap.Matchup,
		"remainingSeconds": int(snap.Remaining.Seconds()),
		"pickState":        snap.PickState,
		"todaysPick":       snap.State.TodaysPick,
	})
}

type submitPickRequest struct {
	Side models.Side `json:"side"`
}

// SubmitPick commits the caller's side-selection for today's matchup
func (h *GameHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	pick, err := session.SubmitPick(r.Context(), req.Side)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSide):
			writeError(w, http.StatusBadRequest, "Side must be home or away")
		case errors.Is(err, services.ErrAlreadyPicked):
			writeError(w, http.StatusConflict, "A pick already exists for today")
		case errors.Is(err, services.ErrGameStarted):
			writeError(w, http.StatusConflict, "The game has already started")
		default:
			h.logger.Errorf("Pick submission failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to submit pick")
		}
		return
	}

	writeJSON(w, http.StatusCreated, pick)
}

// Stats returns the caller's streak counters
func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"displayName":   snap.State.DisplayName,
		"currentStreak": snap.State.CurrentStreak,
		"bestStreak":    snap.State.BestStreak,
		"totalPicks":    snap.State.TotalPicks,
		"correctPicks":  snap.State.CorrectPicks,
		"accuracy":      snap.State.Accuracy(),
		"weekly":        snap.State.Weekly,
	})
}

// History returns the caller's recent resolved picks, newest first
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := session.Snapshot()
	history := make([]models.ResultHistoryEntry, len(snap.State.History))
	copy(history, snap.State.History)
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	writeJSON(w, http.StatusOK, history)
}

// Leaderboard returns the shared ranked projection
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.TopEntries(r.Context(), 50)
	if err != nil {
		h.logger.Errorf("Failed to read leaderboard: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Leaderboard unavailable")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// EndSession stops the caller's session; pending resolution state stays
// persisted for the next start
func (h *GameHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r)
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "No identity")
		return
	}
	h.sessions.End(identity.UserKey)
	writeJSON(w, http.StatusOK, map[string]string{"status": "session ended"})
}
