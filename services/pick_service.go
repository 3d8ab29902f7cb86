package services

import (
	"context"
	"errors"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// Pick admission failures, user-facing and non-fatal
var (
	ErrAlreadyPicked = errors.New("a pick already exists for today")
	ErrGameStarted   = errors.New("the game has already started")
	ErrNoMatchup     = errors.New("no matchup selected for today")
	ErrInvalidSide   = errors.New("selected side must be home or away")
)

// StateStore is the durable per-user state collaborator. Absence of a record
// yields engine defaults, never an error.
type StateStore interface {
	Get(ctx context.Context, userKey string) (*models.UserStreakState, error)
	Set(ctx context.Context, userKey string, state *models.UserStreakState) error
}

// PickService is the admission state machine for the one-pick-per-day rule:
// NoPick → Picked → {Locked | AwaitingResolution}. It admits at most one pick
// per user per calendar day and rejects late or duplicate attempts.
type PickService struct {
	store  StateStore
	now    func() time.Time
	logger *logging.Logger
}

// NewPickService creates a pick admission service
func NewPickService(store StateStore, now func() time.Time) *PickService {
	if now == nil {
		now = time.Now
	}
	return &PickService{
		store:  store,
		now:    now,
		logger: logging.WithPrefix("PickService"),
	}
}

// SubmitPick admits a pick for the day's matchup. On success the pick is
// recorded on the state, totalPicks and the weekly pick counter are
// incremented, and the updated state is persisted. A persistence failure is
// logged and does not reject the pick; the in-memory state stays
// authoritative for the session.
func (s *PickService) SubmitPick(ctx context.Context, userKey string, state *models.UserStreakState, day models.CalendarDay, matchup *models.Matchup, side models.Side) (*models.Pick, error) {
	if matchup == nil {
		return nil, ErrNoMatchup
	}
	if !side.IsValid() {
		return nil, ErrInvalidSide
	}

	// A pick left over from a previous day never blocks today's admission
	state.RolloverDay(day)

	if state.TodaysPick != nil && state.TodaysPick.Day == day.ID {
		s.logger.Debugf("Rejected duplicate pick for user %s on %s", userKey, day.ID)
		return nil, ErrAlreadyPicked
	}

	now := s.now()
	if matchup.HasStarted(now) {
		s.logger.Debugf("Rejected late pick for user %s: %s started at %s",
			userKey, matchup.ID, matchup.StartTime.Format(time.RFC3339))
		return nil, ErrGameStarted
	}

	pick := models.NewPick(matchup, side, day, now)
	state.TodaysPick = pick
	state.LastPickDate = day.ID
	state.TotalPicks++
	state.Weekly.Picks++
	state.UpdatedAt = now

	if err := s.store.Set(ctx, userKey, state); err != nil {
		s.logger.Errorf("Failed to persist pick for user %s: %v (continuing with in-memory state)", userKey, err)
	}

	s.logger.Infof("User %s picked %s on %s (%s)", userKey, side, matchup.Description(), day.ID)
	return pick, nil
}

// LoadState fetches a user's state and applies the read-time invariants:
// weekly counters reset when the stored week anchor is not the canonical
// Monday, and todaysPick clears when it belongs to a previous day.
func (s *PickService) LoadState(ctx context.Context, userKey string, day models.CalendarDay) (*models.UserStreakState, error) {
	state, err := s.store.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = models.NewUserStreakState(userKey, day.WeekStart)
	}

	changed := state.RolloverDay(day)
	if state.RolloverWeek(day.WeekStart) {
		s.logger.Infof("Weekly stats reset for user %s (week of %s)", userKey, day.WeekStart.Format(models.CalendarDayFormat))
		changed = true
	}

	if changed {
		state.UpdatedAt = s.now()
		if err := s.store.Set(ctx, userKey, state); err != nil {
			s.logger.Errorf("Failed to persist rollover for user %s: %v", userKey, err)
		}
	}

	return state, nil
}

// DropStalePick discards a stored pick whose matchup no longer matches the
// day's selection output. Returns true when a stale pick was dropped.
func (s *PickService) DropStalePick(ctx context.Context, userKey string, state *models.UserStreakState, day models.CalendarDay, matchup *models.Matchup) bool {
	if state.TodaysPick == nil || matchup == nil {
		return false
	}
	if state.TodaysPick.Day != day.ID || state.TodaysPick.MatchupID == matchup.ID {
		return false
	}

	s.logger.Warnf("Stale pick for user %s: pick matchup %s != selected %s, ignoring",
		userKey, state.TodaysPick.MatchupID, matchup.ID)
	state.TodaysPick = nil
	state.UpdatedAt = s.now()
	if err := s.store.Set(ctx, userKey, state); err != nil {
		s.logger.Errorf("Failed to persist stale-pick drop for user %s: %v", userKey, err)
	}
	return true
}
