package services

import (
	"context"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// StreakAggregator applies resolved (or exhausted) outcomes to a user's
// persistent counters. It is the only code path that mutates currentStreak
// and bestStreak.
type StreakAggregator struct {
	store  StateStore
	now    func() time.Time
	logger *logging.Logger
}

// NewStreakAggregator creates a streak aggregator
func NewStreakAggregator(store StateStore, now func() time.Time) *StreakAggregator {
	if now == nil {
		now = time.Now
	}
	return &StreakAggregator{
		store:  store,
		now:    now,
		logger: logging.WithPrefix("Streak"),
	}
}

// ApplyOutcome folds one resolution outcome into the state and persists it.
// A correct pick extends the streak, an incorrect one resets it to zero, and
// an exhausted resolution leaves every streak counter untouched. bestStreak
// is re-derived as max(bestStreak, currentStreak) at the mutation site and
// never read independently.
func (a *StreakAggregator) ApplyOutcome(ctx context.Context, userKey string, state *models.UserStreakState, outcome ResolutionOutcome) {
	now := a.now()

	if outcome.Status == models.ResolutionExhausted {
		a.logger.Warnf("Result unavailable for user %s pick %s; streak preserved", userKey, outcome.Pick.MatchupID)
		state.UpdatedAt = now
		if err := a.store.Set(ctx, userKey, state); err != nil {
			a.logger.Errorf("Failed to persist exhausted outcome for user %s: %v", userKey, err)
		}
		return
	}

	pick := outcome.Pick
	result := outcome.Result
	correct := pick.IsCorrect(result)

	if correct {
		state.CorrectPicks++
		state.CurrentStreak++
		if state.CurrentStreak > state.BestStreak {
			state.BestStreak = state.CurrentStreak
		}
		state.Weekly.Correct++
	} else {
		state.CurrentStreak = 0
	}

	state.PushHistory(models.ResultHistoryEntry{
		GameID:           result.GameID,
		UserSelectedSide: pick.SelectedSide,
		ActualWinner:     result.WinnerSide,
		IsCorrect:        correct,
		FinalScore:       result.FinalScore(),
		ResolvedAt:       now,
		GameDate:         pick.Day,
	})
	state.UpdatedAt = now

	if err := a.store.Set(ctx, userKey, state); err != nil {
		a.logger.Errorf("Failed to persist outcome for user %s: %v (continuing with in-memory state)", userKey, err)
	}

	a.logger.Infof("User %s pick %s resolved correct=%t (streak=%d, best=%d)",
		userKey, pick.MatchupID, correct, state.CurrentStreak, state.BestStreak)
}
