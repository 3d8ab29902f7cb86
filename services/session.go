package services

import (
	"context"
	"sync"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// SessionEvent types surfaced to the embedding host
const (
	EventGameStarted       = "game-started"
	EventPickCommitted     = "pick-committed"
	EventOutcomeResolved   = "outcome-resolved"
	EventResultUnavailable = "result-unavailable"
	EventLeaderboardChange = "leaderboard-changed"
	EventDayRolledOver     = "day-rolled-over"
)

// SessionEvent is delivered to the host's event sink
type SessionEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SessionSnapshot is a read-only view of the session for the outer surface
type SessionSnapshot struct {
	Day       models.CalendarDay     `json:"day"`
	Matchup   models.Matchup         `json:"matchup"`
	Remaining time.Duration          `json:"remainingSeconds"`
	PickState models.PickState       `json:"pickState"`
	State     models.UserStreakState `json:"state"`
}

// Session owns one user's daily-game lifecycle: the selected matchup, the
// game clock, the resolution scheduler and the leaderboard subscription. It
// is explicitly constructed and lifecycle-scoped - Start arms everything,
// Stop cancels every pending timer and the subscription.
type Session struct {
	userKey     string
	anonID      string
	calendar    *CalendarService
	source      *MatchupSource
	picks       *PickService
	streaks     *StreakAggregator
	store       StateStore
	leaderboard LeaderboardSync
	results     ResultSource
	outcomes    SimulatedOutcomeProvider
	onEvent     func(SessionEvent)
	logger      *logging.Logger

	mu          sync.Mutex
	storeMu     sync.Mutex
	scheduler   *ResolutionScheduler
	clock       *GameClock
	unsubscribe func()
	state       *models.UserStreakState
	day         models.CalendarDay
	matchup     models.Matchup
	started     bool
}

// SessionDeps bundles the collaborators a session needs
type SessionDeps struct {
	Calendar    *CalendarService
	Source      *MatchupSource
	Store       StateStore
	Leaderboard LeaderboardSync
	Results     ResultSource // live-feed result source; nil disables the live path
	Outcomes    SimulatedOutcomeProvider
}

// NewSession creates a session for one user key. onEvent may be nil.
func NewSession(userKey string, deps SessionDeps, onEvent func(SessionEvent)) *Session {
	if onEvent == nil {
		onEvent = func(SessionEvent) {}
	}
	return &Session{
		userKey:     userKey,
		anonID:      AnonymizeUserKey(userKey),
		calendar:    deps.Calendar,
		source:      deps.Source,
		picks:       NewPickService(deps.Store, deps.Calendar.Now),
		streaks:     NewStreakAggregator(deps.Store, deps.Calendar.Now),
		store:       deps.Store,
		leaderboard: deps.Leaderboard,
		results:     deps.Results,
		outcomes:    deps.Outcomes,
		onEvent:     onEvent,
		logger:      logging.WithPrefix("Session"),
	}
}

// Start evaluates the day, selects the matchup, loads state, re-arms any
// unresolved pick and begins the game clock
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.day = s.calendar.Today()
	s.matchup = s.source.MatchupForDay(s.day)

	state, err := s.picks.LoadState(ctx, s.userKey, s.day)
	if err != nil {
		return err
	}
	s.state = state
	s.picks.DropStalePick(ctx, s.userKey, s.state, s.day, &s.matchup)

	s.scheduler = NewResolutionScheduler(s.calendar.Now, s.applyResolution, s.handleOutcome)
	matchupID := s.matchup.ID
	s.clock = NewGameClock(s.matchup, s.calendar.Now, func() {
		s.fire(SessionEvent{Type: EventGameStarted, Data: matchupID})
	})
	s.clock.Start()

	// Open question resolved: Scheduled/Checking picks re-arm from their
	// persisted next-due time; Exhausted stays terminal across sessions.
	if s.state.HasUnresolvedPick(s.day) {
		s.logger.Infof("Re-arming unresolved pick %s for user %s", s.state.TodaysPick.MatchupID, s.userKey)
		s.scheduler.Schedule(s.state.TodaysPick, s.resultSourceFor(s.state.TodaysPick))
		s.persistLocked(ctx)
	}

	unsub, err := s.leaderboard.Subscribe(func() {
		s.fire(SessionEvent{Type: EventLeaderboardChange})
	})
	if err != nil {
		s.logger.Warnf("Leaderboard subscription unavailable: %v", err)
		unsub = func() {}
	}
	s.unsubscribe = unsub

	s.started = true
	s.logger.Infof("Session started for user %s: %s on %s (%s tier)",
		s.userKey, s.matchup.Description(), s.day.ID, s.matchup.Origin)
	return nil
}

// Stop cancels all timers owned by the session and drops the leaderboard
// subscription. Unresolved picks keep their persisted resolution state.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.clock.Stop()
	s.scheduler.Close()
	s.unsubscribe()
	s.started = false
	s.logger.Infof("Session stopped for user %s", s.userKey)
}

// SubmitPick commits the user's side-selection for the day's matchup and
// hands it to the resolution pipeline
func (s *Session) SubmitPick(ctx context.Context, side models.Side) (*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDayLocked(ctx)

	pick, err := s.picks.SubmitPick(ctx, s.userKey, s.state, s.day, &s.matchup, side)
	if err != nil {
		return nil, err
	}

	s.scheduler.Schedule(pick, s.resultSourceFor(pick))
	s.persistLocked(ctx)
	s.fire(SessionEvent{Type: EventPickCommitted, Data: pick})
	go s.pushLeaderboard()
	return pick, nil
}

// SetDisplayName stamps the leaderboard display name onto the state. The
// change rides along with the next persisted write.
func (s *Session) SetDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" && s.state.DisplayName != name {
		s.state.DisplayName = name
	}
}

// Snapshot returns the current read-only view of the session
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.calendar.Now()
	return SessionSnapshot{
		Day:       s.day,
		Matchup:   s.matchup,
		Remaining: s.matchup.StartTime.Sub(now),
		PickState: s.currentPickState(now),
		State:     *s.state,
	}
}

// ReevaluateDay forces a day-boundary check; the maintenance cron calls this
// on long-lived sessions at midnight UTC
func (s *Session) ReevaluateDay(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDayLocked(ctx)
}

// refreshDayLocked re-derives the calendar day and, on a boundary crossing,
// reselects the matchup and restarts the clock. Callers hold s.mu.
func (s *Session) refreshDayLocked(ctx context.Context) {
	today := s.calendar.Today()
	if today.Equal(s.day) {
		return
	}

	s.logger.Infof("Day rolled over %s -> %s for user %s", s.day.ID, today.ID, s.userKey)
	s.day = today
	s.matchup = s.source.MatchupForDay(today)

	s.state.RolloverDay(today)
	s.state.RolloverWeek(today.WeekStart)
	s.picks.DropStalePick(ctx, s.userKey, s.state, today, &s.matchup)

	s.clock.Stop()
	matchupID := s.matchup.ID
	s.clock = NewGameClock(s.matchup, s.calendar.Now, func() {
		s.fire(SessionEvent{Type: EventGameStarted, Data: matchupID})
	})
	s.clock.Start()

	s.fire(SessionEvent{Type: EventDayRolledOver, Data: today.ID})
}

func (s *Session) currentPickState(now time.Time) models.PickState {
	if s.state.TodaysPick == nil || s.state.TodaysPick.Day != s.day.ID {
		return models.PickStateNone
	}
	return s.state.TodaysPick.State(now)
}

// resultSourceFor routes live picks to the real feed and fallback picks to
// the synthetic-outcome path
func (s *Session) resultSourceFor(pick *models.Pick) ResultSource {
	if pick.Origin == models.OriginLive && s.results != nil {
		return s.results
	}
	matchup := &models.Matchup{ID: pick.MatchupID, Sport: pick.Sport, Origin: pick.Origin}
	return NewSimulatedResultSource(s.outcomes, matchup, s.day, s.calendar.Now)
}

// handleOutcome receives the scheduler's single terminal event per pick
func (s *Session) handleOutcome(outcome ResolutionOutcome) {
	s.mu.Lock()
	if s.state.TodaysPick != nil && s.state.TodaysPick.MatchupID == outcome.Pick.MatchupID {
		s.state.TodaysPick.Resolution = outcome.Pick.Resolution
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	s.streaks.ApplyOutcome(ctx, s.userKey, s.state, outcome)
	cancel()
	s.mu.Unlock()

	if outcome.Status == models.ResolutionExhausted {
		s.fire(SessionEvent{Type: EventResultUnavailable, Data: outcome.Pick.MatchupID})
		return
	}
	s.fire(SessionEvent{Type: EventOutcomeResolved, Data: outcome.Result})
	go s.pushLeaderboard()
}

// applyResolution receives resolution transitions from the scheduler's timer
// goroutines, folds them into the session-owned pick under the session's lock
// and persists a cloned snapshot. The scheduler and the session never touch
// the same pick memory.
func (s *Session) applyResolution(pick models.Pick) {
	s.mu.Lock()
	if s.state.TodaysPick != nil && s.state.TodaysPick.MatchupID == pick.MatchupID {
		s.state.TodaysPick.Resolution = pick.Resolution
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Set(ctx, s.userKey, snapshot); err != nil {
		s.logger.Errorf("Failed to persist resolution state for %s: %v", pick.MatchupID, err)
	}
}

// persistLocked writes the current state through to the store. Callers hold
// s.mu.
func (s *Session) persistLocked(ctx context.Context) {
	if err := s.store.Set(ctx, s.userKey, s.state); err != nil {
		s.logger.Errorf("Failed to persist state for user %s: %v", s.userKey, err)
	}
}

// pushLeaderboard projects the state and pushes it, fire-and-forget
func (s *Session) pushLeaderboard() {
	s.mu.Lock()
	entry := models.ProjectLeaderboardEntry(s.anonID, s.state, s.calendar.Now())
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.leaderboard.Push(ctx, entry); err != nil {
		s.logger.Debugf("Leaderboard push failed (best-effort): %v", err)
	}
}

func (s *Session) fire(event SessionEvent) {
	s.onEvent(event)
}
