package services

import (
	"sync"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

const (
	// maxResolutionAttempts bounds result-source checks per pick
	maxResolutionAttempts = 3
	// resolutionRetryDelay is the fixed wait between unsuccessful checks
	resolutionRetryDelay = 1 * time.Hour
	// postGameBuffer pads the estimated game end before the first check
	postGameBuffer = 30 * time.Minute
	// minCheckDelay floors the first-check delay
	minCheckDelay = 5 * time.Second
)

// ResultSource fetches final results. A (nil, nil) return means "not yet
// final"; transport errors are retried identically up to the same bound.
type ResultSource interface {
	FetchResult(gameID, sport string) (*models.GameResult, error)
}

// ResolutionOutcome is the single event emitted per pick once its resolution
// machine reaches a terminal state. Result is nil when attempts were
// exhausted. Pick is a value snapshot taken at the terminal transition.
type ResolutionOutcome struct {
	Pick   models.Pick
	Result *models.GameResult
	Status models.ResolutionStatus
}

// ResolutionScheduler drives the per-pick finite state machine
// Scheduled → Checking → {Resolved | Exhausted}. Attempt count and next-due
// time live on the pick's persisted Resolution struct, not in timer closures,
// so a restarted session can re-arm an unresolved pick where it left off.
//
// The scheduler never shares pick memory with its owner: Schedule copies the
// pick into a task guarded by the scheduler's mutex, and every later
// transition reaches the owner as a value through the transition callback.
// The owner applies it to its own state under its own lock.
//
// One scheduler instance belongs to one session; Close cancels every pending
// timer.
type ResolutionScheduler struct {
	now        func() time.Time
	transition func(pick models.Pick)
	emit       func(outcome ResolutionOutcome)
	logger     *logging.Logger

	mu     sync.Mutex
	tasks  map[string]*resolutionTask
	closed bool
}

type resolutionTask struct {
	pick     models.Pick
	source   ResultSource
	timer    *time.Timer
	inFlight bool
	emitted  bool
}

// NewResolutionScheduler creates a scheduler. transition receives a snapshot
// after every state-machine step so resolution fields reach the store; emit
// fires exactly once per pick with the terminal outcome.
func NewResolutionScheduler(now func() time.Time, transition func(models.Pick), emit func(ResolutionOutcome)) *ResolutionScheduler {
	if now == nil {
		now = time.Now
	}
	return &ResolutionScheduler{
		now:        now,
		transition: transition,
		emit:       emit,
		logger:     logging.WithPrefix("Resolution"),
		tasks:      make(map[string]*resolutionTask),
	}
}

// Schedule arms the resolution machine for a committed pick. The first check
// lands at max(5s, estimatedEnd + 30m − now); a pick re-armed from persisted
// state resumes at its stored next-due time instead. Scheduling an already
// tracked or already terminal pick is a no-op.
//
// Schedule writes Status and NextDue onto the caller's pick synchronously;
// the caller's own lock covers that write, and the caller persists it. From
// here on the scheduler only touches its private copy.
func (s *ResolutionScheduler) Schedule(pick *models.Pick, source ResultSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || pick.Resolution.IsTerminal() {
		return
	}
	if _, exists := s.tasks[pick.MatchupID]; exists {
		return
	}

	now := s.now()
	var delay time.Duration
	if !pick.Resolution.NextDue.IsZero() && pick.Resolution.NextDue.After(now) {
		delay = pick.Resolution.NextDue.Sub(now)
	} else {
		estimatedEnd := pick.GameStartTime.Add(GameDurationFor(pick.Sport))
		delay = estimatedEnd.Add(postGameBuffer).Sub(now)
	}
	if delay < minCheckDelay {
		delay = minCheckDelay
	}

	pick.Resolution.Status = models.ResolutionScheduled
	pick.Resolution.NextDue = now.Add(delay)

	matchupID := pick.MatchupID
	task := &resolutionTask{pick: *pick, source: source}
	task.timer = time.AfterFunc(delay, func() {
		s.CheckNow(matchupID)
	})
	s.tasks[matchupID] = task

	s.logger.Infof("Scheduled resolution for %s in %s (attempt %d/%d)",
		matchupID, delay.Round(time.Second), pick.Resolution.Attempts+1, maxResolutionAttempts)
}

// CheckNow runs one resolution attempt for a tracked pick. A reentrant call
// while a check is in flight, or a call after the outcome was emitted, is a
// no-op. Timers funnel through here; tests may call it directly.
func (s *ResolutionScheduler) CheckNow(matchupID string) {
	s.mu.Lock()
	task, ok := s.tasks[matchupID]
	if !ok || s.closed || task.emitted || task.inFlight {
		s.mu.Unlock()
		return
	}
	task.inFlight = true
	task.pick.Resolution.Status = models.ResolutionChecking
	pick := task.pick
	source := task.source
	s.mu.Unlock()

	s.transition(pick)

	result, err := source.FetchResult(pick.MatchupID, pick.Sport)
	if err != nil {
		s.logger.Warnf("Result fetch failed for %s: %v", pick.MatchupID, err)
	}

	s.mu.Lock()
	task.inFlight = false
	if s.closed || task.emitted {
		s.mu.Unlock()
		return
	}

	if err == nil && result != nil {
		task.emitted = true
		task.pick.Resolution.Status = models.ResolutionResolved
		task.pick.Resolution.NextDue = time.Time{}
		pick = task.pick
		s.mu.Unlock()

		s.transition(pick)
		s.logger.Infof("Resolved %s: %s wins %s", pick.MatchupID, result.WinnerSide, result.FinalScore())
		s.emit(ResolutionOutcome{Pick: pick, Result: result, Status: models.ResolutionResolved})
		return
	}

	// Not yet final, or a transport failure: both burn one attempt
	task.pick.Resolution.Attempts++
	if task.pick.Resolution.Attempts >= maxResolutionAttempts {
		task.emitted = true
		task.pick.Resolution.Status = models.ResolutionExhausted
		task.pick.Resolution.NextDue = time.Time{}
		pick = task.pick
		s.mu.Unlock()

		s.transition(pick)
		s.logger.Warnf("Resolution exhausted for %s after %d attempts", pick.MatchupID, maxResolutionAttempts)
		s.emit(ResolutionOutcome{Pick: pick, Status: models.ResolutionExhausted})
		return
	}

	task.pick.Resolution.Status = models.ResolutionScheduled
	task.pick.Resolution.NextDue = s.now().Add(resolutionRetryDelay)
	pick = task.pick
	task.timer = time.AfterFunc(resolutionRetryDelay, func() {
		s.CheckNow(matchupID)
	})
	s.mu.Unlock()

	s.transition(pick)
	s.logger.Infof("Result for %s not final, retrying in %s (attempt %d/%d)",
		pick.MatchupID, resolutionRetryDelay, pick.Resolution.Attempts, maxResolutionAttempts)
}

// Tracking reports whether a pick is currently tracked by the scheduler
func (s *ResolutionScheduler) Tracking(matchupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[matchupID]
	return ok
}

// Close cancels all pending timers. Pending resolution state survives on the
// persisted picks; a later session re-arms from there.
func (s *ResolutionScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, task := range s.tasks {
		if task.timer != nil {
			task.timer.Stop()
		}
		delete(s.tasks, id)
	}
}
