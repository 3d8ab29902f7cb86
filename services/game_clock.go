package services

import (
	"sync"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// GameClock tracks time-to-start for the selected matchup and raises a
// one-shot "started" transition. Remaining time is always recomputed from
// absolute wall-clock time, never from accumulated ticks, so a suspended and
// resumed host process reports the right remaining time on its next tick.
type GameClock struct {
	matchup   models.Matchup
	now       func() time.Time
	interval  time.Duration
	onStarted func()

	mu      sync.Mutex
	started bool
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
	logger  *logging.Logger
}

// NewGameClock creates a clock for the selected matchup. onStarted fires at
// most once, when remaining time first reaches zero.
func NewGameClock(matchup models.Matchup, now func() time.Time, onStarted func()) *GameClock {
	if now == nil {
		now = time.Now
	}
	return &GameClock{
		matchup:   matchup,
		now:       now,
		interval:  1 * time.Second,
		onStarted: onStarted,
		stop:      make(chan struct{}),
		logger:    logging.WithPrefix("GameClock"),
	}
}

// Remaining returns time until the matchup starts; negative once elapsed
func (c *GameClock) Remaining() time.Duration {
	return c.matchup.StartTime.Sub(c.now())
}

// HasStarted reports whether the started transition has been observed
func (c *GameClock) HasStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Start begins the tick loop. Safe to call once per clock.
func (c *GameClock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	// The matchup may already be underway when the session opens
	c.Tick()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Tick()
			case <-c.stop:
				return
			}
		}
	}()
}

// Tick evaluates the clock once. Exposed so tests can drive transitions
// without waiting on real time.
func (c *GameClock) Tick() {
	if c.Remaining() > 0 {
		return
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.logger.Infof("Matchup %s started", c.matchup.ID)
	if c.onStarted != nil {
		c.onStarted()
	}
}

// Stop cancels the tick loop and waits for it to exit
func (c *GameClock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stop)
	c.wg.Wait()
}
