package services

import (
	"time"

	"streakpick-go/models"
)

// CalendarService produces the canonical, timezone-independent day identifier
// and the start-of-week marker. All day-boundary decisions in the engine go
// through here so they agree on UTC normalization.
type CalendarService struct {
	now func() time.Time
}

// NewCalendarService creates a calendar service. A nil clock uses wall time;
// tests inject a fixed clock.
func NewCalendarService(now func() time.Time) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{now: now}
}

// Now returns the current evaluation instant
func (s *CalendarService) Now() time.Time {
	return s.now()
}

// Today returns the current calendar day, derived fresh on every call
func (s *CalendarService) Today() models.CalendarDay {
	return models.NewCalendarDay(s.now())
}

// WeekStart returns the canonical Monday marker for the current week
func (s *CalendarService) WeekStart() time.Time {
	return models.MondayOf(s.now())
}
