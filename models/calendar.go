package models

import (
	"time"
)

// CalendarDayFormat is the canonical day identifier layout
const CalendarDayFormat = "2006-01-02"

// CalendarDay is a UTC-normalized date identifier used for all day-boundary
// logic. Derived fresh on every evaluation, never cached beyond one
// evaluation.
type CalendarDay struct {
	ID        string    `json:"id" bson:"id"` // YYYY-MM-DD in UTC
	Year      int       `json:"year" bson:"year"`
	Month     int       `json:"month" bson:"month"`
	Day       int       `json:"day" bson:"day"`
	WeekStart time.Time `json:"weekStart" bson:"weekStart"` // canonical Monday 00:00 UTC
}

// NewCalendarDay normalizes an instant to its UTC calendar day
func NewCalendarDay(t time.Time) CalendarDay {
	utc := t.UTC()
	return CalendarDay{
		ID:        utc.Format(CalendarDayFormat),
		Year:      utc.Year(),
		Month:     int(utc.Month()),
		Day:       utc.Day(),
		WeekStart: MondayOf(utc),
	}
}

// MondayOf returns the Monday 00:00 UTC marker for the week containing t
func MondayOf(t time.Time) time.Time {
	utc := t.UTC()
	// time.Weekday puts Sunday at 0; shift so Monday is day 0
	offset := (int(utc.Weekday()) + 6) % 7
	monday := utc.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// Seed computes the deterministic selection index for a candidate count.
// Same formula across all source tiers so a day reproduces its matchup
// within a tier.
func (d CalendarDay) Seed(candidateCount int) int {
	if candidateCount <= 0 {
		return 0
	}
	return (d.Year + d.Month + d.Day) % candidateCount
}

// Equal reports whether two calendar days identify the same date
func (d CalendarDay) Equal(other CalendarDay) bool {
	return d.ID == other.ID
}
