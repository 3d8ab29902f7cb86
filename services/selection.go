package services

import (
	"errors"
	"sort"

	"streakpick-go/models"
)

// ErrNoCandidates is returned when a source tier yields an empty candidate
// list; the caller falls back to the next tier.
var ErrNoCandidates = errors.New("no matchup candidates for day")

// SelectMatchup deterministically picks exactly one matchup for a day.
//
// Candidates are stably sorted ascending by start time with the source id as
// tie-break, then indexed by (year+month+day) mod len(candidates). Given the
// same day and candidate set this returns the same matchup on every
// evaluation, on any machine: no randomness, no locale-dependent ordering.
func SelectMatchup(day models.CalendarDay, candidates []models.Matchup) (models.Matchup, error) {
	if len(candidates) == 0 {
		return models.Matchup{}, ErrNoCandidates
	}

	sorted := make([]models.Matchup, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].ID < sorted[j].ID
	})

	return sorted[day.Seed(len(sorted))], nil
}
