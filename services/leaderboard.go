package services

import (
	"context"

	"streakpick-go/models"

	"github.com/google/uuid"
)

// AnonymizeUserKey derives the stable public leaderboard id for a user key.
// The raw key never leaves the local store.
func AnonymizeUserKey(userKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userKey)).String()
}

// LeaderboardSync is the shared, eventually-consistent leaderboard
// collaborator. Pushes are best-effort with no delivery guarantee; only the
// local owner ever writes its own entry, so conflicting writes serialize
// naturally without locks.
type LeaderboardSync interface {
	Push(ctx context.Context, entry models.LeaderboardEntry) error
	Subscribe(onChange func()) (unsubscribe func(), err error)
}

// LeaderboardReader serves the ranked projection to the outer surface
type LeaderboardReader interface {
	TopEntries(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// NoopLeaderboard satisfies LeaderboardSync when no shared store is
// configured; the engine runs fully locally.
type NoopLeaderboard struct{}

// Push discards the entry
func (NoopLeaderboard) Push(ctx context.Context, entry models.LeaderboardEntry) error { return nil }

// Subscribe never delivers changes
func (NoopLeaderboard) Subscribe(onChange func()) (func(), error) {
	return func() {}, nil
}

// TopEntries returns an empty board
func (NoopLeaderboard) TopEntries(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}
