package database

import (
	"context"
	"testing"
	"time"

	"streakpick-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetUnknownKey(t *testing.T) {
	repo := NewMemoryStateRepository()

	state, err := repo.Get(context.Background(), "user:missing")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	state := models.NewUserStreakState("user:1", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC))
	state.CurrentStreak = 3
	state.TodaysPick = &models.Pick{MatchupID: "sim-nba-001", Day: "2025-06-16"}
	state.PushHistory(models.ResultHistoryEntry{GameID: "sim-nba-001"})

	require.NoError(t, repo.Set(ctx, "user:1", state))

	loaded, err := repo.Get(ctx, "user:1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.CurrentStreak)
	assert.Equal(t, "sim-nba-001", loaded.TodaysPick.MatchupID)
	assert.Len(t, loaded.History, 1)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	state := models.NewUserStreakState("user:1", time.Time{})
	state.TodaysPick = &models.Pick{MatchupID: "sim-nba-001"}
	require.NoError(t, repo.Set(ctx, "user:1", state))

	// Mutating the original after the write must not reach the store
	state.CurrentStreak = 99
	state.TodaysPick.MatchupID = "changed"

	loaded, err := repo.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.CurrentStreak)
	assert.Equal(t, "sim-nba-001", loaded.TodaysPick.MatchupID)

	// Mutating a read result must not reach the store either
	loaded.TodaysPick.MatchupID = "also-changed"
	again, err := repo.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, "sim-nba-001", again.TodaysPick.MatchupID)
}

func TestMemoryStoreAllStates(t *testing.T) {
	repo := NewMemoryStateRepository()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "user:1", models.NewUserStreakState("user:1", time.Time{})))
	require.NoError(t, repo.Set(ctx, "user:2", models.NewUserStreakState("user:2", time.Time{})))

	states, err := repo.AllStates(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)
}
