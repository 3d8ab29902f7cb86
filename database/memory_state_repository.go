package database

import (
	"context"
	"sync"

	"streakpick-go/models"
)

// MemoryStateRepository is the in-process StateStore used when MongoDB is
// unavailable and in tests. Stored states are deep-copied on both reads and
// writes so callers never share mutable pointers with the store.
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[string]*models.UserStreakState
}

// NewMemoryStateRepository creates an empty in-memory store
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		states: make(map[string]*models.UserStreakState),
	}
}

// Get returns a copy of the stored state, or nil when the key is unknown
func (r *MemoryStateRepository) Get(ctx context.Context, userKey string) (*models.UserStreakState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userKey]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// Set stores a copy of the given state under the user key
func (r *MemoryStateRepository) Set(ctx context.Context, userKey string, state *models.UserStreakState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[userKey] = state.Clone()
	return nil
}

// AllStates returns copies of every stored state
func (r *MemoryStateRepository) AllStates(ctx context.Context) ([]models.UserStreakState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]models.UserStreakState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, *state.Clone())
	}
	return states, nil
}
