package database

import (
	"context"

	"streakpick-go/logging"
	"streakpick-go/models"
)

// StateStore mirrors the services-layer persistence contract so the fallback
// wrapper can compose any two implementations without importing services
type StateStore interface {
	Get(ctx context.Context, userKey string) (*models.UserStreakState, error)
	Set(ctx context.Context, userKey string, state *models.UserStreakState) error
}

// FallbackStateRepository writes through to a primary store and shadows every
// write into an in-memory cache. When the primary fails, reads and writes are
// served from the cache so gameplay continues on in-memory state; the failure
// is logged, never surfaced to the caller.
type FallbackStateRepository struct {
	primary StateStore
	cache   *MemoryStateRepository
	logger  *logging.Logger
}

// NewFallbackStateRepository wraps a primary store with an in-memory shadow
func NewFallbackStateRepository(primary StateStore) *FallbackStateRepository {
	return &FallbackStateRepository{
		primary: primary,
		cache:   NewMemoryStateRepository(),
		logger:  logging.WithPrefix("FallbackStore"),
	}
}

// Get reads from the primary and falls back to the shadow cache on error
func (r *FallbackStateRepository) Get(ctx context.Context, userKey string) (*models.UserStreakState, error) {
	state, err := r.primary.Get(ctx, userKey)
	if err != nil {
		r.logger.Warnf("Primary read failed for %s, serving cached state: %v", userKey, err)
		return r.cache.Get(ctx, userKey)
	}
	if state != nil {
		// Keep the shadow warm for later failures
		if cacheErr := r.cache.Set(ctx, userKey, state); cacheErr != nil {
			r.logger.Debugf("Shadow cache write failed for %s: %v", userKey, cacheErr)
		}
	}
	return state, nil
}

// Set writes to the shadow cache first, then the primary. A primary failure
// is logged and swallowed so the session keeps running on in-memory state.
func (r *FallbackStateRepository) Set(ctx context.Context, userKey string, state *models.UserStreakState) error {
	if err := r.cache.Set(ctx, userKey, state); err != nil {
		return err
	}
	if err := r.primary.Set(ctx, userKey, state); err != nil {
		r.logger.Errorf("Primary write failed for %s, state retained in memory: %v", userKey, err)
	}
	return nil
}
