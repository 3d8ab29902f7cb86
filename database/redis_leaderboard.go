package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey     = "streakpick:leaderboard"
	leaderboardChannel = "streakpick:leaderboard:events"
	entryKeyPrefix     = "streakpick:entry:"
	entryTTL           = 14 * 24 * time.Hour
)

// RedisLeaderboard is the shared leaderboard store. Ranks live in a sorted
// set scored by current streak; the full entry document sits alongside as
// JSON. Pushes publish a change notification so other sessions can refresh.
type RedisLeaderboard struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisLeaderboard connects to Redis and verifies the connection
func NewRedisLeaderboard(addr, password string, db int) (*RedisLeaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger := logging.WithPrefix("RedisLeaderboard")
	logger.Infof("Connected to Redis at %s (db %d)", addr, db)

	return &RedisLeaderboard{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (l *RedisLeaderboard) Close() error {
	return l.client.Close()
}

func entryKey(id string) string {
	return entryKeyPrefix + id
}

// Push upserts the entry's rank and document, then notifies subscribers.
// Best-effort: the caller treats failures as non-fatal.
func (l *RedisLeaderboard) Push(ctx context.Context, entry models.LeaderboardEntry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(entry.CurrentStreak),
		Member: entry.ID,
	})
	pipe.Set(ctx, entryKey(entry.ID), doc, entryTTL)
	pipe.Publish(ctx, leaderboardChannel, entry.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pushing entry: %w", err)
	}
	return nil
}

// Subscribe delivers a callback on every published leaderboard change. The
// returned function cancels the subscription and stops the reader goroutine.
func (l *RedisLeaderboard) Subscribe(onChange func()) (func(), error) {
	pubsub := l.client.Subscribe(context.Background(), leaderboardChannel)

	// Confirm the subscription before handing it out
	if _, err := pubsub.Receive(context.Background()); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to leaderboard channel: %w", err)
	}

	go func() {
		for range pubsub.Channel() {
			onChange()
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			l.logger.Debugf("Error closing pubsub: %v", err)
		}
	}, nil
}

// TopEntries returns the n highest-streak entries in rank order. Entries
// whose document has expired keep their rank but are skipped.
func (l *RedisLeaderboard) TopEntries(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	ids, err := l.client.ZRevRange(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard ranks: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}
	docs, err := l.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard entries: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(docs))
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// Expired document; drop the stale rank
			l.client.ZRem(ctx, leaderboardKey, ids[i])
			continue
		}
		var entry models.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			l.logger.Warnf("Skipping malformed leaderboard entry %s: %v", ids[i], err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
