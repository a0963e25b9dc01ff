package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"geoplay-service/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// LeaderboardKey is the storage key holding the JSON encoded leaderboard.
	LeaderboardKey = "geoplay-leaderboard"
	// LeaderboardSize bounds the number of persisted entries.
	LeaderboardSize = 10
)

// KVStore abstracts durable key-value storage (memory, Redis, Postgres, SQLite).
type KVStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Leaderboard keeps the top results across sessions, sorted by score.
type Leaderboard struct {
	store  KVStore
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboard(store KVStore, logger zerolog.Logger) *Leaderboard {
	return &Leaderboard{store: store, logger: logger}
}

// Load reads the persisted leaderboard. Missing data yields an empty board;
// malformed data is discarded and logged rather than returned.
func (l *Leaderboard) Load(ctx context.Context) error {
	raw, ok, err := l.store.Get(ctx, LeaderboardKey)
	if err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if ok {
		entries, err = decodeLeaderboard(raw)
		if err != nil {
			l.logger.Warn().Err(err).Msg("discarding persisted leaderboard")
			entries = nil
		}
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Record inserts an entry, keeps the top LeaderboardSize by score and
// persists the result before returning.
func (l *Leaderboard) Record(ctx context.Context, entry domain.LeaderboardEntry) ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.LeaderboardEntry, 0, len(l.entries)+1)
	next = append(next, l.entries...)
	next = append(next, entry)
	next = rankEntries(next)

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := l.store.Set(ctx, LeaderboardKey, string(data)); err != nil {
		return nil, fmt.Errorf("persist leaderboard: %w", err)
	}
	l.entries = next
	return copyEntries(next), nil
}

// Entries returns a copy of the ranked entries.
func (l *Leaderboard) Entries() []domain.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyEntries(l.entries)
}

func rankEntries(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries
}

func decodeLeaderboard(raw string) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Join(domain.ErrMalformedLeaderboard, err)
	}
	return rankEntries(entries), nil
}

func copyEntries(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out
}
