package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizo-service/internal/domain"
)

// Leaderboard is an in-memory leaderboard projection.
type Leaderboard struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return NewLeaderboardWithClock(time.Now)
}

// NewLeaderboardWithClock allows deterministic timestamps in tests.
func NewLeaderboardWithClock(now func() time.Time) *Leaderboard {
	return &Leaderboard{now: now, entries: make(map[string]domain.LeaderboardEntry)}
}

func (l *Leaderboard) Upsert(_ context.Context, email, name string, points int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.entries[email]
	entry.Email = email
	if name != "" {
		entry.Name = name
	}
	entry.TotalPoints = points
	entry.LastUpdated = l.now().UnixMilli()
	l.entries[email] = entry
	return nil
}

func (l *Leaderboard) Restore(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.Name == "" {
		entry.Name = l.entries[entry.Email].Name
	}
	l.entries[entry.Email] = entry
	return nil
}

func (l *Leaderboard) Entry(_ context.Context, email string) (domain.LeaderboardEntry, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[email]
	return entry, ok, nil
}

func (l *Leaderboard) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry)
	}
	l.mu.RUnlock()

	sortEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// sortEntries orders by points desc, then whoever reached the total earlier, then name.
func sortEntries(entries []domain.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].LastUpdated != entries[j].LastUpdated {
			return entries[i].LastUpdated < entries[j].LastUpdated
		}
		return entries[i].Name < entries[j].Name
	})
}
