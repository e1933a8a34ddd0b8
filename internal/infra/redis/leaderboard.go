package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"quizo-service/internal/domain"
)

const rankingKey = "leaderboard:points"

// Leaderboard projects cumulative totals into Redis.
// Entries are stored as:   HSET leaderboard:user:{email} name totalPoints lastUpdated
// Ranking is stored as:    ZADD leaderboard:points {totalPoints} {email}
type Leaderboard struct {
	client *redis.Client
	now    func() time.Time
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, now: time.Now}
}

func (l *Leaderboard) Upsert(ctx context.Context, email, name string, points int64) error {
	return l.write(ctx, email, name, points, l.now().UnixMilli())
}

func (l *Leaderboard) Restore(ctx context.Context, entry domain.LeaderboardEntry) error {
	return l.write(ctx, entry.Email, entry.Name, entry.TotalPoints, entry.LastUpdated)
}

func (l *Leaderboard) write(ctx context.Context, email, name string, points, lastUpdated int64) error {
	fields := map[string]interface{}{
		"totalPoints": points,
		"lastUpdated": lastUpdated,
	}
	if name != "" {
		fields["name"] = name
	}
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, l.entryKey(email), fields)
		pipe.ZAdd(ctx, rankingKey, redis.Z{Score: float64(points), Member: email})
		return nil
	})
	return err
}

func (l *Leaderboard) Entry(ctx context.Context, email string) (domain.LeaderboardEntry, bool, error) {
	fields, err := l.client.HGetAll(ctx, l.entryKey(email)).Result()
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	if len(fields) == 0 {
		return domain.LeaderboardEntry{}, false, nil
	}
	return buildEntry(email, fields), true, nil
}

// Top reads the ranking, widening the window to every member tied with the
// last score so ties can be ordered by lastUpdated.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	ranked, err := l.client.ZRevRangeWithScores(ctx, rankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(ranked))
	seen := make(map[string]struct{}, len(ranked))
	for _, z := range ranked {
		email := z.Member.(string)
		emails = append(emails, email)
		seen[email] = struct{}{}
	}
	if len(ranked) == limit {
		boundary := strconv.FormatFloat(ranked[len(ranked)-1].Score, 'f', -1, 64)
		tied, err := l.client.ZRangeByScore(ctx, rankingKey, &redis.ZRangeBy{Min: boundary, Max: boundary}).Result()
		if err != nil {
			return nil, err
		}
		for _, email := range tied {
			if _, ok := seen[email]; !ok {
				emails = append(emails, email)
			}
		}
	}

	pipe := l.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(emails))
	for i, email := range emails {
		cmds[i] = pipe.HGetAll(ctx, l.entryKey(email))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read leaderboard entries: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(emails))
	for i, email := range emails {
		entries = append(entries, buildEntry(email, cmds[i].Val()))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].LastUpdated != entries[j].LastUpdated {
			return entries[i].LastUpdated < entries[j].LastUpdated
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (l *Leaderboard) entryKey(email string) string {
	return "leaderboard:user:" + email
}

func buildEntry(email string, fields map[string]string) domain.LeaderboardEntry {
	points, _ := strconv.ParseInt(fields["totalPoints"], 10, 64)
	updated, _ := strconv.ParseInt(fields["lastUpdated"], 10, 64)
	return domain.LeaderboardEntry{
		Email:       email,
		Name:        fields["name"],
		TotalPoints: points,
		LastUpdated: updated,
	}
}
