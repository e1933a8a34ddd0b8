package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"quizo-service/internal/domain"
)

func TestLeaderboardProjectsAndRanks(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	lb := NewLeaderboard(newClient(mr))
	tick := time.UnixMilli(1_000)
	lb.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	_ = lb.Upsert(ctx, "ann@example.com", "Ann", 30)
	_ = lb.Upsert(ctx, "bob@example.com", "Bob", 30)
	_ = lb.Upsert(ctx, "cid@example.com", "Cid", 45)
	_ = lb.Upsert(ctx, "dee@example.com", "Dee", -10)

	top, err := lb.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Email != "cid@example.com" || top[1].Email != "ann@example.com" {
		t.Fatalf("expected cid then ann (earlier tie), got %+v", top)
	}

	// Name-less upsert keeps the stored name.
	if err := lb.Upsert(ctx, "ann@example.com", "", 50); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entry, ok, err := lb.Entry(ctx, "ann@example.com")
	if err != nil || !ok {
		t.Fatalf("entry: ok=%v err=%v", ok, err)
	}
	if entry.Name != "Ann" || entry.TotalPoints != 50 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	top, _ = lb.Top(ctx, 10)
	if len(top) != 4 || top[0].Email != "ann@example.com" || top[3].TotalPoints != -10 {
		t.Fatalf("unexpected full ranking %+v", top)
	}
	if _, ok, _ := lb.Entry(ctx, "nobody@example.com"); ok {
		t.Fatalf("expected missing entry")
	}
}

func TestLeaderboardRestoreKeepsGivenTimestamp(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	lb := NewLeaderboard(newClient(mr))
	_ = lb.Upsert(ctx, "bob@example.com", "Bob", 5)
	if err := lb.Restore(ctx, domain.LeaderboardEntry{Email: "bob@example.com", TotalPoints: 20, LastUpdated: 300}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	_ = lb.Restore(ctx, domain.LeaderboardEntry{Email: "zed@example.com", Name: "Zed", TotalPoints: 20, LastUpdated: 100})

	top, err := lb.Top(ctx, 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Zed" {
		t.Fatalf("expected earlier tie first, got %+v", top)
	}
	bob, ok, _ := lb.Entry(ctx, "bob@example.com")
	if !ok || bob.Name != "Bob" || bob.LastUpdated != 300 {
		t.Fatalf("unexpected restored entry %+v", bob)
	}
}
