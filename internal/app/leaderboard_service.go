package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quizo-service/internal/domain"
)

const defaultLeaderboardLimit = 50

// LeaderboardService reads and repairs the leaderboard projection.
type LeaderboardService struct {
	projector LeaderboardProjector
	attempts  AttemptStore
	users     UserStore
}

func NewLeaderboardService(projector LeaderboardProjector, attempts AttemptStore, users UserStore) *LeaderboardService {
	return &LeaderboardService{projector: projector, attempts: attempts, users: users}
}

// Top returns the highest cumulative totals.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.projector.Top(ctx, limit)
}

// Standing returns the caller's own entry, if projected.
func (s *LeaderboardService) Standing(ctx context.Context, email string) (domain.LeaderboardEntry, bool, error) {
	return s.projector.Entry(ctx, email)
}

// Rebuild re-projects every user's authoritative total from the attempt store.
// LastUpdated is taken from the attempt that reached the total, so ties keep
// their original order.
func (s *LeaderboardService) Rebuild(ctx context.Context) (int, error) {
	totals, err := s.attempts.Totals(ctx)
	if err != nil {
		return 0, fmt.Errorf("read totals: %w", err)
	}
	for _, total := range totals {
		name := ""
		user, err := s.users.UserByEmail(ctx, total.Email)
		switch {
		case err == nil:
			name = user.Username
		case errors.Is(err, domain.ErrUserNotFound):
			log.Printf("rebuild: no account for %s, keeping projected name", total.Email)
		default:
			return 0, err
		}
		entry := domain.LeaderboardEntry{
			Email:       total.Email,
			Name:        name,
			TotalPoints: total.Total,
			LastUpdated: total.LastAttempt,
		}
		if err := s.projector.Restore(ctx, entry); err != nil {
			return 0, fmt.Errorf("project %s: %w", total.Email, err)
		}
	}
	return len(totals), nil
}
