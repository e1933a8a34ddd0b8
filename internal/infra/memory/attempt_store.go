package memory

import (
	"context"
	"sort"
	"sync"

	"quizo-service/internal/domain"
)

// AttemptStore keeps attempt records in memory. The cumulative check and the
// append happen under one lock, which makes AppendAttempt a compare-and-swap.
type AttemptStore struct {
	mu      sync.Mutex
	byEmail map[string][]domain.AttemptRecord
	totals  map[string]int64
	latest  map[string]int64
	byStamp map[int64]struct{}
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		byEmail: make(map[string][]domain.AttemptRecord),
		totals:  make(map[string]int64),
		latest:  make(map[string]int64),
		byStamp: make(map[int64]struct{}),
	}
}

func (s *AttemptStore) CumulativePoints(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[email], nil
}

func (s *AttemptStore) AppendAttempt(_ context.Context, rec domain.AttemptRecord, expectedPrior int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totals[rec.Email] != expectedPrior {
		return domain.ErrLedgerConflict
	}
	if _, dup := s.byStamp[rec.Timestamp]; dup {
		return domain.ErrDuplicateAttempt
	}
	s.byStamp[rec.Timestamp] = struct{}{}
	s.byEmail[rec.Email] = append(s.byEmail[rec.Email], rec)
	s.totals[rec.Email] += rec.Earned
	if rec.Timestamp > s.latest[rec.Email] {
		s.latest[rec.Email] = rec.Timestamp
	}
	return nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, email string) ([]domain.AttemptRecord, error) {
	s.mu.Lock()
	out := make([]domain.AttemptRecord, len(s.byEmail[email]))
	copy(out, s.byEmail[email])
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (s *AttemptStore) Totals(_ context.Context) ([]domain.PointsTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PointsTotal, 0, len(s.totals))
	for email, total := range s.totals {
		out = append(out, domain.PointsTotal{Email: email, Total: total, LastAttempt: s.latest[email]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
