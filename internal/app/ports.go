package app

import (
	"context"
	"time"

	"quizo-service/internal/domain"
)

// QuestionSource lists raw questions for a topic (stores and caches).
type QuestionSource interface {
	ListQuestions(ctx context.Context, topic string) ([]domain.Question, error)
}

// QuestionStore is the authoring side of question persistence.
type QuestionStore interface {
	QuestionSource
	AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	// DeleteQuestion removes a question and returns what was removed.
	DeleteQuestion(ctx context.Context, id int64) (domain.Question, error)
	CountByTopic(ctx context.Context, topic string) (int, error)
	Topics(ctx context.Context) ([]domain.TopicSummary, error)
}

// CacheInvalidator drops cached questions of a topic after authoring changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, topic string)
}

// AttemptStore is the durable, authoritative record of completed sessions.
type AttemptStore interface {
	// CumulativePoints is the sum of earned points over all attempts, 0 if none.
	CumulativePoints(ctx context.Context, email string) (int64, error)
	// AppendAttempt stores rec only if the user's cumulative total still equals
	// expectedPrior; otherwise it returns domain.ErrLedgerConflict.
	AppendAttempt(ctx context.Context, rec domain.AttemptRecord, expectedPrior int64) error
	// ListAttempts returns the user's attempts, newest first.
	ListAttempts(ctx context.Context, email string) ([]domain.AttemptRecord, error)
	Totals(ctx context.Context) ([]domain.PointsTotal, error)
}

// LeaderboardProjector maintains the read-optimized leaderboard copy.
type LeaderboardProjector interface {
	// Upsert merges the entry; an empty name leaves the stored name untouched.
	Upsert(ctx context.Context, email, name string, points int64) error
	// Restore writes the entry as given, keeping the stored name when entry.Name is empty.
	Restore(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Entry(ctx context.Context, email string) (domain.LeaderboardEntry, bool, error)
}

// UserStore persists accounts keyed by email.
type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// SessionRepository holds in-flight sessions (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(h *SessionHandle)
	Get(id string) (*SessionHandle, bool)
	Delete(id string)
	// Idle lists sessions not touched since cutoff.
	Idle(cutoff time.Time) []*SessionHandle
}

// PasswordHasher is a one-way password digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
