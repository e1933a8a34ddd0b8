package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"quizo-service/internal/domain"
)

// Player identifies who is taking a quiz.
type Player struct {
	Email string
	Name  string
}

// SessionHandle pairs a session with its owner and serializes access to it.
type SessionHandle struct {
	mu          sync.Mutex
	session     *Session
	player      Player
	lastTouched time.Time
}

// NewSessionHandle is exported for infrastructure layers that need to seed sessions.
func NewSessionHandle(session *Session, player Player, now time.Time) *SessionHandle {
	return &SessionHandle{session: session, player: player, lastTouched: now}
}

func (h *SessionHandle) ID() string    { return h.session.ID() }
func (h *SessionHandle) Owner() Player { return h.player }

// LastTouched reports when the session was last driven.
func (h *SessionHandle) LastTouched() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastTouched
}

// Started is returned when a session begins.
type Started struct {
	SessionID string          `json:"sessionId"`
	Report    LoadReport      `json:"report"`
	Rejected  int             `json:"rejected"`
	Question  DisplayQuestion `json:"question"`
}

// AnswerOutcome is the service-level result of one answer.
type AnswerOutcome struct {
	Advance AdvanceResult         `json:"advance"`
	Next    *DisplayQuestion      `json:"next,omitempty"`
	Attempt *domain.AttemptRecord `json:"attempt,omitempty"`
	// Synced is false when the leaderboard projection could not be updated.
	Synced bool `json:"synced"`
}

// QuizOptions tunes the quiz service.
type QuizOptions struct {
	ShuffleQuestions bool
	LedgerRetries    int
	Clock            func() time.Time
	Shuffler         *Shuffler
}

// QuizService drives quiz sessions and settles completed ones.
type QuizService struct {
	questions   QuestionSource
	attempts    AttemptStore
	leaderboard LeaderboardProjector
	sessions    SessionRepository

	shuffler         *Shuffler
	shuffleQuestions bool
	ledgerRetries    int
	now              func() time.Time

	stampMu   sync.Mutex
	lastStamp int64

	// ended remembers finished sessions until the next idle sweep past their
	// end, so late calls get ErrInvalidState rather than ErrSessionNotFound.
	endedMu sync.Mutex
	ended   map[string]endedSession
}

type endedSession struct {
	owner string
	at    time.Time
}

func NewQuizService(questions QuestionSource, attempts AttemptStore, leaderboard LeaderboardProjector, sessions SessionRepository, opts QuizOptions) *QuizService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Shuffler == nil {
		opts.Shuffler = NewRandomShuffler()
	}
	if opts.LedgerRetries <= 0 {
		opts.LedgerRetries = 5
	}
	return &QuizService{
		questions:        questions,
		attempts:         attempts,
		leaderboard:      leaderboard,
		sessions:         sessions,
		shuffler:         opts.Shuffler,
		shuffleQuestions: opts.ShuffleQuestions,
		ledgerRetries:    opts.LedgerRetries,
		now:              opts.Clock,
		ended:            make(map[string]endedSession),
	}
}

// Start loads the topic's questions and opens a session for the player.
func (s *QuizService) Start(ctx context.Context, player Player, topic string) (Started, error) {
	raws, err := s.questions.ListQuestions(ctx, topic)
	if err != nil {
		return Started{}, fmt.Errorf("load questions for %q: %w", topic, err)
	}
	if s.shuffleQuestions {
		raws = s.permute(raws)
	}

	session, report, err := LoadSession(uuid.NewString(), topic, raws, s.shuffler)
	if err != nil {
		return Started{Report: report, Rejected: report.RejectedCount()}, err
	}
	first, err := session.CurrentQuestion()
	if err != nil {
		return Started{}, err
	}

	s.sessions.Put(NewSessionHandle(session, player, s.now()))
	return Started{
		SessionID: session.ID(),
		Report:    report,
		Rejected:  report.RejectedCount(),
		Question:  first,
	}, nil
}

// Current returns the current question with freshly shuffled options.
func (s *QuizService) Current(_ context.Context, sessionID, email string) (DisplayQuestion, error) {
	h, err := s.handle(sessionID, email)
	if err != nil {
		return DisplayQuestion{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastTouched = s.now()
	return h.session.CurrentQuestion()
}

// Answer submits the selected option. When the session completes, the attempt
// is recorded and the leaderboard projection updated before returning.
func (s *QuizService) Answer(ctx context.Context, sessionID, email, selected string) (AnswerOutcome, error) {
	h, err := s.handle(sessionID, email)
	if err != nil {
		return AnswerOutcome{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastTouched = s.now()

	advance, err := h.session.SubmitAnswer(selected)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if !advance.Completed {
		next, err := h.session.CurrentQuestion()
		if err != nil {
			return AnswerOutcome{}, err
		}
		return AnswerOutcome{Advance: advance, Next: &next}, nil
	}

	s.release(h)
	result, err := h.session.Result()
	if err != nil {
		return AnswerOutcome{}, err
	}
	attempt, synced, err := s.settle(ctx, h.player, result)
	if err != nil {
		return AnswerOutcome{Advance: advance}, err
	}
	return AnswerOutcome{Advance: advance, Attempt: &attempt, Synced: synced}, nil
}

// Abort ends a session without recording an attempt. Unknown or already
// finished sessions are ignored, so repeated calls succeed.
func (s *QuizService) Abort(_ context.Context, sessionID, email string) error {
	h, err := s.handle(sessionID, email)
	if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrInvalidState) {
		return nil
	}
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.session.Abort()
	h.mu.Unlock()
	s.release(h)
	return nil
}

// ExpireIdle aborts sessions untouched since cutoff and returns how many were dropped.
// Records of sessions that ended before cutoff are forgotten.
func (s *QuizService) ExpireIdle(_ context.Context, cutoff time.Time) int {
	s.endedMu.Lock()
	for id, e := range s.ended {
		if e.at.Before(cutoff) {
			delete(s.ended, id)
		}
	}
	s.endedMu.Unlock()

	expired := 0
	for _, h := range s.sessions.Idle(cutoff) {
		h.mu.Lock()
		aborted := h.session.Abort()
		h.mu.Unlock()
		s.release(h)
		if aborted {
			expired++
		}
	}
	return expired
}

// History lists a player's completed attempts, newest first.
func (s *QuizService) History(ctx context.Context, email string) ([]domain.AttemptRecord, error) {
	return s.attempts.ListAttempts(ctx, email)
}

func (s *QuizService) handle(sessionID, email string) (*SessionHandle, error) {
	h, ok := s.sessions.Get(sessionID)
	if !ok {
		s.endedMu.Lock()
		e, ended := s.ended[sessionID]
		s.endedMu.Unlock()
		switch {
		case !ended:
			return nil, domain.ErrSessionNotFound
		case e.owner != email:
			return nil, domain.ErrNotSessionOwner
		default:
			return nil, domain.ErrInvalidState
		}
	}
	if h.player.Email != email {
		return nil, domain.ErrNotSessionOwner
	}
	return h, nil
}

// release drops a finished session from the repository and remembers it as ended.
func (s *QuizService) release(h *SessionHandle) {
	s.endedMu.Lock()
	s.ended[h.ID()] = endedSession{owner: h.player.Email, at: s.now()}
	s.endedMu.Unlock()
	s.sessions.Delete(h.ID())
}

// settle appends the attempt against the authoritative prior total, retrying
// on concurrent change, then projects the new total to the leaderboard.
func (s *QuizService) settle(ctx context.Context, player Player, result SessionResult) (domain.AttemptRecord, bool, error) {
	rec := domain.AttemptRecord{
		Timestamp: s.stamp(),
		Topic:     result.Topic,
		Correct:   result.Correct,
		Incorrect: result.Incorrect,
		Earned:    result.Earned,
		Email:     player.Email,
	}

	var lastErr error
	for attempt := 1; attempt <= s.ledgerRetries; attempt++ {
		prior, err := s.attempts.CumulativePoints(ctx, player.Email)
		if err != nil {
			return domain.AttemptRecord{}, false, fmt.Errorf("read cumulative points: %w", err)
		}
		rec.OverallPoints = Reconcile(prior, rec.Earned)

		err = s.attempts.AppendAttempt(ctx, rec, prior)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		conflict := errors.Is(err, domain.ErrLedgerConflict)
		if !conflict && !errors.Is(err, domain.ErrDuplicateAttempt) {
			return domain.AttemptRecord{}, false, fmt.Errorf("append attempt: %w", err)
		}
		if conflict {
			log.Printf("ledger conflict for %s (try %d/%d), re-reading total", player.Email, attempt, s.ledgerRetries)
		}
		// A fresh stamp keeps attempt order consistent with running totals.
		rec.Timestamp = s.stamp()
	}
	if lastErr != nil {
		return domain.AttemptRecord{}, false, lastErr
	}

	if s.leaderboard == nil {
		return rec, false, nil
	}
	if err := s.leaderboard.Upsert(ctx, player.Email, player.Name, rec.OverallPoints); err != nil {
		log.Printf("leaderboard sync failed for %s: %v", player.Email, err)
		return rec, false, nil
	}
	return rec, true, nil
}

// stamp returns strictly increasing epoch millis so attempt ids never collide
// within this process.
func (s *QuizService) stamp() int64 {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastStamp {
		ms = s.lastStamp + 1
	}
	s.lastStamp = ms
	return ms
}

func (s *QuizService) permute(raws []domain.Question) []domain.Question {
	out := make([]domain.Question, len(raws))
	for i, j := range s.shuffler.Perm(len(raws)) {
		out[i] = raws[j]
	}
	return out
}
