package app

import (
	"log"
	"strings"

	"quizo-service/internal/domain"
)

// SessionState is the lifecycle position of a quiz session.
type SessionState int

const (
	StateActive SessionState = iota + 1
	StateCompleted
	StateAborted
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// LoadReport summarizes question validation for a session start.
type LoadReport struct {
	Topic    string       `json:"topic"`
	Loaded   int          `json:"loaded"`
	Rejected []*Rejection `json:"-"`
}

// RejectedCount is the number of raw questions dropped at load.
func (r LoadReport) RejectedCount() int {
	return len(r.Rejected)
}

// DisplayQuestion is the current question as shown to a player, with its
// options in display order.
type DisplayQuestion struct {
	QuestionID int64     `json:"questionId"`
	Topic      string    `json:"topic"`
	Text       string    `json:"text"`
	Options    [4]string `json:"options"`
	Position   int       `json:"position"` // 1-based
	Total      int       `json:"total"`
	Last       bool      `json:"last"`
}

// AdvanceResult is returned by a successful answer submission.
type AdvanceResult struct {
	Correct        bool `json:"correct"`
	Completed      bool `json:"completed"`
	Answered       int  `json:"answered"`
	Total          int  `json:"total"`
	CorrectCount   int  `json:"correctCount"`
	IncorrectCount int  `json:"incorrectCount"`
}

// SessionResult is the final tally of a completed session.
type SessionResult struct {
	Topic     string `json:"topic"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Total     int    `json:"total"`
	Earned    int64  `json:"earned"`
}

// Session is the single-player quiz state machine. It is not safe for
// concurrent use; callers serialize access (see SessionHandle).
type Session struct {
	id        string
	topic     string
	questions []ValidatedQuestion
	shuffler  *Shuffler

	state     SessionState
	index     int
	correct   int
	incorrect int
}

// LoadSession validates raw questions and builds an active session holding
// the survivors in the given order. When nothing survives it returns
// domain.ErrEmptyQuestionSet and no session.
func LoadSession(id, topic string, raws []domain.Question, shuffler *Shuffler) (*Session, LoadReport, error) {
	report := LoadReport{Topic: topic}
	questions := make([]ValidatedQuestion, 0, len(raws))
	for _, raw := range raws {
		q, rejection := ValidateQuestion(raw)
		if rejection != nil {
			log.Printf("skipping malformed question %d (%s): %s", raw.ID, topic, rejection.Reason)
			report.Rejected = append(report.Rejected, rejection)
			continue
		}
		questions = append(questions, q)
	}
	report.Loaded = len(questions)
	if len(questions) == 0 {
		return nil, report, domain.ErrEmptyQuestionSet
	}
	if shuffler == nil {
		shuffler = NewRandomShuffler()
	}
	return &Session{
		id:        id,
		topic:     topic,
		questions: questions,
		shuffler:  shuffler,
		state:     StateActive,
	}, report, nil
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Topic() string       { return s.topic }
func (s *Session) State() SessionState { return s.state }
func (s *Session) Len() int            { return len(s.questions) }
func (s *Session) Index() int          { return s.index }

// Counts returns the correct and incorrect tallies so far.
func (s *Session) Counts() (correct, incorrect int) {
	return s.correct, s.incorrect
}

// CurrentQuestion returns the question at the current index. Options are
// reshuffled on every call.
func (s *Session) CurrentQuestion() (DisplayQuestion, error) {
	if s.state != StateActive {
		return DisplayQuestion{}, domain.ErrInvalidState
	}
	q := s.questions[s.index]
	return DisplayQuestion{
		QuestionID: q.ID(),
		Topic:      s.topic,
		Text:       q.Text(),
		Options:    s.shuffler.Shuffle(q.Options()),
		Position:   s.index + 1,
		Total:      len(s.questions),
		Last:       s.index == len(s.questions)-1,
	}, nil
}

// SubmitAnswer scores the selected option against the current question and
// advances. An empty selection is rejected without changing state.
func (s *Session) SubmitAnswer(selected string) (AdvanceResult, error) {
	if s.state != StateActive {
		return AdvanceResult{}, domain.ErrInvalidState
	}
	if strings.TrimSpace(selected) == "" {
		return AdvanceResult{}, domain.ErrNoSelection
	}

	correct := s.questions[s.index].IsCorrect(selected)
	if correct {
		s.correct++
	} else {
		s.incorrect++
	}
	s.index++
	if s.index == len(s.questions) {
		s.state = StateCompleted
	}

	return AdvanceResult{
		Correct:        correct,
		Completed:      s.state == StateCompleted,
		Answered:       s.index,
		Total:          len(s.questions),
		CorrectCount:   s.correct,
		IncorrectCount: s.incorrect,
	}, nil
}

// Abort ends an active session without a result. It reports whether the
// call changed state; repeated calls and calls on finished sessions are no-ops.
func (s *Session) Abort() bool {
	if s.state != StateActive {
		return false
	}
	s.state = StateAborted
	return true
}

// Result returns the final tally. Total is the number of loaded questions.
func (s *Session) Result() (SessionResult, error) {
	if s.state != StateCompleted {
		return SessionResult{}, domain.ErrInvalidState
	}
	return SessionResult{
		Topic:     s.topic,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Total:     len(s.questions),
		Earned:    Score(s.correct, s.incorrect),
	}, nil
}
