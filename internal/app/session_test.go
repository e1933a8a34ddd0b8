package app

import (
	"errors"
	"testing"

	"quizo-service/internal/domain"
)

func mathQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Topic: "Math", Text: "2 + 2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectAnswer: "4"},
		{ID: 2, Topic: "Math", Text: "3 * 3?", OptionA: "6", OptionB: "9", OptionC: "12", OptionD: "33", CorrectAnswer: "9"},
		{ID: 3, Topic: "Math", Text: "10 / 2?", OptionA: "2", OptionB: "5", OptionD: "20", CorrectAnswer: "5"},
		{ID: 4, Topic: "Math", Text: "7 - 3?", OptionA: "3", OptionB: "4", OptionC: "10", OptionD: "1", CorrectAnswer: "4"},
		{ID: 5, Topic: "Math", Text: "2 ^ 3?", OptionA: "6", OptionB: "8", OptionC: "9", OptionD: "5", CorrectAnswer: "8"},
	}
}

var mathAnswers = map[int64]string{1: "4", 2: "9", 4: "4", 5: "8"}

func TestSessionAllCorrect(t *testing.T) {
	s, report, err := LoadSession("s1", "Math", mathQuestions(), NewShuffler(1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.Loaded != 4 || report.RejectedCount() != 1 {
		t.Fatalf("expected 4 loaded 1 rejected, got %+v", report)
	}
	if report.Rejected[0].QuestionID != 3 {
		t.Fatalf("expected question 3 rejected")
	}

	for i := 0; i < 4; i++ {
		q, err := s.CurrentQuestion()
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		if q.Position != i+1 || q.Total != 4 || q.Last != (i == 3) {
			t.Fatalf("unexpected position info %+v", q)
		}
		res, err := s.SubmitAnswer(mathAnswers[q.QuestionID])
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !res.Correct {
			t.Fatalf("expected correct answer for %d", q.QuestionID)
		}
	}

	if s.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", s.State())
	}
	result, err := s.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Correct != 4 || result.Incorrect != 0 || result.Total != 4 || result.Earned != 20 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := s.SubmitAnswer("4"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state after completion, got %v", err)
	}
	if c, i := s.Counts(); c != 4 || i != 0 || s.Index() != 4 || s.State() != StateCompleted {
		t.Fatalf("rejected submit changed state: correct=%d incorrect=%d index=%d state=%s", c, i, s.Index(), s.State())
	}
	if again, _ := s.Result(); again != result {
		t.Fatalf("result changed after rejected submit: %+v", again)
	}
	if _, err := s.CurrentQuestion(); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state for current, got %v", err)
	}
}

func TestSessionMixedScoring(t *testing.T) {
	s, _, err := LoadSession("s1", "Math", mathQuestions(), NewShuffler(1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 4; i++ {
		q, _ := s.CurrentQuestion()
		answer := "wrong"
		if i == 0 {
			answer = mathAnswers[q.QuestionID]
		}
		if _, err := s.SubmitAnswer(answer); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	result, _ := s.Result()
	if result.Earned != 5-3*2 {
		t.Fatalf("expected -1, got %d", result.Earned)
	}
}

func TestSessionEmptySelectionKeepsState(t *testing.T) {
	s, _, _ := LoadSession("s1", "Math", mathQuestions(), NewShuffler(1))
	if _, err := s.SubmitAnswer("   "); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected no selection, got %v", err)
	}
	c, i := s.Counts()
	if s.Index() != 0 || c != 0 || i != 0 || s.State() != StateActive {
		t.Fatalf("state changed on empty selection")
	}
}

func TestSessionAbort(t *testing.T) {
	s, _, _ := LoadSession("s1", "Math", mathQuestions(), NewShuffler(1))
	if !s.Abort() {
		t.Fatalf("expected first abort to change state")
	}
	if s.Abort() {
		t.Fatalf("expected second abort to be a no-op")
	}
	if _, err := s.Result(); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("aborted sessions have no result, got %v", err)
	}
}

func TestSessionSubmitAfterAbort(t *testing.T) {
	s, _, _ := LoadSession("s1", "Math", mathQuestions(), NewShuffler(1))
	if _, err := s.SubmitAnswer("wrong"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.Abort()

	if _, err := s.SubmitAnswer("4"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state after abort, got %v", err)
	}
	if c, i := s.Counts(); c != 0 || i != 1 || s.Index() != 1 || s.State() != StateAborted {
		t.Fatalf("rejected submit changed state: correct=%d incorrect=%d index=%d state=%s", c, i, s.Index(), s.State())
	}
}

func TestLoadSessionEmpty(t *testing.T) {
	raws := []domain.Question{{ID: 1, Text: "", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "a"}}
	s, report, err := LoadSession("s1", "Math", raws, nil)
	if !errors.Is(err, domain.ErrEmptyQuestionSet) || s != nil {
		t.Fatalf("expected empty question set, got %v", err)
	}
	if report.RejectedCount() != 1 {
		t.Fatalf("expected rejection reported")
	}
	if _, _, err := LoadSession("s2", "None", nil, nil); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected empty question set for no rows, got %v", err)
	}
}
