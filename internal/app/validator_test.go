package app

import (
	"testing"

	"quizo-service/internal/domain"
)

func validQuestion() domain.Question {
	return domain.Question{
		ID:            7,
		Topic:         " Math ",
		Text:          " What is 2 + 2? ",
		OptionA:       "3",
		OptionB:       " 4 ",
		OptionC:       "5",
		OptionD:       "6",
		CorrectAnswer: "4 ",
	}
}

func TestValidateQuestionTrims(t *testing.T) {
	q, rejection := ValidateQuestion(validQuestion())
	if rejection != nil {
		t.Fatalf("unexpected rejection: %v", rejection)
	}
	if q.Text() != "What is 2 + 2?" || q.Topic() != "Math" || q.CorrectAnswer() != "4" {
		t.Fatalf("expected trimmed values, got %+v", q)
	}
	if q.Options()[1] != "4" {
		t.Fatalf("expected trimmed option, got %q", q.Options()[1])
	}
	if !q.IsCorrect("  4") || q.IsCorrect("5") {
		t.Fatalf("IsCorrect mismatch")
	}
}

func TestValidateQuestionRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Question)
		reason string
	}{
		{"empty text", func(q *domain.Question) { q.Text = "   " }, ReasonEmptyText},
		{"empty option", func(q *domain.Question) { q.OptionC = "" }, ReasonEmptyOption},
		{"blank option", func(q *domain.Question) { q.OptionD = "\t" }, ReasonEmptyOption},
		{"empty answer", func(q *domain.Question) { q.CorrectAnswer = " " }, ReasonEmptyAnswer},
		{"duplicate options", func(q *domain.Question) { q.OptionA = "4" }, ReasonDuplicateOptions},
		{"answer not an option", func(q *domain.Question) { q.CorrectAnswer = "42" }, ReasonAnswerNotOption},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validQuestion()
			tc.mutate(&raw)
			q, rejection := ValidateQuestion(raw)
			if rejection == nil {
				t.Fatalf("expected rejection")
			}
			if rejection.Reason != tc.reason {
				t.Fatalf("expected %q, got %q", tc.reason, rejection.Reason)
			}
			if rejection.QuestionID != 7 {
				t.Fatalf("expected question id carried, got %d", rejection.QuestionID)
			}
			if q != (ValidatedQuestion{}) {
				t.Fatalf("expected zero value on rejection")
			}
		})
	}
}
