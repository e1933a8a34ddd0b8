package app

import (
	"fmt"
	"strings"

	"quizo-service/internal/domain"
)

// Rejection reasons reported for malformed questions.
const (
	ReasonEmptyText        = "question text is empty"
	ReasonEmptyOption      = "an option is empty"
	ReasonEmptyAnswer      = "correct answer is empty"
	ReasonDuplicateOptions = "options are not distinct"
	ReasonAnswerNotOption  = "correct answer does not match any option"
)

// Rejection explains why a raw question was excluded.
type Rejection struct {
	QuestionID int64
	Text       string
	Reason     string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("question %d rejected: %s", r.QuestionID, r.Reason)
}

// ValidatedQuestion is a question whose text, four distinct options and
// correct answer are non-empty after trimming, with the correct answer equal
// to exactly one option. It can only be produced by ValidateQuestion.
type ValidatedQuestion struct {
	id      int64
	topic   string
	text    string
	options [4]string
	correct string
}

func (q ValidatedQuestion) ID() int64             { return q.id }
func (q ValidatedQuestion) Topic() string         { return q.topic }
func (q ValidatedQuestion) Text() string          { return q.text }
func (q ValidatedQuestion) Options() [4]string    { return q.options }
func (q ValidatedQuestion) CorrectAnswer() string { return q.correct }

// IsCorrect compares a selected option against the correct answer, ignoring
// surrounding whitespace.
func (q ValidatedQuestion) IsCorrect(selected string) bool {
	return strings.TrimSpace(selected) == q.correct
}

// Question converts back to the storage shape (trimmed values).
func (q ValidatedQuestion) Question() domain.Question {
	return domain.Question{
		ID:            q.id,
		Topic:         q.topic,
		Text:          q.text,
		OptionA:       q.options[0],
		OptionB:       q.options[1],
		OptionC:       q.options[2],
		OptionD:       q.options[3],
		CorrectAnswer: q.correct,
	}
}

// ValidateQuestion is a pure check of a raw record. On failure the returned
// Rejection is non-nil and the ValidatedQuestion is the zero value.
func ValidateQuestion(raw domain.Question) (ValidatedQuestion, *Rejection) {
	reject := func(reason string) (ValidatedQuestion, *Rejection) {
		return ValidatedQuestion{}, &Rejection{QuestionID: raw.ID, Text: raw.Text, Reason: reason}
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return reject(ReasonEmptyText)
	}

	var options [4]string
	for i, opt := range raw.Options() {
		options[i] = strings.TrimSpace(opt)
		if options[i] == "" {
			return reject(ReasonEmptyOption)
		}
	}
	for i := 0; i < len(options); i++ {
		for j := i + 1; j < len(options); j++ {
			if options[i] == options[j] {
				return reject(ReasonDuplicateOptions)
			}
		}
	}

	correct := strings.TrimSpace(raw.CorrectAnswer)
	if correct == "" {
		return reject(ReasonEmptyAnswer)
	}
	matches := 0
	for _, opt := range options {
		if opt == correct {
			matches++
		}
	}
	if matches != 1 {
		return reject(ReasonAnswerNotOption)
	}

	return ValidatedQuestion{
		id:      raw.ID,
		topic:   strings.TrimSpace(raw.Topic),
		text:    text,
		options: options,
		correct: correct,
	}, nil
}
