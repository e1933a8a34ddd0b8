package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown or already finished.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNotSessionOwner is returned when a user acts on somebody else's session.
	ErrNotSessionOwner = errors.New("quiz session belongs to another user")
	// ErrEmptyQuestionSet means a topic has no usable questions, so a session cannot start.
	ErrEmptyQuestionSet = errors.New("no usable questions for topic")
	// ErrNoSelection is returned when an answer is submitted without a selected option.
	ErrNoSelection = errors.New("no option selected")
	// ErrInvalidState is returned when a session is driven after it reached a terminal state.
	ErrInvalidState = errors.New("invalid quiz session state transition")
	// ErrLedgerConflict means the cumulative total changed between read and write.
	ErrLedgerConflict = errors.New("points ledger changed concurrently")
	// ErrDuplicateAttempt means an attempt with the same timestamp already exists.
	ErrDuplicateAttempt = errors.New("attempt already recorded")
	// ErrQuestionNotFound indicates a question id does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion wraps the rejection reason of an authored question.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrUserNotFound indicates an account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for any failed login or password check.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidInput wraps field validation failures of account input.
	ErrInvalidInput = errors.New("invalid input")
)
