package session

import "errors"

var (
	// ErrSessionNotFound means the referenced session id has no row.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAnswerRequired means a submit carried an empty or missing answer.
	ErrAnswerRequired = errors.New("answer required")

	// ErrSessionExhausted means an advance was requested past the final
	// question. Callers finalize instead of surfacing this.
	ErrSessionExhausted = errors.New("session exhausted")

	// ErrInvalidTransition means the requested status change is not
	// permitted by the state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotCurrentQuestion means an answer referenced a question other
	// than the session's open one.
	ErrNotCurrentQuestion = errors.New("not the current open question")
)
