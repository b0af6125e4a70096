package domain

import "errors"

// Sentinel errors for session lifecycle transitions. Handlers map these
// to stable machine-readable API error codes.
var (
	// ErrNotFound indicates an unknown session or question id.
	ErrNotFound = errors.New("not found")

	// ErrSessionCompleted indicates a mutation attempt on a completed session.
	ErrSessionCompleted = errors.New("session is already completed")

	// ErrNoAnswers indicates a completion attempt on a session with no answers.
	ErrNoAnswers = errors.New("cannot complete session without answers")
)
