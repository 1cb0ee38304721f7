package domain

import "errors"

var (
	// ErrProvider is returned when the trivia provider cannot deliver
	// questions (network failure, bad payload, or a provider-side
	// error code).
	ErrProvider = errors.New("question provider failure")
	// ErrNoActiveSession is returned when an action requires a
	// resumable session and none exists.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrQuizFinished is returned when a mutation is attempted on a
	// finished session.
	ErrQuizFinished = errors.New("quiz already finished")
	// ErrFetchInFlight is returned when a new quiz is requested while
	// a question fetch is still outstanding.
	ErrFetchInFlight = errors.New("question fetch already in flight")
	// ErrAnswerLocked is returned when a second answer is picked for a
	// question that already has one pending.
	ErrAnswerLocked = errors.New("answer already locked for this question")
)
