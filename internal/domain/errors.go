package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an authenticated operation is attempted
	// without a stored identity.
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired indicates the stored bearer token has expired and the
	// user must log in again.
	ErrSessionExpired = errors.New("session token expired")
	// ErrNoAttempt indicates the quiz flow was entered without a started attempt.
	ErrNoAttempt = errors.New("no attempt id for quiz flow")
	// ErrNoQuestions indicates the tournament's question sequence is empty.
	ErrNoQuestions = errors.New("tournament has no questions")
	// ErrNoSelection indicates a submit was requested before an option was picked.
	ErrNoSelection = errors.New("no answer selected")
	// ErrSubmissionInFlight indicates an answer submission is already pending;
	// callers must drop the duplicate instead of issuing a second request.
	ErrSubmissionInFlight = errors.New("answer submission already in flight")
	// ErrInvalidAnswer indicates a selection outside A..D.
	ErrInvalidAnswer = errors.New("answer must be one of A, B, C, D")
	// ErrBadTransition indicates a quiz flow operation that is not legal in the
	// current state.
	ErrBadTransition = errors.New("invalid quiz flow transition")
)

// ValidationError reports a client-side form check failure; it is surfaced
// next to the offending field, never sent to the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate runs the client-side checks performed before create/update
// requests: required fields, date ordering and the passing-score range.
func (t Tournament) Validate() error {
	switch {
	case t.Name == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case t.Category == "":
		return &ValidationError{Field: "category", Reason: "required"}
	case t.Difficulty == "":
		return &ValidationError{Field: "difficulty", Reason: "required"}
	case t.Creator == "":
		return &ValidationError{Field: "creator", Reason: "required"}
	case t.StartDate.IsZero():
		return &ValidationError{Field: "startDate", Reason: "required"}
	case t.EndDate.IsZero():
		return &ValidationError{Field: "endDate", Reason: "required"}
	}
	if !t.StartDate.Before(t.EndDate.Time) {
		return &ValidationError{Field: "startDate", Reason: "must be before endDate"}
	}
	if t.MinPassingScore < 0 || t.MinPassingScore > 100 {
		return &ValidationError{Field: "minPassingScore", Reason: "must be between 0 and 100"}
	}
	return nil
}
