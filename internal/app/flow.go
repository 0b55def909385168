package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quiztour/internal/domain"
)

// FlowBackend is the slice of the platform API one quiz attempt needs.
type FlowBackend interface {
	GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error)
	SubmitAnswer(ctx context.Context, attemptID, questionID int64, selected domain.AnswerOption) (domain.AnswerFeedback, error)
	FinishAttempt(ctx context.Context, attemptID int64) error
}

// FlowState is the explicit state of a quiz attempt. Transitions:
// Loading -> Presenting -> AwaitingAnswer -> Feedback -> Presenting | Finished.
type FlowState int

const (
	StateLoading FlowState = iota
	StatePresenting
	StateAwaitingAnswer
	StateFeedback
	StateFinished
)

func (s FlowState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateFeedback:
		return "feedback"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Flow sequences question presentation, answer capture, feedback and
// completion for a single attempt. Submissions are strictly sequential: a
// new one is never issued before the previous feedback has been shown and
// the advance delay has elapsed.
type Flow struct {
	backend       FlowBackend
	tournamentID  int64
	attemptID     int64
	feedbackDelay time.Duration
	sleep         func(time.Duration)

	state      FlowState
	questions  []domain.TournamentQuestion
	index      int
	selected   domain.AnswerOption
	feedback   domain.AnswerFeedback
	submitting bool
	correct    int
}

// NewFlow builds the flow for one started attempt. A zero attempt id means
// the quiz screen was reached without starting a tournament; the caller
// must bail back to the dashboard before any network call is made.
func NewFlow(backend FlowBackend, tournamentID, attemptID int64, feedbackDelay time.Duration) (*Flow, error) {
	if attemptID == 0 {
		return nil, domain.ErrNoAttempt
	}
	return &Flow{
		backend:       backend,
		tournamentID:  tournamentID,
		attemptID:     attemptID,
		feedbackDelay: feedbackDelay,
		sleep:         time.Sleep,
		state:         StateLoading,
	}, nil
}

// Load fetches the ordered question sequence. On failure the flow is
// unusable and the caller discards it; no partial state is retained.
func (f *Flow) Load(ctx context.Context) error {
	if f.state != StateLoading {
		return fmt.Errorf("%w: load in state %s", domain.ErrBadTransition, f.state)
	}
	questions, err := f.backend.GetQuestions(ctx, f.tournamentID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].QuestionOrder < questions[j].QuestionOrder
	})
	f.questions = questions
	f.state = StatePresenting
	return nil
}

// State returns the current flow state.
func (f *Flow) State() FlowState { return f.state }

// Current returns the question being presented.
func (f *Flow) Current() (domain.TournamentQuestion, bool) {
	if f.index >= len(f.questions) {
		return domain.TournamentQuestion{}, false
	}
	switch f.state {
	case StatePresenting, StateAwaitingAnswer, StateFeedback:
		return f.questions[f.index], true
	}
	return domain.TournamentQuestion{}, false
}

// Progress returns the 1-based question number and the total count.
func (f *Flow) Progress() (int, int) {
	return f.index + 1, len(f.questions)
}

// Select records the picked option. The selection stays mutable until
// submission; during feedback the options are frozen.
func (f *Flow) Select(opt domain.AnswerOption) error {
	if f.state != StatePresenting && f.state != StateAwaitingAnswer {
		return fmt.Errorf("%w: select in state %s", domain.ErrBadTransition, f.state)
	}
	if !opt.Valid() {
		return domain.ErrInvalidAnswer
	}
	f.selected = opt
	f.state = StateAwaitingAnswer
	return nil
}

// Submit sends the selected answer and enters Feedback. A submit while one
// is already pending returns ErrSubmissionInFlight without touching the
// network; on an API failure the flow stays in AwaitingAnswer so the user
// can retry.
func (f *Flow) Submit(ctx context.Context) (domain.AnswerFeedback, error) {
	if f.submitting {
		return domain.AnswerFeedback{}, domain.ErrSubmissionInFlight
	}
	if f.state != StateAwaitingAnswer {
		if f.state == StatePresenting {
			return domain.AnswerFeedback{}, domain.ErrNoSelection
		}
		return domain.AnswerFeedback{}, fmt.Errorf("%w: submit in state %s", domain.ErrBadTransition, f.state)
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	feedback, err := f.backend.SubmitAnswer(ctx, f.attemptID, f.questions[f.index].ID, f.selected)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	f.feedback = feedback
	if feedback.IsCorrect {
		f.correct++
	}
	f.state = StateFeedback
	return feedback, nil
}

// Advance waits out the feedback display delay, discards the feedback and
// moves to the next question, or finishes the attempt after the last one.
// It reports whether the flow is finished.
func (f *Flow) Advance(ctx context.Context) (bool, error) {
	if f.state != StateFeedback {
		return false, fmt.Errorf("%w: advance in state %s", domain.ErrBadTransition, f.state)
	}
	f.sleep(f.feedbackDelay)
	f.feedback = domain.AnswerFeedback{}
	f.selected = ""

	if f.index+1 < len(f.questions) {
		f.index++
		f.state = StatePresenting
		return false, nil
	}
	if err := f.backend.FinishAttempt(ctx, f.attemptID); err != nil {
		return false, err
	}
	f.state = StateFinished
	return true, nil
}

// Score returns the running correct count and the total question count.
func (f *Flow) Score() (correct, total int) {
	return f.correct, len(f.questions)
}
