package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiztour/internal/app"
	"quiztour/internal/config"
	"quiztour/internal/domain"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <tournament-id>",
		Short: "Start a tournament attempt and play through its questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			if _, err := e.requireRole(domain.RolePlayer); err != nil {
				return err
			}
			return runPlay(cmd, e, id)
		},
	}
}

func runPlay(cmd *cobra.Command, e *env, tournamentID int64) error {
	ctx := cmd.Context()
	backend := e.backend()

	attemptID, err := e.api.StartAttempt(ctx, tournamentID)
	if err != nil {
		return e.handleAuthError(err)
	}

	delay := config.TTLDuration(e.cfg.Play.FeedbackDelay, 2*time.Second)
	flow, err := app.NewFlow(backend, tournamentID, attemptID, delay)
	if err != nil {
		return err
	}
	if err := flow.Load(ctx); err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	for flow.State() != app.StateFinished {
		question, ok := flow.Current()
		if !ok {
			break
		}
		num, total := flow.Progress()
		fmt.Printf("\nQuestion %d of %d\n%s\n", num, total, question.Question.QuestionText)
		for _, opt := range []domain.AnswerOption{domain.AnswerA, domain.AnswerB, domain.AnswerC, domain.AnswerD} {
			fmt.Printf("  %s. %s\n", opt, question.Question.OptionText(opt))
		}

		if err := promptAnswer(in, flow); err != nil {
			return err
		}

		feedback, err := flow.Submit(ctx)
		if err != nil {
			return e.handleAuthError(err)
		}
		if feedback.IsCorrect {
			fmt.Printf("correct! %s\n", feedback.Feedback)
		} else {
			fmt.Printf("wrong. %s (correct answer: %s)\n", feedback.Feedback, feedback.CorrectAnswer)
		}

		if _, err := flow.Advance(ctx); err != nil {
			return e.handleAuthError(err)
		}
	}

	correct, total := flow.Score()
	fmt.Printf("\nQuiz completed! Your score: %d/%d\n", correct, total)
	if t, ok := findTournament(cmd, e, tournamentID); ok {
		if app.Passed(correct, total, t.MinPassingScore) {
			fmt.Println("Passed")
		} else {
			fmt.Println("Failed")
		}
	}
	return nil
}

// promptAnswer reads selections until one submits cleanly; the choice stays
// mutable until the user confirms with an empty line.
func promptAnswer(in *bufio.Scanner, flow *app.Flow) error {
	for {
		fmt.Print("answer [A-D]: ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return errors.New("input closed before an answer was chosen")
		}
		raw := domain.AnswerOption(strings.ToUpper(strings.TrimSpace(in.Text())))
		if err := flow.Select(raw); err != nil {
			fmt.Println(err)
			continue
		}
		return nil
	}
}

func findTournament(cmd *cobra.Command, e *env, id int64) (domain.Tournament, bool) {
	tournaments, err := e.backend().ListTournaments(cmd.Context())
	if err != nil {
		return domain.Tournament{}, false
	}
	for _, t := range tournaments {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tournament{}, false
}
