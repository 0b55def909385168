package cli

import (
	"fmt"
	"strconv"

	"quiztour/internal/domain"
	"github.com/spf13/cobra"
)

func newTournamentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "Browse and manage tournaments",
	}
	cmd.AddCommand(
		newTournamentsListCmd(),
		newTournamentsCreateCmd(),
		newTournamentsUpdateCmd(),
		newTournamentsDeleteCmd(),
		newTournamentsLikeCmd(),
		newTournamentsScoreboardCmd(),
	)
	return cmd
}

func newTournamentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tournaments",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if _, err := e.requireSession(); err != nil {
				return err
			}
			tournaments, err := e.backend().ListTournaments(cmd.Context())
			if err != nil {
				return e.handleAuthError(err)
			}
			if len(tournaments) == 0 {
				fmt.Println("no tournaments")
				return nil
			}
			for _, t := range tournaments {
				fmt.Printf("%4d  %-30s  %-18s  %-6s  %s..%s  pass>=%d%%  likes=%d\n",
					t.ID, t.Name, t.Category, t.Difficulty,
					t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02"),
					t.MinPassingScore, t.Likes)
			}
			return nil
		},
	}
}

// tournamentFlags binds the shared create/update flag set.
type tournamentFlags struct {
	name            string
	category        string
	difficulty      string
	start           string
	end             string
	minPassingScore int
}

func (f *tournamentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "tournament name")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "difficulty (Easy, Medium, Hard)")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (2006-01-02)")
	cmd.Flags().IntVar(&f.minPassingScore, "min-passing-score", 0, "passing threshold in percent")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("difficulty")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

// build validates the flag values client-side before any request is sent.
func (f *tournamentFlags) build(creator string) (domain.Tournament, error) {
	t := domain.Tournament{
		Creator:         creator,
		Name:            f.name,
		Category:        f.category,
		Difficulty:      f.difficulty,
		MinPassingScore: f.minPassingScore,
	}
	if f.start != "" {
		start, err := domain.ParseDate(f.start)
		if err != nil {
			return domain.Tournament{}, &domain.ValidationError{Field: "start", Reason: "use format 2006-01-02"}
		}
		t.StartDate = start
	}
	if f.end != "" {
		end, err := domain.ParseDate(f.end)
		if err != nil {
			return domain.Tournament{}, &domain.ValidationError{Field: "end", Reason: "use format 2006-01-02"}
		}
		t.EndDate = end
	}
	if err := t.Validate(); err != nil {
		return domain.Tournament{}, err
	}
	return t, nil
}

func newTournamentsCreateCmd() *cobra.Command {
	flags := &tournamentFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tournament (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			sess, err := e.requireRole(domain.RoleAdmin)
			if err != nil {
				return err
			}
			t, err := flags.build(sess.Username)
			if err != nil {
				return err
			}
			created, err := e.api.CreateTournament(cmd.Context(), t)
			if err != nil {
				return e.handleAuthError(err)
			}
			e.cache.Invalidate()
			fmt.Printf("created tournament %d (%s)\n", created.ID, created.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTournamentsUpdateCmd() *cobra.Command {
	flags := &tournamentFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a tournament (admin)",
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
			sess, err := e.requireRole(domain.RoleAdmin)
			if err != nil {
				return err
			}
			t, err := flags.build(sess.Username)
			if err != nil {
				return err
			}
			updated, err := e.api.UpdateTournament(cmd.Context(), id, t)
			if err != nil {
				return e.handleAuthError(err)
			}
			e.cache.Invalidate()
			fmt.Printf("updated tournament %d (%s)\n", updated.ID, updated.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTournamentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tournament (admin)",
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
			if _, err := e.requireRole(domain.RoleAdmin); err != nil {
				return err
			}
			if err := e.api.DeleteTournament(cmd.Context(), id); err != nil {
				return e.handleAuthError(err)
			}
			e.cache.Invalidate()
			fmt.Printf("deleted tournament %d\n", id)
			return nil
		},
	}
}

func newTournamentsLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a tournament",
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
			if _, err := e.requireSession(); err != nil {
				return err
			}
			likes, err := e.api.LikeTournament(cmd.Context(), id)
			if err != nil {
				return e.handleAuthError(err)
			}
			e.cache.Invalidate()
			fmt.Printf("tournament %d now has %d likes\n", id, likes)
			return nil
		},
	}
}

func newTournamentsScoreboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scoreboard <id>",
		Short: "Show the scoreboard of a tournament",
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
			if _, err := e.requireSession(); err != nil {
				return err
			}
			board, err := e.api.GetScoreboard(cmd.Context(), id)
			if err != nil {
				return e.handleAuthError(err)
			}
			fmt.Printf("%s  players=%d  avg=%.1f  likes=%d\n",
				board.TournamentName, board.TotalPlayers, board.AverageScore, board.Likes)
			for _, s := range board.Scores {
				fmt.Printf("  %-20s  %2d/%d  %s\n",
					s.PlayerName, s.Score, domain.QuestionsPerTournament,
					s.CompletedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tournament id %q", raw)
	}
	return id, nil
}
