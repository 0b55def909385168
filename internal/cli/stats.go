package cli

import (
	"fmt"

	"quiztour/internal/app"
	"quiztour/internal/domain"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the player dashboard: stats, available and completed tournaments",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if _, err := e.requireRole(domain.RolePlayer); err != nil {
				return err
			}

			catalog := app.NewCatalog(e.backend())
			dashboard, err := catalog.Load(cmd.Context())
			if err != nil {
				return e.handleAuthError(err)
			}

			stats := dashboard.Stats.Stats
			fmt.Printf("played=%d  avg=%.1f/%d  best=%d/%d  total=%d",
				stats.TournamentsPlayed,
				stats.AverageScore, domain.QuestionsPerTournament,
				stats.BestScore, domain.QuestionsPerTournament,
				stats.TotalPoints)
			if dashboard.Stats.Source == app.StatsDerived {
				fmt.Print("  (derived locally)")
			}
			fmt.Println()

			fmt.Printf("\nAvailable tournaments (%d):\n", len(dashboard.Available))
			for _, t := range dashboard.Available {
				fmt.Printf("  %4d  %-30s  %-18s  %s  until %s\n",
					t.ID, t.Name, t.Category, t.Difficulty, t.EndDate.Format("2006-01-02"))
			}

			fmt.Printf("\nCompleted tournaments (%d):\n", len(dashboard.Completed))
			for _, c := range dashboard.Completed {
				label := "Failed"
				if c.Passed {
					label = "Passed"
				}
				fmt.Printf("  %4d  %-30s  %d/%d  %s\n",
					c.Tournament.ID, c.Tournament.Name, c.Score, domain.QuestionsPerTournament, label)
			}
			return nil
		},
	}
}
