package app

import (
	"context"
	"log"
	"time"

	"quiztour/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Backend is the slice of the platform API the dashboard needs.
type Backend interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	MyAttempts(ctx context.Context) ([]domain.Attempt, error)
	PlayerStats(ctx context.Context) (domain.PlayerStats, error)
}

// Catalog derives the player dashboard from raw tournament and attempt
// collections.
type Catalog struct {
	backend       Backend
	clock         func() time.Time
	questionCount int
}

func NewCatalog(backend Backend) *Catalog {
	return &Catalog{
		backend:       backend,
		clock:         time.Now,
		questionCount: domain.QuestionsPerTournament,
	}
}

// NewCatalogWithClock is test-only for deterministic "now" instants.
func NewCatalogWithClock(backend Backend, now func() time.Time) *Catalog {
	c := NewCatalog(backend)
	c.clock = now
	return c
}

// CompletedTournament pairs a tournament with the attempt that finished it.
type CompletedTournament struct {
	Tournament domain.Tournament
	Score      int
	Passed     bool
}

// StatsSource distinguishes server-fetched stats from the local fallback.
type StatsSource int

const (
	StatsRemote StatsSource = iota
	StatsDerived
)

func (s StatsSource) String() string {
	if s == StatsDerived {
		return "derived"
	}
	return "remote"
}

// StatsResult is the two-tier stats outcome: remote when the stats
// endpoint answered, derived from completed attempts when it did not.
type StatsResult struct {
	Source StatsSource
	Stats  domain.PlayerStats
}

// Dashboard is everything the player screen shows.
type Dashboard struct {
	Available []domain.Tournament
	Completed []CompletedTournament
	Stats     StatsResult
	Attempts  []domain.Attempt
}

// Load fetches tournaments and attempts concurrently, then computes the
// dashboard. A tournaments or attempts failure fails the load; a stats
// failure is swallowed and replaced with locally derived numbers.
func (c *Catalog) Load(ctx context.Context) (Dashboard, error) {
	var (
		tournaments []domain.Tournament
		attempts    []domain.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournaments, err = c.backend.ListTournaments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = c.backend.MyAttempts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Available: Available(tournaments, attempts, c.clock()),
		Completed: Completed(tournaments, attempts, c.questionCount),
		Attempts:  attempts,
	}
	if stats, err := c.backend.PlayerStats(ctx); err == nil {
		d.Stats = StatsResult{Source: StatsRemote, Stats: stats}
	} else {
		log.Printf("stats fetch failed, deriving locally: %v", err)
		d.Stats = StatsResult{Source: StatsDerived, Stats: DeriveStats(attempts)}
	}
	return d, nil
}

// Available returns tournaments whose date range contains now and which
// the player has not yet attempted. Both dates are midnight instants, so
// a tournament ending today already dropped off the list.
func Available(tournaments []domain.Tournament, attempts []domain.Attempt, now time.Time) []domain.Tournament {
	attempted := make(map[int64]bool, len(attempts))
	for _, a := range attempts {
		attempted[a.TournamentID] = true
	}

	available := make([]domain.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if attempted[t.ID] {
			continue
		}
		if now.Before(t.StartDate.Time) {
			continue
		}
		if now.After(t.EndDate.Time) {
			continue
		}
		available = append(available, t)
	}
	return available
}

// Completed returns tournaments with a completed attempt, labeled
// pass/fail by comparing the score as a percentage of the question count
// against the tournament threshold.
func Completed(tournaments []domain.Tournament, attempts []domain.Attempt, questionCount int) []CompletedTournament {
	byTournament := make(map[int64]domain.Attempt, len(attempts))
	for _, a := range attempts {
		if a.Completed {
			byTournament[a.TournamentID] = a
		}
	}

	completed := make([]CompletedTournament, 0, len(byTournament))
	for _, t := range tournaments {
		a, ok := byTournament[t.ID]
		if !ok {
			continue
		}
		completed = append(completed, CompletedTournament{
			Tournament: t,
			Score:      a.Score,
			Passed:     Passed(a.Score, questionCount, t.MinPassingScore),
		})
	}
	return completed
}

// Passed compares a raw score against a percentage threshold on one unit:
// score/questionCount as a percentage must reach minPassingScore.
func Passed(score, questionCount, minPassingScore int) bool {
	if questionCount <= 0 {
		return false
	}
	return score*100 >= minPassingScore*questionCount
}

// DeriveStats computes the local fallback from completed attempts:
// count, average, best and total, all zero when nothing is completed.
func DeriveStats(attempts []domain.Attempt) domain.PlayerStats {
	var stats domain.PlayerStats
	for _, a := range attempts {
		if !a.Completed {
			continue
		}
		stats.TournamentsPlayed++
		stats.TotalPoints += a.Score
		if a.Score > stats.BestScore {
			stats.BestScore = a.Score
		}
	}
	if stats.TournamentsPlayed > 0 {
		stats.AverageScore = float64(stats.TotalPoints) / float64(stats.TournamentsPlayed)
	}
	return stats
}
