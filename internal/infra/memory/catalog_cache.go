package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quiztour/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Fetcher pulls fresh catalog data from the platform API.
type Fetcher interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error)
}

// CatalogCache keeps short-lived read-only copies of tournament data so a
// dashboard refresh does not hammer the API. Entries expire after a TTL
// with jitter; mutations call Invalidate to force a refetch.
type CatalogCache struct {
	fetcher Fetcher
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu          sync.RWMutex
	tournaments *cachedTournaments
	questions   map[int64]cachedQuestions
}

type cachedTournaments struct {
	tournaments []domain.Tournament
	expiresAt   time.Time
}

type cachedQuestions struct {
	questions []domain.TournamentQuestion
	expiresAt time.Time
}

func NewCatalogCache(fetcher Fetcher, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		fetcher:   fetcher,
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: make(map[int64]cachedQuestions),
	}
}

func (c *CatalogCache) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	now := c.clock()

	c.mu.RLock()
	if entry := c.tournaments; entry != nil && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.tournaments, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("tournaments", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry := c.tournaments; entry != nil && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.tournaments, nil
		}
		c.mu.RUnlock()

		tournaments, err := c.fetcher.ListTournaments(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tournaments = &cachedTournaments{
			tournaments: tournaments,
			expiresAt:   now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return tournaments, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Tournament), nil
}

func (c *CatalogCache) GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.questions[tournamentID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	key := fmt.Sprintf("questions:%d", tournamentID)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.questions[tournamentID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.fetcher.GetQuestions(ctx, tournamentID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.questions[tournamentID] = cachedQuestions{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.TournamentQuestion), nil
}

// Invalidate drops all cached entries; the next read refetches.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tournaments = nil
	c.questions = make(map[int64]cachedQuestions)
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
