package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"quiztour/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Fetcher pulls fresh catalog data from the platform API.
type Fetcher interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error)
}

// CatalogCache stores tournament data as JSON in Redis so multiple client
// instances (kiosk deployments) share one refresh. Cache misses fall back
// to the fetcher; Redis read errors are treated as misses.
type CatalogCache struct {
	client  *redis.Client
	fetcher Fetcher
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewCatalogCache(client *redis.Client, fetcher Fetcher, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client:  client,
		fetcher: fetcher,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	key := c.tournamentsKey()

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var tournaments []domain.Tournament
		if err := json.Unmarshal(data, &tournaments); err == nil {
			return tournaments, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var tournaments []domain.Tournament
			if err := json.Unmarshal(data, &tournaments); err == nil {
				return tournaments, nil
			}
		}

		tournaments, err := c.fetcher.ListTournaments(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, tournaments)
		return tournaments, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Tournament), nil
}

func (c *CatalogCache) GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error) {
	key := c.questionsKey(tournamentID)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.TournamentQuestion
		if err := json.Unmarshal(data, &questions); err == nil {
			return questions, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.TournamentQuestion
			if err := json.Unmarshal(data, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := c.fetcher.GetQuestions(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.TournamentQuestion), nil
}

// Invalidate drops the shared tournament list; per-tournament question
// keys are left to expire since questions never change after creation.
func (c *CatalogCache) Invalidate() {
	_ = c.client.Del(context.Background(), c.tournamentsKey()).Err()
}

// store writes best-effort: a Redis write failure degrades to uncached
// reads, it never fails the caller.
func (c *CatalogCache) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
}

func (c *CatalogCache) tournamentsKey() string {
	return "quiztour:tournaments"
}

func (c *CatalogCache) questionsKey(tournamentID int64) string {
	return fmt.Sprintf("quiztour:questions:%d", tournamentID)
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
