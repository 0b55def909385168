package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiztour/internal/api"
	"quiztour/internal/app"
	"quiztour/internal/config"
	"quiztour/internal/domain"
	memcache "quiztour/internal/infra/memory"
	rediscache "quiztour/internal/infra/redis"
	"quiztour/internal/session"
	"github.com/redis/go-redis/v9"
)

// Cache is the read-through catalog cache the commands consult instead of
// hitting the API on every screen refresh.
type Cache interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error)
	Invalidate()
}

// env wires config, session store, API client and cache for one command
// invocation.
type env struct {
	cfg   config.Config
	store *session.FileStore
	api   *api.Client
	cache Cache
}

func newEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	path := cfg.Session.Path
	if sessionPath != "" {
		path = sessionPath
	}
	store := session.NewFileStore(path)

	timeout := config.TTLDuration(cfg.API.Timeout, 30*time.Second)
	client := api.NewClient(cfg.API.BaseURL, timeout, store)

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 5*time.Minute)
	var cache Cache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = rediscache.NewCatalogCache(redisClient, client, cacheTTL)
	} else {
		cache = memcache.NewCatalogCache(client, cacheTTL)
	}

	return &env{cfg: cfg, store: store, api: client, cache: cache}, nil
}

// backend routes list/question reads through the cache and everything else
// straight to the API client. It satisfies app.Backend and app.FlowBackend.
type backend struct {
	*api.Client
	cache Cache
}

func (e *env) backend() *backend {
	return &backend{Client: e.api, cache: e.cache}
}

func (b *backend) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	return b.cache.ListTournaments(ctx)
}

func (b *backend) GetQuestions(ctx context.Context, tournamentID int64) ([]domain.TournamentQuestion, error) {
	return b.cache.GetQuestions(ctx, tournamentID)
}

// requireSession loads the stored identity, enforcing token freshness. An
// expired token clears the file so the next command starts clean.
func (e *env) requireSession() (session.Session, error) {
	sess, ok, err := e.store.Load()
	if err != nil {
		return session.Session{}, err
	}
	if !ok {
		return session.Session{}, fmt.Errorf("%w: run 'quiztour login' first", domain.ErrNoSession)
	}
	if sess.Expired(time.Now()) {
		_ = e.store.Clear()
		return session.Session{}, fmt.Errorf("%w: run 'quiztour login' again", domain.ErrSessionExpired)
	}
	return sess, nil
}

func (e *env) requireRole(role domain.Role) (session.Session, error) {
	sess, err := e.requireSession()
	if err != nil {
		return session.Session{}, err
	}
	if sess.Role != role {
		return session.Session{}, fmt.Errorf("operation requires %s role, logged in as %s", role, sess.Role)
	}
	return sess, nil
}

// handleAuthError clears the stored session when the platform rejected the
// token, so the user is routed back to login instead of retrying forever.
func (e *env) handleAuthError(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		_ = e.store.Clear()
		return fmt.Errorf("%w: run 'quiztour login' again", domain.ErrSessionExpired)
	}
	return err
}

var _ app.Backend = (*backend)(nil)
var _ app.FlowBackend = (*backend)(nil)
