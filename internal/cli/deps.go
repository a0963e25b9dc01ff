package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geoplay-service/internal/app"
	"geoplay-service/internal/config"
	"geoplay-service/internal/geo"
	"geoplay-service/internal/infra/memory"
	pginfra "geoplay-service/internal/infra/postgres"
	redisinfra "geoplay-service/internal/infra/redis"
	"geoplay-service/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// backends holds the connections opened for the configured storage.
type backends struct {
	redis    *redis.Client
	postgres *pgxpool.Pool
	sqlite   *sqlite.KVStore
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.postgres = pool
	}
	if cfg.Storage.Driver == config.DriverSQLite {
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.sqlite = store
	}
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.postgres != nil {
		b.postgres.Close()
	}
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
}

// kvStore picks the leaderboard store for storage.driver.
func (b *backends) kvStore(driver string) (app.KVStore, error) {
	switch driver {
	case "", config.DriverMemory:
		return memory.NewKVStore(), nil
	case config.DriverRedis:
		if b.redis == nil {
			return nil, errors.New("redis not configured")
		}
		return redisinfra.NewKVStore(b.redis), nil
	case config.DriverPostgres:
		if b.postgres == nil {
			return nil, errors.New("postgres not configured")
		}
		return pginfra.NewKVStore(b.postgres), nil
	case config.DriverSQLite:
		if b.sqlite == nil {
			return nil, errors.New("sqlite not opened")
		}
		return b.sqlite, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// poolRepository reads pools from Postgres when configured, falling back to
// the built-in catalog, and caches them in Redis or memory.
func (b *backends) poolRepository(ttl time.Duration) app.PoolRepository {
	var loader memory.PoolLoader = geo.NewCatalog()
	if b.postgres != nil {
		loader = pginfra.NewPoolLoader(b.postgres)
	}
	if b.redis != nil {
		return redisinfra.NewPoolRepository(b.redis, loader, ttl)
	}
	return memory.NewPoolRepository(loader, ttl)
}

func (b *backends) sessionStore(ttl time.Duration) app.SessionRepository {
	if b.redis != nil {
		return redisinfra.NewSessionStore(b.redis, ttl)
	}
	return memory.NewSessionStore()
}

func loadLeaderboard(ctx context.Context, b *backends, cfg config.Config, logger zerolog.Logger) (*app.Leaderboard, error) {
	store, err := b.kvStore(cfg.Storage.Driver)
	if err != nil {
		return nil, err
	}
	board := app.NewLeaderboard(store, logger)
	if err := board.Load(ctx); err != nil {
		return nil, err
	}
	return board, nil
}

func sessionConfig(cfg config.Config) app.SessionConfig {
	def := app.DefaultSessionConfig()
	return app.SessionConfig{
		TickInterval:           config.TTLDuration(cfg.Game.TickInterval, def.TickInterval),
		CorrectFeedbackDelay:   config.TTLDuration(cfg.Game.CorrectFeedbackDelay, def.CorrectFeedbackDelay),
		WrongFeedbackDelay:     config.TTLDuration(cfg.Game.WrongFeedbackDelay, def.WrongFeedbackDelay),
		StoreTimeout:           def.StoreTimeout,
		AllowMidgameDifficulty: cfg.Game.AllowMidgameDifficulty,
	}
}
