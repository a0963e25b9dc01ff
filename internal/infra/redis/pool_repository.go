package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"geoplay-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches target pools from a backing store (static catalog, Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error)
}

// PoolRepository caches target pools in Redis (hash per pool) and falls back to a loader on cache miss.
// Targets are stored as: HSET geoplay:pool:{mode}:{region} {name} {target json}
type PoolRepository struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewPoolRepository(client *redis.Client, loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *PoolRepository) GetPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error) {
	key := r.poolKey(mode, region)

	cached, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return buildPoolFromCache(cached), nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return buildPoolFromCache(cached), nil
		}

		targets, err := r.loader.LoadPool(ctx, mode, region)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, t := range targets {
			raw, err := json.Marshal(t)
			if err != nil {
				continue
			}
			pipe.HSet(ctx, key, t.Name, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return targets, nil
	})
	if err != nil {
		return nil, err
	}
	targets := result.([]domain.Target)
	out := make([]domain.Target, len(targets))
	copy(out, targets)
	return out, nil
}

func (r *PoolRepository) poolKey(mode domain.Mode, region string) string {
	return "geoplay:pool:" + string(mode) + ":" + region
}

// buildPoolFromCache decodes cached targets; order is by name since hash
// ordering is unspecified and the sequencer draws at random anyway.
func buildPoolFromCache(cached map[string]string) []domain.Target {
	targets := make([]domain.Target, 0, len(cached))
	for name, raw := range cached {
		var t domain.Target
		if err := json.Unmarshal([]byte(raw), &t); err != nil || t.Name == "" {
			t = domain.Target{Name: name}
		}
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
