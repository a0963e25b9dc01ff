package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"geoplay-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches target pools from a backing store (static catalog, Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error)
}

// PoolRepository caches target pools with TTL to avoid repeated loads.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedPool
}

type cachedPool struct {
	targets   []domain.Target
	expiresAt time.Time
}

func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedPool),
	}
}

// GetPool returns a fresh copy of the pool; callers consume it destructively.
func (r *PoolRepository) GetPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error) {
	key := string(mode) + "/" + region
	now := r.clock()

	if targets, ok := r.lookup(key, now); ok {
		return targets, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		if targets, ok := r.lookup(key, now); ok {
			return targets, nil
		}

		targets, err := r.loader.LoadPool(ctx, mode, region)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedPool{
			targets:   targets,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return clonePool(targets), nil
	})
	if err != nil {
		return nil, err
	}
	return clonePool(result.([]domain.Target)), nil
}

func (r *PoolRepository) lookup(key string, now time.Time) ([]domain.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return clonePool(entry.targets), true
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func clonePool(targets []domain.Target) []domain.Target {
	out := make([]domain.Target, len(targets))
	copy(out, targets)
	return out
}
