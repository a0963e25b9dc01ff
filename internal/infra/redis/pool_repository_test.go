package redis

import (
	"context"
	"testing"
	"time"

	"geoplay-service/internal/domain"
	"geoplay-service/internal/geo"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPoolRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{PoolLoader: geo.NewCatalog()}
	repo := NewPoolRepository(client, loader, time.Minute)

	first, err := repo.GetPool(context.Background(), domain.ModeCity, "")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("geoplay:pool:city:") {
		t.Fatalf("expected pool hash in redis")
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.GetPool(context.Background(), domain.ModeCity, "")
	if err != nil {
		t.Fatalf("get cached pool: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(second) != len(first) {
		t.Fatalf("expected %d cached targets, got %d", len(first), len(second))
	}
	for _, target := range second {
		if target.Name == "Tokyo" && target.Lat == 0 {
			t.Fatalf("expected coordinates to survive the cache, got %+v", target)
		}
	}
}

func TestPoolRepositoryPropagatesLoaderErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewPoolRepository(newClient(mr), geo.NewCatalog(), time.Minute)
	if _, err := repo.GetPool(context.Background(), domain.ModeState, "atlantis"); err != domain.ErrPoolNotFound {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

type countingLoader struct {
	PoolLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error) {
	l.calls++
	return l.PoolLoader.LoadPool(ctx, mode, region)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
