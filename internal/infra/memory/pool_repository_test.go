package memory

import (
	"context"
	"testing"
	"time"

	"geoplay-service/internal/domain"
	"geoplay-service/internal/geo"
)

func TestPoolRepositoryCaches(t *testing.T) {
	loader := &countingLoader{PoolLoader: geo.NewCatalogFrom(samplePools())}
	repo := NewPoolRepository(loader, time.Minute)

	if _, err := repo.GetPool(context.Background(), domain.ModeState, "usa"); err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetPool(context.Background(), domain.ModeState, "usa"); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestPoolRepositoryReturnsIndependentCopies(t *testing.T) {
	repo := NewPoolRepository(geo.NewCatalogFrom(samplePools()), time.Minute)

	first, err := repo.GetPool(context.Background(), domain.ModeState, "usa")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	first[0].Name = "Mutated"

	second, _ := repo.GetPool(context.Background(), domain.ModeState, "usa")
	if second[0].Name == "Mutated" {
		t.Fatalf("expected cached pool to be isolated from callers")
	}
}

func TestPoolRepositoryExpires(t *testing.T) {
	loader := &countingLoader{PoolLoader: geo.NewCatalogFrom(samplePools())}
	repo := NewPoolRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetPool(context.Background(), domain.ModeState, "usa")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetPool(context.Background(), domain.ModeState, "usa")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
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

func samplePools() map[domain.Mode]map[string][]domain.Target {
	return map[domain.Mode]map[string][]domain.Target{
		domain.ModeState: {
			"usa": {{Name: "Texas", RegionID: "usa"}, {Name: "Ohio", RegionID: "usa"}},
		},
	}
}
