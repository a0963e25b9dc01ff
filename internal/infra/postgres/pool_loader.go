package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"geoplay-service/internal/domain"
	"geoplay-service/internal/geo"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PoolLoader loads target pool JSONB from Postgres.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

func (l *PoolLoader) LoadPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error) {
	if mode != domain.ModeState {
		region = ""
	}
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT targets FROM target_pools WHERE mode=$1 AND region=$2`, string(mode), region).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	var targets []domain.Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("unmarshal pool: %w", err)
	}
	return geo.Playable(mode, targets), nil
}

// SavePool upserts a pool, used to seed the table from the built-in catalog.
func (l *PoolLoader) SavePool(ctx context.Context, mode domain.Mode, region string, targets []domain.Target) error {
	raw, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO target_pools (mode, region, targets) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (mode, region) DO UPDATE SET targets=EXCLUDED.targets`, string(mode), region, string(raw))
	if err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}
