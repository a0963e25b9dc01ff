package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"geoplay-service/internal/config"
	"geoplay-service/internal/geo"
	pginfra "geoplay-service/internal/infra/postgres"
	pgmigrations "geoplay-service/internal/infra/postgres/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations and optionally seeds target pools.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the built-in target pools into target_pools")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, seed bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	if seed {
		return seedPools(ctx, cfg, logger)
	}
	return nil
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	if cfg.Postgres.URL == "" {
		return errors.New("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info().Msg("no new migrations")
		return nil
	}
	logger.Info().Str("group", group.String()).Msg("migrations applied")
	return nil
}

// seedPools writes every catalog pool to Postgres so the server can load
// pools from the database.
func seedPools(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	loader := pginfra.NewPoolLoader(pool)
	for _, p := range geo.NewCatalog().Pools() {
		if err := loader.SavePool(ctx, p.Mode, p.Region, p.Targets); err != nil {
			return fmt.Errorf("seed %s/%s: %w", p.Mode, p.Region, err)
		}
		logger.Info().Str("mode", string(p.Mode)).Str("region", p.Region).Int("targets", len(p.Targets)).Msg("pool seeded")
	}
	return nil
}
