// Package migrations holds the Postgres schema for the KV store and target pools.
// Each migration lives in its own timestamped file; bun derives the migration
// name from the registering file.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
