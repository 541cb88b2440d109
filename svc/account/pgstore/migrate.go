package pgstore

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shubhamtiwari158/securify/pkg/pg"
)

// Migrations holds the schema for the accounts table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies the embedded migrations. cfg.MigrationsPath is ignored.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	cfg.MigrationsPath = migrationsDir
	return pg.Migrate(ctx, pool, cfg, log, pg.WithMigrationsFS(Migrations))
}
