// Package pg connects to PostgreSQL through pgx/v5, applies goose
// migrations and classifies driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log, pg.WithMigrationsFS(migrations.FS)); err != nil {
//		return err
//	}
//
// Migrations are read from cfg.MigrationsPath on disk unless an embedded
// filesystem is supplied with WithMigrationsFS.
package pg
