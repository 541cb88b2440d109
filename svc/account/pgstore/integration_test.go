//go:build integration

package pgstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shubhamtiwari158/securify/pkg/config"
	"github.com/shubhamtiwari158/securify/pkg/logger"
	"github.com/shubhamtiwari158/securify/pkg/pg"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account/pgstore"
	"github.com/shubhamtiwari158/securify/svc/account/storetest"
)

func TestStore_Postgres(t *testing.T) {
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("securify"),
		postgres.WithUsername("securify"),
		postgres.WithPassword("securify"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var cfg pg.Config
	require.NoError(t, config.Load(&cfg, config.WithEnviron(map[string]string{"PG_CONN_URL": dsn})))

	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Healthcheck(pool)(ctx))
	require.NoError(t, pgstore.Migrate(ctx, pool, cfg, logger.Discard()))
	// Applying twice is a no-op.
	require.NoError(t, pgstore.Migrate(ctx, pool, cfg, logger.Discard()))

	t.Run("plain", func(t *testing.T) {
		storetest.RunStore(t, pgstore.New(pool))
	})

	t.Run("encrypted", func(t *testing.T) {
		key, err := totp.GenerateEncodedKey()
		require.NoError(t, err)
		cipher, err := totp.LoadCipher(totp.CipherConfig{EncryptionKey: key})
		require.NoError(t, err)

		storetest.RunStore(t, pgstore.New(pool, pgstore.WithCipher(cipher)))
	})
}
