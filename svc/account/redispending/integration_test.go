//go:build integration

package redispending_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shubhamtiwari158/securify/pkg/config"
	"github.com/shubhamtiwari158/securify/pkg/redis"
	"github.com/shubhamtiwari158/securify/svc/account"
	"github.com/shubhamtiwari158/securify/svc/account/redispending"
	"github.com/shubhamtiwari158/securify/svc/account/storetest"
)

func TestStore_Redis(t *testing.T) {
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	var cfg redis.Config
	require.NoError(t, config.Load(&cfg, config.WithEnviron(map[string]string{"REDIS_URL": uri})))

	client, err := redis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, redis.Healthcheck(client)(ctx))

	store := redispending.New(client, cfg.KeyPrefix)
	storetest.RunPendingStore(t, store)

	t.Run("expiry", func(t *testing.T) {
		token := uuid.NewString()
		require.NoError(t, store.Put(ctx, token, uuid.New(), 100*time.Millisecond))

		require.Eventually(t, func() bool {
			_, err := store.Get(ctx, token)
			return err != nil
		}, 5*time.Second, 50*time.Millisecond)

		_, err := store.Get(ctx, token)
		require.ErrorIs(t, err, account.ErrChallengeNotFound)
	})
}
