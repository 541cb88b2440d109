package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/config"
	"github.com/shubhamtiwari158/securify/pkg/redis"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	var cfg redis.Config
	require.NoError(t, config.Load(&cfg, config.WithEnviron(map[string]string{})))

	assert.Equal(t, "redis://localhost:6379/0", cfg.ConnectionURL)
	assert.Equal(t, "securify:", cfg.KeyPrefix)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0?dial_timeout=100ms",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}
