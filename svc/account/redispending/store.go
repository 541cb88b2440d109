// Package redispending keeps pending login challenges in Redis so any
// instance can complete a challenge issued by another.
package redispending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shubhamtiwari158/securify/svc/account"
)

const keySpace = "challenge:"

var ErrInvalidTTL = errors.New("challenge ttl must be positive")

// Client is the subset of redis.Cmdable the store needs.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store implements account.PendingStore. Expiry is delegated to Redis.
type Store struct {
	client Client
	prefix string
}

// New returns a Store that namespaces keys under prefix.
func New(client Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(token string) string {
	return s.prefix + keySpace + token
}

func (s *Store) Put(ctx context.Context, token string, accountID uuid.UUID, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := s.client.Set(ctx, s.key(token), accountID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, account.ErrChallengeNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load challenge: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode challenge: %w", err)
	}
	return id, nil
}

// Consume deletes the token and reports whether it was still live. Only one
// concurrent caller can observe true.
func (s *Store) Consume(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}
	return n > 0, nil
}
