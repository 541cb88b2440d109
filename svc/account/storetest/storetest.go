// Package storetest checks account.Store and account.PendingStore
// implementations against the behavior the account service relies on.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
)

// created is truncated to milliseconds so every backend stores it exactly.
var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newAccount() *account.Account {
	id := uuid.New()
	return &account.Account{
		ID:           id,
		Username:     "user-" + id.String(),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: "$2a$04$hash",
		PasswordSalt: "salt",
		TOTPSecret: &totp.Secret{
			Base32:     "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			OTPAuthURL: "otpauth://totp/Securify:" + id.String(),
		},
		Version:   1,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// RunStore exercises s. Accounts use random ids and emails, so s may be
// shared between runs.
func RunStore(t *testing.T, s account.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		acc := newAccount()
		require.NoError(t, s.Create(ctx, acc))

		byEmail, err := s.FindByEmail(ctx, acc.Email)
		require.NoError(t, err)
		assertSame(t, acc, byEmail)

		byID, err := s.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assertSame(t, acc, byID)
	})

	t.Run("account without secret", func(t *testing.T) {
		acc := newAccount()
		acc.TOTPSecret = nil
		require.NoError(t, s.Create(ctx, acc))

		got, err := s.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Nil(t, got.TOTPSecret)
		assert.Equal(t, account.StateNotEnrolled, got.TwoFactorState())
	})

	t.Run("duplicate email", func(t *testing.T) {
		acc := newAccount()
		require.NoError(t, s.Create(ctx, acc))

		dup := newAccount()
		dup.Email = acc.Email
		err := s.Create(ctx, dup)
		require.ErrorIs(t, err, account.ErrDuplicateKey)
		assert.ErrorIs(t, err, account.ErrEmailTaken)

		_, err = s.FindByID(ctx, dup.ID)
		require.ErrorIs(t, err, account.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		acc := newAccount()
		require.NoError(t, s.Create(ctx, acc))

		dup := newAccount()
		dup.Username = acc.Username
		err := s.Create(ctx, dup)
		require.ErrorIs(t, err, account.ErrDuplicateKey)
		assert.ErrorIs(t, err, account.ErrUsernameTaken)

		_, err = s.FindByEmail(ctx, dup.Email)
		require.ErrorIs(t, err, account.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.FindByEmail(ctx, "missing-"+uuid.NewString()+"@example.com")
		require.ErrorIs(t, err, account.ErrNotFound)

		_, err = s.FindByID(ctx, uuid.New())
		require.ErrorIs(t, err, account.ErrNotFound)

		_, err = s.Update(ctx, uuid.New(), account.Patch{IfVersion: 1})
		require.ErrorIs(t, err, account.ErrNotFound)
	})

	t.Run("update is compare and swap", func(t *testing.T) {
		acc := newAccount()
		require.NoError(t, s.Create(ctx, acc))

		enabled, verified := true, true
		later := created.Add(time.Hour)
		got, err := s.Update(ctx, acc.ID, account.Patch{
			TwoFactorEnabled: &enabled,
			TOTPVerified:     &verified,
			IfVersion:        1,
			UpdatedAt:        later,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.Equal(t, account.StateEnabled, got.TwoFactorState())
		assert.True(t, later.Equal(got.UpdatedAt))
		require.NotNil(t, got.TOTPSecret)
		assert.Equal(t, *acc.TOTPSecret, *got.TOTPSecret)

		_, err = s.Update(ctx, acc.ID, account.Patch{TwoFactorEnabled: &enabled, IfVersion: 1})
		require.ErrorIs(t, err, account.ErrVersionConflict)

		stored, err := s.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("update replaces secret", func(t *testing.T) {
		acc := newAccount()
		require.NoError(t, s.Create(ctx, acc))

		secret := totp.Secret{Base32: "JBSWY3DPEHPK3PXP", OTPAuthURL: "otpauth://totp/Securify:new"}
		got, err := s.Update(ctx, acc.ID, account.Patch{TOTPSecret: &secret, IfVersion: 1})
		require.NoError(t, err)
		require.NotNil(t, got.TOTPSecret)
		assert.Equal(t, secret, *got.TOTPSecret)
	})
}

// RunPendingStore exercises p.
func RunPendingStore(t *testing.T, p account.PendingStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("put get consume", func(t *testing.T) {
		token := uuid.NewString()
		id := uuid.New()
		require.NoError(t, p.Put(ctx, token, id, time.Minute))

		got, err := p.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, id, got)

		ok, err := p.Consume(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.Consume(ctx, token)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = p.Get(ctx, token)
		require.ErrorIs(t, err, account.ErrChallengeNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := p.Get(ctx, uuid.NewString())
		require.ErrorIs(t, err, account.ErrChallengeNotFound)
	})
}

func assertSame(t *testing.T, want, got *account.Account) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)
	assert.Equal(t, want.PasswordSalt, got.PasswordSalt)
	assert.Equal(t, want.TwoFactorEnabled, got.TwoFactorEnabled)
	assert.Equal(t, want.TOTPVerified, got.TOTPVerified)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
	if want.TOTPSecret == nil {
		assert.Nil(t, got.TOTPSecret)
		return
	}
	require.NotNil(t, got.TOTPSecret)
	assert.Equal(t, *want.TOTPSecret, *got.TOTPSecret)
}
