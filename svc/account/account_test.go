package account_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/password"
	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
	"github.com/shubhamtiwari158/securify/svc/account/memstore"
)

func TestAccount_TwoFactorState(t *testing.T) {
	t.Parallel()

	secret := &totp.Secret{Base32: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", OTPAuthURL: "otpauth://totp/x"}

	tests := []struct {
		name string
		acc  account.Account
		want account.State
	}{
		{"no secret", account.Account{}, account.StateNotEnrolled},
		{"empty secret", account.Account{TOTPSecret: &totp.Secret{}}, account.StateNotEnrolled},
		{"unconfirmed", account.Account{TOTPSecret: secret}, account.StatePendingVerification},
		{"enabled", account.Account{TOTPSecret: secret, TwoFactorEnabled: true, TOTPVerified: true}, account.StateEnabled},
		{"disabled", account.Account{TOTPSecret: secret, TOTPVerified: true}, account.StateDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.acc.TwoFactorState())
		})
	}
}

func TestAccount_Clone(t *testing.T) {
	t.Parallel()

	orig := &account.Account{Email: "a@x.com", TOTPSecret: &totp.Secret{Base32: "AAAA"}}
	clone := orig.Clone()
	clone.TOTPSecret.Base32 = "BBBB"
	clone.Email = "b@x.com"

	assert.Equal(t, "AAAA", orig.TOTPSecret.Base32)
	assert.Equal(t, "a@x.com", orig.Email)
	assert.Nil(t, (*account.Account)(nil).Clone())
}

func TestPatch_Apply(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	enabled := true
	acc := &account.Account{Version: 3, TOTPSecret: &totp.Secret{Base32: "AAAA"}, TOTPVerified: true}

	account.Patch{TwoFactorEnabled: &enabled, UpdatedAt: now}.Apply(acc)

	assert.True(t, acc.TwoFactorEnabled)
	assert.True(t, acc.TOTPVerified)
	assert.Equal(t, "AAAA", acc.TOTPSecret.Base32)
	assert.Equal(t, now, acc.UpdatedAt)
	assert.Equal(t, int64(4), acc.Version)
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice@example.com", account.NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "strasse@example.com", account.NormalizeEmail("STRASSE@example.com"))
	assert.Equal(t, "", account.NormalizeEmail("   "))
}

func TestConfig_Hasher(t *testing.T) {
	t.Parallel()

	cfg := account.DefaultConfig()
	h, err := cfg.Hasher()
	require.NoError(t, err)
	assert.IsType(t, &password.Bcrypt{}, h)

	cfg.PasswordAlgorithm = "Argon2id"
	h, err = cfg.Hasher()
	require.NoError(t, err)
	assert.IsType(t, &password.Argon2id{}, h)

	cfg.PasswordAlgorithm = "md5"
	_, err = cfg.Hasher()
	require.Error(t, err)

	_, err = cfg.Options()
	require.Error(t, err)
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := account.DefaultConfig()
	cfg.BcryptCost = 4
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestWithConfig_PasswordAlgorithm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := account.DefaultConfig()
	cfg.PasswordAlgorithm = account.AlgorithmArgon2id
	cfg.SecretOnRegister = false
	auth := account.NewAuthenticator(memstore.New(), account.WithConfig(cfg))

	acc, err := auth.Register(ctx, account.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Abc12345!",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(acc.PasswordHash, "$argon2id$"), acc.PasswordHash)

	res, err := auth.Authenticate(ctx, "alice@example.com", "Abc12345!")
	require.NoError(t, err)
	assert.Equal(t, account.DecisionAuthenticated, res.Decision)

	t.Run("unknown algorithm falls back to bcrypt", func(t *testing.T) {
		t.Parallel()

		cfg := account.DefaultConfig()
		cfg.PasswordAlgorithm = "md5"
		cfg.BcryptCost = 4
		cfg.SecretOnRegister = false
		auth := account.NewAuthenticator(memstore.New(), account.WithConfig(cfg))

		acc, err := auth.Register(ctx, account.RegisterInput{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "Abc12345!",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(acc.PasswordHash, "$2a$04$"), acc.PasswordHash)
	})
}
