package totp_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/totp"
)

func newTestCipher(t *testing.T) *totp.Cipher {
	t.Helper()

	key, err := totp.GenerateEncodedKey()
	require.NoError(t, err)
	c, err := totp.LoadCipher(totp.CipherConfig{EncryptionKey: key})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	secret := totp.Secret{Base32: rfcSecret, OTPAuthURL: "otpauth://totp/Securify:a@x.com?secret=" + rfcSecret}

	sealed, err := c.Seal(secret)
	require.NoError(t, err)
	assert.NotEqual(t, secret.Base32, sealed.Base32)
	assert.NotContains(t, sealed.OTPAuthURL, rfcSecret)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, secret, opened)
}

func TestCipher_NonceIsRandom(t *testing.T) {
	t.Parallel()

	c := newTestCipher(t)
	a, err := c.Encrypt(rfcSecret)
	require.NoError(t, err)
	b, err := c.Encrypt(rfcSecret)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipher_Nil(t *testing.T) {
	t.Parallel()

	var c *totp.Cipher
	secret := totp.Secret{Base32: rfcSecret, OTPAuthURL: "otpauth://x"}

	sealed, err := c.Seal(secret)
	require.NoError(t, err)
	assert.Equal(t, secret, sealed)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, secret, opened)
}

func TestCipher_ZeroSecretPassesThrough(t *testing.T) {
	t.Parallel()

	sealed, err := newTestCipher(t).Seal(totp.Secret{})
	require.NoError(t, err)
	assert.True(t, sealed.IsZero())
}

func TestCipher_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no key configured", func(t *testing.T) {
		t.Parallel()
		c, err := totp.LoadCipher(totp.CipherConfig{})
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("bad base64 key", func(t *testing.T) {
		t.Parallel()
		_, err := totp.LoadCipher(totp.CipherConfig{EncryptionKey: "%%%"})
		assert.ErrorIs(t, err, totp.ErrFailedToLoadEncryptionKey)
	})

	t.Run("short key", func(t *testing.T) {
		t.Parallel()
		_, err := totp.LoadCipher(totp.CipherConfig{EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))})
		assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		t.Parallel()
		_, err := newTestCipher(t).Decrypt(base64.StdEncoding.EncodeToString([]byte("abc")))
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
		assert.ErrorIs(t, err, totp.ErrInvalidCipherTooShort)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		sealed, err := newTestCipher(t).Encrypt(rfcSecret)
		require.NoError(t, err)
		_, err = newTestCipher(t).Decrypt(sealed)
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
	})

	t.Run("not base64", func(t *testing.T) {
		t.Parallel()
		_, err := newTestCipher(t).Decrypt("***")
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
	})
}
