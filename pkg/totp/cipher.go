package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// AESKeySize is the key size for AES-256.
const AESKeySize = 32

// CipherConfig carries the base64 encoded AES-256 key used to encrypt secrets
// at rest. An empty key disables encryption.
type CipherConfig struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`
}

// Cipher encrypts TOTP secrets with AES-256-GCM. A nil *Cipher passes values
// through unchanged, so stores can hold an optional cipher without branching.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	return &Cipher{aead: aead}, nil
}

// LoadCipher decodes the configured key. It returns a nil Cipher and no error
// when no key is configured.
func LoadCipher(cfg CipherConfig) (*Cipher, error) {
	encoded := strings.TrimSpace(cfg.EncryptionKey)
	if encoded == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	return NewCipher(key)
}

// Encrypt seals plainText and returns nonce||ciphertext, base64 encoded.
func (c *Cipher) Encrypt(plainText string) (string, error) {
	if c == nil {
		return plainText, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if c == nil {
		return encoded, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidCipherTooShort)
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	return string(plain), nil
}

// Seal encrypts both fields of s. The provisioning URL embeds the secret, so
// it is encrypted too.
func (c *Cipher) Seal(s Secret) (Secret, error) {
	if c == nil || s.IsZero() {
		return s, nil
	}

	b32, err := c.Encrypt(s.Base32)
	if err != nil {
		return Secret{}, err
	}
	url, err := c.Encrypt(s.OTPAuthURL)
	if err != nil {
		return Secret{}, err
	}
	return Secret{Base32: b32, OTPAuthURL: url}, nil
}

// Open decrypts a Secret produced by Seal.
func (c *Cipher) Open(s Secret) (Secret, error) {
	if c == nil || s.IsZero() {
		return s, nil
	}

	b32, err := c.Decrypt(s.Base32)
	if err != nil {
		return Secret{}, err
	}
	url, err := c.Decrypt(s.OTPAuthURL)
	if err != nil {
		return Secret{}, err
	}
	return Secret{Base32: b32, OTPAuthURL: url}, nil
}

// GenerateEncodedKey returns a fresh random AES-256 key, base64 encoded for
// use in TOTP_ENCRYPTION_KEY.
func GenerateEncodedKey() (string, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrCryptoFailure, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
